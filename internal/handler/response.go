package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"Campus_Portal/internal/middleware"
	"Campus_Portal/internal/model"
	"Campus_Portal/internal/pkg"
	"Campus_Portal/internal/repository/sqlstore"
	"Campus_Portal/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/sirupsen/logrus"
)

func init() {
	// 校验错误里使用 json 字段名
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		// 纯空白的文本字段视为未填写
		_ = v.RegisterValidation("notblank", validators.NotBlank)
	}
}

func validationMessage(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		switch e.ActualTag() {
		case "required", "notblank":
			msgs = append(msgs, fmt.Sprintf("field %s is required", e.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("field %s must be a valid email address", e.Field()))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("field %s must be greater than %s", e.Field(), e.Param()))
		case "number":
			msgs = append(msgs, fmt.Sprintf("field %s must contain digits only", e.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("field %s must be at most %s characters", e.Field(), e.Param()))
		case "http_url":
			msgs = append(msgs, fmt.Sprintf("field %s must be an http or https URL", e.Field()))
		case "datauri", "startswith":
			msgs = append(msgs, fmt.Sprintf("field %s must be a base64 image data URL", e.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}
	return strings.Join(msgs, ", ")
}

// respondError 统一的错误到状态码映射，未知错误只记日志不外泄
func respondError(c *gin.Context, err error) {
	var (
		limited  *sqlstore.RateLimitError
		invalid  *service.ValidationError
		bindErrs validator.ValidationErrors
	)
	switch {
	case errors.As(err, &limited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": limited.Message})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
	case errors.As(err, &bindErrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(bindErrs)})
	case errors.Is(err, service.ErrEmailDomain), errors.Is(err, service.ErrCodeInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, pkg.ErrRefreshExpired), errors.Is(err, pkg.ErrRefreshInvalid):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrFacultyProfile):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden), errors.Is(err, sqlstore.ErrNotOwner), errors.Is(err, sqlstore.ErrPolicy):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, service.ErrComplaintNotFound), errors.Is(err, service.ErrListingNotFound),
		errors.Is(err, service.ErrReportNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, sqlstore.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		entry := logrus.WithError(err).WithFields(logrus.Fields{"method": c.Request.Method, "path": c.Request.URL.Path})
		if p := middleware.CurrentPrincipal(c); p != nil {
			entry = entry.WithField("user_id", p.UserID)
		}
		entry.Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bindJSON 绑定失败时已经写好响应，调用方直接 return
func bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var bindErrs validator.ValidationErrors
	if errors.As(err, &bindErrs) {
		respondError(c, err)
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid params"})
	return false
}

// pageFrom 解析 ?widget=true 或 ?page=&size=，page 从 1 开始
func pageFrom(c *gin.Context) service.Page {
	if c.Query("widget") == "true" {
		return service.Page{Limit: service.WidgetSize}
	}
	size, _ := strconv.Atoi(c.Query("size"))
	if size <= 0 {
		size = service.DefaultPageSize
	}
	if size > service.MaxPageSize {
		size = service.MaxPageSize
	}
	page, _ := strconv.Atoi(c.Query("page"))
	if page < 1 {
		page = 1
	}
	return service.Page{Limit: size, Offset: (page - 1) * size}
}

func principal(c *gin.Context) *model.Principal {
	return middleware.CurrentPrincipal(c)
}
