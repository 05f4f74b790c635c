package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"Campus_Portal/internal/model"
	"Campus_Portal/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	ContextPrincipalKey = "principal"
	SessionCookieName   = "session"
)

// Authenticator 由 service.UserService 实现
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*model.Principal, error)
}

// bearerToken 先取 Authorization 头，浏览器页面和 websocket 退回到 session cookie
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if v, err := c.Cookie(SessionCookieName); err == nil {
		return v
	}
	return ""
}

func resolve(c *gin.Context, a Authenticator) (*model.Principal, error) {
	token := bearerToken(c)
	if token == "" {
		return nil, service.ErrUnauthenticated
	}
	return a.Authenticate(c.Request.Context(), token)
}

// AuthMiddleware 必须登录，注入 Principal
func AuthMiddleware(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := resolve(c, a)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				return
			}
			logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("authenticate")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.Set(ContextPrincipalKey, p)
		c.Next()
	}
}

// OptionalAuth 未登录也放行，用于公开列表
func OptionalAuth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p, err := resolve(c, a); err == nil {
			c.Set(ContextPrincipalKey, p)
		}
		c.Next()
	}
}

// RequireRole 放在 AuthMiddleware 之后；API 返回 403，不做页面跳转
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := CurrentPrincipal(c)
		if p == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if p.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

func CurrentPrincipal(c *gin.Context) *model.Principal {
	v, ok := c.Get(ContextPrincipalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*model.Principal)
	return p
}
