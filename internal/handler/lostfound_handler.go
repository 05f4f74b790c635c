package handler

import (
	"net/http"

	"Campus_Portal/internal/service"

	"github.com/gin-gonic/gin"
)

type LostFoundHandler struct {
	svc *service.LostFoundService
}

type CreateLostFoundReq struct {
	Title         string `json:"title" binding:"required,notblank"`
	Description   string `json:"description" binding:"required,notblank"`
	LocationFound string `json:"location_found" binding:"required,notblank"`
	ContactInfo   string `json:"contact_info" binding:"required,number,max=10"`
	ImageURL      string `json:"image_url" binding:"omitempty,startswith=data:image/,datauri"`
}

func NewLostFoundHandler(svc *service.LostFoundService) *LostFoundHandler {
	return &LostFoundHandler{svc: svc}
}

func (h *LostFoundHandler) List(c *gin.Context) {
	out, err := h.svc.List(c.Request.Context(), pageFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

func (h *LostFoundHandler) Create(c *gin.Context) {
	var req CreateLostFoundReq
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.svc.Create(c.Request.Context(), principal(c), service.LostFoundInput{
		Title:         req.Title,
		Description:   req.Description,
		LocationFound: req.LocationFound,
		ContactInfo:   req.ContactInfo,
		ImageURL:      req.ImageURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "id": r.ID})
}

// Resolve 物品已找回，发布者删除记录
func (h *LostFoundHandler) Resolve(c *gin.Context) {
	if err := h.svc.Resolve(c.Request.Context(), principal(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
