package handler

import (
	"net/http"

	"Campus_Portal/internal/service"

	"github.com/gin-gonic/gin"
)

type AnnouncementHandler struct {
	svc *service.AnnouncementService
}

type CreateAnnouncementReq struct {
	Title   string `json:"title" binding:"required,notblank"`
	Content string `json:"content" binding:"required,notblank"`
	Link    string `json:"link" binding:"omitempty,http_url"`
}

func NewAnnouncementHandler(svc *service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{svc: svc}
}

func (h *AnnouncementHandler) List(c *gin.Context) {
	out, err := h.svc.List(c.Request.Context(), pageFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"announcements": out})
}

func (h *AnnouncementHandler) Create(c *gin.Context) {
	var req CreateAnnouncementReq
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.svc.Create(c.Request.Context(), principal(c), req.Title, req.Content, req.Link)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "id": a.ID})
}
