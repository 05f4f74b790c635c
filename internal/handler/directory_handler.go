package handler

import (
	"net/http"

	"Campus_Portal/internal/service"

	"github.com/gin-gonic/gin"
)

type DirectoryHandler struct {
	svc *service.DirectoryService
}

func NewDirectoryHandler(svc *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{svc: svc}
}

// List ?department= 精确匹配，?q= 按姓名模糊匹配
func (h *DirectoryHandler) List(c *gin.Context) {
	out, err := h.svc.List(c.Request.Context(), c.Query("department"), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"faculty": out})
}
