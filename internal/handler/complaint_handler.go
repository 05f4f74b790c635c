package handler

import (
	"net/http"

	"Campus_Portal/internal/service"

	"github.com/gin-gonic/gin"
)

type ComplaintHandler struct {
	svc *service.ComplaintService
}

type CreateComplaintReq struct {
	Complaint   string `json:"complaint" binding:"required"`
	IsAnonymous bool   `json:"isAnonymous"`
}

type UpvoteReq struct {
	ComplaintID string `json:"complaintId" binding:"required"`
}

func NewComplaintHandler(svc *service.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{svc: svc}
}

// List 未登录也可以查看，此时 current_user_has_upvoted 全为 false
func (h *ComplaintHandler) List(c *gin.Context) {
	out, err := h.svc.List(c.Request.Context(), principal(c), pageFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": out})
}

func (h *ComplaintHandler) Create(c *gin.Context) {
	var req CreateComplaintReq
	if !bindJSON(c, &req) {
		return
	}
	if err := h.svc.Create(c.Request.Context(), principal(c), req.Complaint, req.IsAnonymous); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ComplaintHandler) ToggleUpvote(c *gin.Context) {
	var req UpvoteReq
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.svc.ToggleUpvote(c.Request.Context(), principal(c), req.ComplaintID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
