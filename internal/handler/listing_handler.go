package handler

import (
	"net/http"

	"Campus_Portal/internal/service"

	"github.com/gin-gonic/gin"
)

type ListingHandler struct {
	svc *service.ListingService
}

type CreateListingReq struct {
	ProductTitle string  `json:"product_title" binding:"required,notblank"`
	Description  string  `json:"description" binding:"required,notblank"`
	Price        float64 `json:"price" binding:"required,gt=0"`
	ContactInfo  string  `json:"contact_info" binding:"required,notblank"`
	OwnerName    string  `json:"owner_name" binding:"required,notblank"`
}

type MarkSoldReq struct {
	ID string `json:"id" binding:"required"`
}

func NewListingHandler(svc *service.ListingService) *ListingHandler {
	return &ListingHandler{svc: svc}
}

func (h *ListingHandler) List(c *gin.Context) {
	out, err := h.svc.List(c.Request.Context(), principal(c), pageFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": out})
}

func (h *ListingHandler) Create(c *gin.Context) {
	var req CreateListingReq
	if !bindJSON(c, &req) {
		return
	}
	l, err := h.svc.Create(c.Request.Context(), principal(c), service.ListingInput{
		ProductTitle: req.ProductTitle,
		Description:  req.Description,
		Price:        req.Price,
		ContactInfo:  req.ContactInfo,
		OwnerName:    req.OwnerName,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": l.ID})
}

// MarkSold 只能由卖家把商品标记为已售
func (h *ListingHandler) MarkSold(c *gin.Context) {
	var req MarkSoldReq
	if !bindJSON(c, &req) {
		return
	}
	if err := h.svc.MarkSold(c.Request.Context(), principal(c), req.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
