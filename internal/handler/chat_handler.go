package handler

import (
	"context"
	"net/http"
	"slices"

	"Campus_Portal/internal/chathub"
	"Campus_Portal/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type ChatHandler struct {
	svc      *service.ChatService
	hub      *chathub.Hub
	upgrader websocket.Upgrader
}

type PostChatReq struct {
	Message string `json:"message" binding:"required"`
}

// NewChatHandler allowOrigins 为空时只允许同源
func NewChatHandler(svc *service.ChatService, hub *chathub.Hub, allowOrigins []string) *ChatHandler {
	h := &ChatHandler{svc: svc, hub: hub}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	if len(allowOrigins) > 0 {
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(allowOrigins, origin)
		}
	}
	return h
}

func (h *ChatHandler) History(c *gin.Context) {
	msgs, err := h.svc.History(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h *ChatHandler) Post(c *gin.Context) {
	var req PostChatReq
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.svc.Post(c.Request.Context(), principal(c), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": msg})
}

// ServeWebSocket 升级连接后交给 hub，连接的生命周期与请求无关
func (h *ChatHandler) ServeWebSocket(c *gin.Context) {
	p := principal(c)
	if !p.IsStudent() || p.SessionCode == "" {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade")
		return
	}
	h.hub.Serve(context.WithoutCancel(c.Request.Context()), conn, p)
}
