package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// PageHandler /main 下的页面由前端路由渲染，这里只回 index.html
type PageHandler struct {
	index string
}

func NewPageHandler(webRoot string) *PageHandler {
	h := &PageHandler{}
	if webRoot != "" {
		index := filepath.Join(webRoot, "index.html")
		if _, err := os.Stat(index); err == nil {
			h.index = index
		}
	}
	return h
}

// Serve 没有配置前端产物时返回页面路径和角色，便于联调
func (h *PageHandler) Serve(c *gin.Context) {
	if h.index != "" {
		c.File(h.index)
		return
	}
	p := principal(c)
	c.JSON(http.StatusOK, gin.H{"path": c.Request.URL.Path, "role": p.Role})
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

func Health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
