package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"Campus_Portal/internal/model"

	"github.com/gin-gonic/gin"
)

const LoginPath = "/auth/login"

func under(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// PageGuard 保护 /main 下的页面：未登录去登录页，角色不符跳回自己的首页
func PageGuard(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		p, err := resolve(c, a)
		if err != nil || p == nil {
			c.Redirect(http.StatusFound, LoginPath+"?next="+url.QueryEscape(path))
			c.Abort()
			return
		}

		switch {
		case under(path, "/main/faculty") && p.Role != model.RoleFaculty,
			under(path, "/main/student") && p.Role != model.RoleStudent:
			c.Redirect(http.StatusFound, model.DashboardPath(p.Role))
			c.Abort()
			return
		}

		c.Set(ContextPrincipalKey, p)
		c.Next()
	}
}
