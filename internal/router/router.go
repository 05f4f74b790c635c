package router

import (
	"time"

	"Campus_Portal/internal/handler"
	"Campus_Portal/internal/middleware"
	"Campus_Portal/internal/model"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers 由 cmd/api 组装好后传入
type Handlers struct {
	Users         *handler.UserHandler
	Email         *handler.EmailHandler
	Complaints    *handler.ComplaintHandler
	Listings      *handler.ListingHandler
	LostFound     *handler.LostFoundHandler
	Announcements *handler.AnnouncementHandler
	Directory     *handler.DirectoryHandler
	Chat          *handler.ChatHandler
	Pages         *handler.PageHandler
	Health        gin.HandlerFunc
}

func InitRouter(auth middleware.Authenticator, h Handlers, allowOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.AuthMiddleware(auth)
	studentOnly := middleware.RequireRole(model.RoleStudent)
	facultyOnly := middleware.RequireRole(model.RoleFaculty)

	api := r.Group("/api")
	api.GET("/health", h.Health)

	// 账号相关接口
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/email/code", h.Email.SendCode)
		authGroup.POST("/register", h.Users.Register)
		authGroup.POST("/login", h.Users.Login)
		authGroup.POST("/refresh", h.Users.TokenRefresh)
		authGroup.POST("/reset", h.Users.ResetPassword)
		authGroup.POST("/logout", requireAuth, h.Users.Logout)
		authGroup.POST("/change-password", requireAuth, h.Users.ChangePassword)
	}
	api.GET("/me", requireAuth, h.Users.Me)

	// 投诉列表不登录也能看
	complaintGroup := api.Group("/complaints")
	{
		complaintGroup.GET("", middleware.OptionalAuth(auth), h.Complaints.List)
		complaintGroup.POST("", requireAuth, studentOnly, h.Complaints.Create)
		complaintGroup.POST("/upvote", requireAuth, studentOnly, h.Complaints.ToggleUpvote)
	}

	// 商品列表公开，未登录时不返回联系方式
	marketGroup := api.Group("/marketplace")
	{
		marketGroup.GET("", middleware.OptionalAuth(auth), h.Listings.List)
		marketGroup.POST("", requireAuth, studentOnly, h.Listings.Create)
		marketGroup.POST("/sold", requireAuth, h.Listings.MarkSold)
	}

	lostFoundGroup := api.Group("/lost-found", requireAuth)
	{
		lostFoundGroup.GET("", h.LostFound.List)
		lostFoundGroup.POST("", h.LostFound.Create)
		lostFoundGroup.DELETE("/:id", h.LostFound.Resolve)
	}

	announcementGroup := api.Group("/announcements", requireAuth)
	{
		announcementGroup.GET("", h.Announcements.List)
		announcementGroup.POST("", facultyOnly, h.Announcements.Create)
	}

	api.GET("/directory", requireAuth, h.Directory.List)

	chatGroup := api.Group("/chat", requireAuth)
	{
		chatGroup.GET("/messages", h.Chat.History)
		chatGroup.POST("/messages", studentOnly, h.Chat.Post)
		chatGroup.GET("/ws", studentOnly, h.Chat.ServeWebSocket)
	}

	// 页面路由：未登录跳登录页，角色不符跳回各自首页
	r.GET("/main/*path", middleware.PageGuard(auth), h.Pages.Serve)

	return r
}
