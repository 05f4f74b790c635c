package router

import (
	"Campus_Portal/internal/chathub"
	"Campus_Portal/internal/config"
	"Campus_Portal/internal/handler"
	"Campus_Portal/internal/pkg"
	rrepo "Campus_Portal/internal/repository/redis"
	"Campus_Portal/internal/repository/sqlstore"
	"Campus_Portal/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	// 为空时使用配置里的 SMTP
	Mailer service.Mailer
}

// Build 组装仓储、服务和 handler；返回的 hub 需要调用方启动
func Build(d Deps) (*gin.Engine, *chathub.Hub, error) {
	cfg := d.Config
	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, nil, err
	}

	users := &sqlstore.UserRepository{DB: d.DB}
	faculty := &sqlstore.FacultyRepository{DB: d.DB}
	sessions := &rrepo.SessionRepository{RDB: d.Redis, TTL: cfg.JWT.SessionTTL}
	codes := &rrepo.EmailRepository{RDB: d.Redis}
	bus := &rrepo.ChatBus{RDB: d.Redis, Channel: cfg.Chat.Channel}

	mailer := d.Mailer
	if mailer == nil {
		mailer = service.SMTPMailer(pkg.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}
	tokens := pkg.NewTokenManager(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	emailSvc := service.NewEmailService(codes, mailer)
	userSvc := service.NewUserService(users, sessions, faculty, emailSvc, tokens, cfg.Auth.AllowedEmailDomain)
	chatSvc := service.NewChatService(&sqlstore.ChatRepository{DB: d.DB}, bus, cfg.Chat.HistoryLimit, cfg.Chat.MessageTTL)
	hub := chathub.NewHub(chatSvc, bus)

	h := Handlers{
		Users: handler.NewUserHandler(userSvc, cfg.CookieSecure, cfg.JWT.SessionTTL),
		Email: handler.NewEmailHandler(emailSvc),
		Complaints: handler.NewComplaintHandler(service.NewComplaintService(
			&sqlstore.ComplaintRepository{DB: d.DB}, &sqlstore.UpvoteRepository{DB: d.DB})),
		Listings:      handler.NewListingHandler(service.NewListingService(&sqlstore.ListingRepository{DB: d.DB})),
		LostFound:     handler.NewLostFoundHandler(service.NewLostFoundService(&sqlstore.LostFoundRepository{DB: d.DB})),
		Announcements: handler.NewAnnouncementHandler(service.NewAnnouncementService(&sqlstore.AnnouncementRepository{DB: d.DB}, faculty)),
		Directory:     handler.NewDirectoryHandler(service.NewDirectoryService(faculty, users)),
		Chat:          handler.NewChatHandler(chatSvc, hub, cfg.AllowOrigins),
		Pages:         handler.NewPageHandler(cfg.WebRoot),
		Health:        handler.Health(sqlDB),
	}
	return InitRouter(userSvc, h, cfg.AllowOrigins), hub, nil
}
