package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Campus_Portal/internal/config"
	"Campus_Portal/internal/logger"
	"Campus_Portal/internal/repository/redis"
	"Campus_Portal/internal/repository/sqlstore"
	"Campus_Portal/internal/router"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.MustLoad()
	logger.Init(cfg.Env, cfg.Log.Level)

	db, err := sqlstore.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("open database")
	}

	// 建表并按配置安装限流触发器
	limits := sqlstore.Limits{
		Complaint: sqlstore.Limit{Window: cfg.RateLimit.ComplaintWindow, Max: cfg.RateLimit.ComplaintMax},
		Listing:   sqlstore.Limit{Window: cfg.RateLimit.ListingWindow, Max: cfg.RateLimit.ListingMax},
		LostFound: sqlstore.Limit{Window: cfg.RateLimit.LostFoundWindow, Max: cfg.RateLimit.LostFoundMax},
	}
	if err = sqlstore.Migrate(db, limits); err != nil {
		logrus.WithError(err).Fatal("migrate")
	}

	// 连接redis
	rdb, err := redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logrus.WithError(err).Fatal("connect redis")
	}
	defer rdb.Close()

	r, hub, err := router.Build(router.Deps{Config: cfg, DB: db, Redis: rdb})
	if err != nil {
		logrus.WithError(err).Fatal("build router")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 订阅失败时聊天室不可用，直接退出交给编排重启
	go func() {
		if err := hub.Run(ctx); err != nil {
			logrus.WithError(err).Fatal("chat hub stopped")
		}
	}()

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logrus.WithFields(logrus.Fields{"addr": cfg.Addr, "driver": cfg.Database.Driver}).Info("server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("listen")
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("server shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
