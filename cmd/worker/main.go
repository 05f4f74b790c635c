package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"Campus_Portal/internal/config"
	"Campus_Portal/internal/logger"
	"Campus_Portal/internal/pkg"
	"Campus_Portal/internal/repository/redis"
	"Campus_Portal/internal/repository/sqlstore"
	"Campus_Portal/internal/service"

	"github.com/sirupsen/logrus"
)

// worker 负责 outbox 投递和过期聊天清理，API 进程不跑后台任务
func main() {
	cfg := config.MustLoad()
	logger.Init(cfg.Env, cfg.Log.Level)

	db, err := sqlstore.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("open database")
	}
	rdb, err := redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logrus.WithError(err).Fatal("connect redis")
	}
	defer rdb.Close()

	producer := pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
	defer producer.Close()

	relayer := service.NewOutboxRelayer(&sqlstore.OutboxRepository{DB: db}, service.KafkaSender(producer),
		cfg.Worker.OutboxBatch, cfg.Worker.OutboxInterval)

	// 清理只需要 ChatStore，不发布消息
	chat := service.NewChatService(&sqlstore.ChatRepository{DB: db}, nil, cfg.Chat.HistoryLimit, cfg.Chat.MessageTTL)
	sweeper := service.NewChatSweeper(chat, &redis.DistLock{RDB: rdb}, cfg.Worker.SweepInterval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		relayer.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		sweeper.Run(ctx)
	}()
	logrus.WithFields(logrus.Fields{"topic": cfg.Kafka.Topic, "sweep_interval": cfg.Worker.SweepInterval}).Info("worker started")

	wg.Wait()
	logrus.Info("worker stopped")
}
