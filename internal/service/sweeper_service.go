package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

const sweepLockName = "chat:sweep"

type sweepTarget interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// ChatSweeper 定期清理过期聊天消息，多个 worker 之间用分布式锁互斥
type ChatSweeper struct {
	chat     sweepTarget
	lock     Locker
	interval time.Duration
	token    string
}

func NewChatSweeper(chat sweepTarget, lock Locker, interval time.Duration) *ChatSweeper {
	host, _ := os.Hostname()
	return &ChatSweeper{
		chat:     chat,
		lock:     lock,
		interval: interval,
		token:    fmt.Sprintf("%s-%d", host, os.Getpid()),
	}
}

func (s *ChatSweeper) Run(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce 拿不到锁说明别的 worker 正在清理，直接跳过
func (s *ChatSweeper) SweepOnce(ctx context.Context) (int64, bool) {
	got, err := s.lock.Acquire(ctx, sweepLockName, s.token, s.interval)
	if err != nil {
		logrus.WithError(err).Warn("chat sweep lock")
		return 0, false
	}
	if !got {
		return 0, false
	}
	defer func() {
		if err := s.lock.Release(ctx, sweepLockName, s.token); err != nil {
			logrus.WithError(err).Warn("chat sweep unlock")
		}
	}()

	n, err := s.chat.SweepExpired(ctx)
	if err != nil {
		logrus.WithError(err).Error("chat sweep")
		return 0, true
	}
	if n > 0 {
		logrus.WithField("deleted", n).Info("expired chat messages removed")
	}
	return n, true
}
