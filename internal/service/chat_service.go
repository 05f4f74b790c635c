package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"Campus_Portal/internal/metrics"
	"Campus_Portal/internal/model"
	"Campus_Portal/internal/pkg"

	"github.com/sirupsen/logrus"
)

const maxChatMessageLength = 500

type ChatService struct {
	messages     ChatStore
	bus          ChatPublisher
	historyLimit int
	ttl          time.Duration
	now          func() time.Time
}

func NewChatService(messages ChatStore, bus ChatPublisher, historyLimit int, ttl time.Duration) *ChatService {
	if historyLimit <= 0 {
		historyLimit = 500
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ChatService{
		messages:     messages,
		bus:          bus,
		historyLimit: historyLimit,
		ttl:          ttl,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// History 最近的未过期消息，按时间升序
func (s *ChatService) History(ctx context.Context) ([]model.ChatMessage, error) {
	return s.messages.Recent(ctx, s.historyLimit, s.now())
}

// Post 以调用者的匿名代号落库，再通过 pub/sub 广播给所有实例
func (s *ChatService) Post(ctx context.Context, p *model.Principal, text string) (*model.ChatMessage, error) {
	// 没有合法代号的学生不能发言，避免以空名或真实身份出现在聊天室
	if !p.IsStudent() || !pkg.IsSessionCode(p.SessionCode) {
		return nil, ErrForbidden
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, invalid("field message is required")
	}
	if utf8.RuneCountInString(text) > maxChatMessageLength {
		return nil, invalid("field message is too long")
	}

	now := s.now()
	msg := &model.ChatMessage{
		SessionCode: p.SessionCode,
		Message:     text,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	metrics.ChatMessages.Inc()

	// 已落库的消息广播失败不回滚，重连的客户端会从历史里拿到
	if err := s.bus.Publish(ctx, *msg); err != nil {
		logrus.WithError(err).WithField("message_id", msg.ID).Warn("chat publish failed")
	}
	return msg, nil
}

func (s *ChatService) SweepExpired(ctx context.Context) (int64, error) {
	return s.messages.DeleteExpired(ctx, s.now())
}
