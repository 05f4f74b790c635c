package chathub

import (
	"context"
	"encoding/json"

	"Campus_Portal/internal/metrics"
	"Campus_Portal/internal/model"

	"github.com/sirupsen/logrus"
)

// Chat 由 service.ChatService 实现
type Chat interface {
	History(ctx context.Context) ([]model.ChatMessage, error)
	Post(ctx context.Context, p *model.Principal, text string) (*model.ChatMessage, error)
}

// Subscriber 由 redis.ChatBus 实现，所有实例的新消息都从这里进入
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan model.ChatMessage, error)
}

// Hub 持有本实例的 websocket 连接；clients 只在 Run 的 goroutine 中读写
type Hub struct {
	chat       Chat
	bus        Subscriber
	register   chan *Client
	unregister chan *Client
	clients    map[*Client]struct{}
	done       chan struct{}
}

func NewHub(chat Chat, bus Subscriber) *Hub {
	return &Hub{
		chat:       chat,
		bus:        bus,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]struct{}),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) error {
	feed, err := h.bus.Subscribe(ctx)
	if err != nil {
		close(h.done)
		return err
	}
	defer func() {
		for c := range h.clients {
			h.drop(c)
		}
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case c := <-h.register:
			h.clients[c] = struct{}{}
			metrics.ChatClients.Inc()
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}
		case msg, ok := <-feed:
			if !ok {
				return nil
			}
			h.broadcast(msg)
		}
	}
}

func (h *Hub) broadcast(msg model.ChatMessage) {
	frame, err := json.Marshal(Frame{Type: FrameMessage, Message: &msg})
	if err != nil {
		logrus.WithError(err).Error("chat frame encode")
		return
	}
	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
			// 写不进去说明客户端太慢，断开让它重连后拉历史
			logrus.WithField("session_code", c.principal.SessionCode).Warn("chat client too slow, dropping")
			h.drop(c)
		}
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
	metrics.ChatClients.Dec()
}

func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
