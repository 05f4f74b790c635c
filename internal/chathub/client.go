package chathub

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"Campus_Portal/internal/model"
	"Campus_Portal/internal/service"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	principal *model.Principal
	send      chan []byte
	notice    chan []byte
	// 历史里已经下发过的消息，注册后到历史查询之间的广播会重复
	seen map[string]struct{}
}

// Serve 接管已升级的连接：先注册再取历史，避免两者之间的消息丢失
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, p *model.Principal) {
	c := &Client{hub: h, conn: conn, principal: p, send: make(chan []byte, sendBuffer), notice: make(chan []byte, 8), seen: map[string]struct{}{}}
	if !h.join(c) {
		// hub 已停止（订阅失败或正在关闭），告知客户端稍后重连
		frame, _ := json.Marshal(Frame{Type: FrameError, Error: "chat unavailable"})
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteMessage(websocket.TextMessage, frame)
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "chat unavailable"))
		_ = conn.Close()
		return
	}

	history, err := h.chat.History(ctx)
	if err != nil {
		logrus.WithError(err).Error("chat history")
		history = nil
	}
	for _, m := range history {
		c.seen[m.ID] = struct{}{}
	}
	first, _ := json.Marshal(Frame{Type: FrameHistory, Messages: history})

	go c.writePump(first)
	go c.readPump(ctx)
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.leave(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).Warn("chat read")
			}
			return
		}

		var in inbound
		if err = json.Unmarshal(data, &in); err != nil {
			c.reply("invalid frame")
			continue
		}
		// 发出的消息经 pub/sub 回到 hub 再广播，包括发送者自己
		if _, err = c.hub.chat.Post(ctx, c.principal, in.Message); err != nil {
			var verr *service.ValidationError
			switch {
			case errors.As(err, &verr):
				c.reply(verr.Error())
			case errors.Is(err, service.ErrForbidden):
				c.reply("forbidden")
			default:
				logrus.WithError(err).Error("chat post")
				c.reply("internal server error")
			}
		}
	}
}

// reply 只发给当前连接，走 notice 而不是 send，send 由 hub 负责关闭
func (c *Client) reply(msg string) {
	frame, _ := json.Marshal(Frame{Type: FrameError, Error: msg})
	select {
	case c.notice <- frame:
	default:
	}
}

func (c *Client) writePump(first []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	if !c.write(websocket.TextMessage, first) {
		return
	}
	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				// hub 关闭了通道
				_ = c.write(websocket.CloseMessage, []byte{})
				return
			}
			if c.duplicate(frame) {
				continue
			}
			if !c.write(websocket.TextMessage, frame) {
				return
			}
		case frame := <-c.notice:
			if !c.write(websocket.TextMessage, frame) {
				return
			}
		case <-ticker.C:
			if !c.write(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) write(kind int, data []byte) bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(kind, data) == nil
}

func (c *Client) duplicate(frame []byte) bool {
	if len(c.seen) == 0 {
		return false
	}
	var f Frame
	if json.Unmarshal(frame, &f) != nil || f.Message == nil {
		return false
	}
	if _, ok := c.seen[f.Message.ID]; ok {
		delete(c.seen, f.Message.ID)
		return true
	}
	return false
}
