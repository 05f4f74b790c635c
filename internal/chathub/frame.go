package chathub

import "Campus_Portal/internal/model"

const (
	FrameHistory = "history"
	FrameMessage = "message"
	FrameError   = "error"
)

// Frame 服务端下发的 websocket 帧
type Frame struct {
	Type     string              `json:"type"`
	Messages []model.ChatMessage `json:"messages,omitempty"`
	Message  *model.ChatMessage  `json:"message,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// inbound 客户端上行只带正文，身份取自会话
type inbound struct {
	Message string `json:"message"`
}
