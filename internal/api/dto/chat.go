package dto

import "time"

// AuthenticateReq 实时通道身份绑定请求体
type AuthenticateReq struct {
	UserID string `json:"userId" validate:"required"`
}

// SendMessageReq 发送消息请求体
type SendMessageReq struct {
	ReceiverID string `json:"receiverId" validate:"required"`
	Content    string `json:"content" validate:"required"`
}

// MarkAsReadReq 标记为已读请求
// UserID 仅供 REST 兜底通道在没有 Token 时自报身份，实时通道忽略该字段
type MarkAsReadReq struct {
	MessageIDs []string `json:"messageIds" binding:"required,min=1" validate:"required,min=1"`
	UserID     string   `json:"userId,omitempty"`
}

// AuthenticatedDTO 身份绑定成功回执
type AuthenticatedDTO struct {
	UserID string `json:"userId"`
}

// MessageDTO 消息明细响应
type MessageDTO struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
}

// MarkedReadDTO 已读回执，只包含实际被接受的消息 id
type MarkedReadDTO struct {
	MessageIDs []string `json:"messageIds"`
}

// RecentChatDTO 会话列表项：与某个对端的最近一条消息及未读数
type RecentChatDTO struct {
	ContactID       string    `json:"contactId"`
	ContactName     string    `json:"contactName,omitempty"`
	ContactEmail    string    `json:"contactEmail,omitempty"`
	LastMessage     string    `json:"lastMessage"`
	LastMessageTime time.Time `json:"lastMessageTime"`
	Read            bool      `json:"read"`
	UnreadCount     int64     `json:"unreadCount"`
}
