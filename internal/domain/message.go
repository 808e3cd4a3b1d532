package domain

import (
	"context"
	"time"
)

// MessageType distinguishes chat traffic from workspace comments
type MessageType string

const (
	MessageTypeChat    MessageType = "chat"
	MessageTypeComment MessageType = "comment"
	MessageTypeSystem  MessageType = "system"
)

// Message represents a message attached to a request
type Message struct {
	ID        int64       `json:"id"`
	RequestID int64       `json:"requestId"`
	SenderID  string      `json:"senderId"` // User ID or "ai"
	Content   string      `json:"content"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
}

// MessageCreate represents message creation data
type MessageCreate struct {
	RequestID int64
	SenderID  string
	Content   string
	Type      MessageType
}

// MessageRepository defines the interface for message storage
type MessageRepository interface {
	CreateMessage(ctx context.Context, input MessageCreate) (*Message, error)
	GetMessagesByRequestID(ctx context.Context, requestID int64) ([]Message, error)
}
