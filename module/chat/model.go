package chat

import (
	"time"
)

// Message field names match the realtime new_message payload exactly,
// so the stored row is pushed as-is by the fan-out bridge.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	SenderID       int64     `json:"senderId"`
	Content        string    `json:"content"`
	Type           string    `json:"type"`
	CreatedAt      time.Time `json:"created_at"`
	IsRead         bool      `json:"isRead"`
}

const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeVideo = "video"
)

func ValidMessageType(t string) bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeVideo:
		return true
	}
	return false
}

// ConversationSummary is one row of the conversation list: the other
// participant plus the latest message.
type ConversationSummary struct {
	ID                 int64     `json:"id"`
	ContactName        string    `json:"contactName"`
	ContactImage       *string   `json:"contactImage"`
	LastMessageContent string    `json:"lastMessageContent"`
	LastActive         time.Time `json:"lastActive"`
	UnreadCount        int       `json:"unreadCount"`
}

// ConversationDetail is the history read path response.
type ConversationDetail struct {
	ConversationID int64     `json:"conversationId"`
	ContactName    string    `json:"contactName"`
	ContactImage   *string   `json:"contactImage"`
	ContactStatus  string    `json:"contactStatus"`
	Messages       []Message `json:"messages"`
}

type StartConversationRequest struct {
	TargetUserID int64 `json:"targetUserId" binding:"required"`
}

type SendMessageRequest struct {
	ConversationID int64  `json:"conversation_id" binding:"required"`
	Content        string `json:"content" binding:"required"`
	Type           string `json:"type"`
}
