package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is an append-only chat transcript entry with the author's
// identity denormalized at send time.
type ChatMessage struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	UserNickname string    `json:"userNickname"`
	UserAvatar   string    `json:"userAvatar"`
	Message      string    `json:"message"`
	Timestamp    time.Time `json:"timestamp"`
}

func newChatMessage(author *Participant, text string) *ChatMessage {
	return &ChatMessage{
		ID:           uuid.NewString(),
		UserID:       author.ID,
		UserNickname: author.Nickname,
		UserAvatar:   author.Avatar,
		Message:      text,
		Timestamp:    time.Now().UTC(),
	}
}
