package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Phantasm0009/search-party/internal/infrastructure/validate"
	"github.com/google/uuid"
)

const (
	DefaultNickname = "Anonymous"

	avatarBaseURL = "https://api.dicebear.com/7.x/avataaars/svg"
)

// Participant is a member of a room. ConnID is the live transport connection
// handle; it is never serialized and at most one connection is live per
// participant id within a room.
type Participant struct {
	ID        string    `json:"id"`
	Nickname  string    `json:"nickname"`
	Avatar    string    `json:"avatar"`
	JoinedAt  time.Time `json:"joinedAt"`
	IsCreator bool      `json:"isCreator"`
	ConnID    string    `json:"-"`
}

// ParticipantDescriptor is the client-supplied identity carried by a join
// request. Every field is optional; NewParticipant fills the gaps.
type ParticipantDescriptor struct {
	ID        string `json:"id"`
	Nickname  string `json:"nickname"`
	Avatar    string `json:"avatar"`
	IsCreator bool   `json:"isCreator"`
}

var validateNickname = validate.Compose(
	validate.Required(),
	validate.MaxLength(32),
	validate.NoControlChars(),
)

// NewParticipant builds a participant from a descriptor, defaulting every
// missing or invalid field rather than failing: room consistency must not
// depend on client payload quality.
func NewParticipant(desc ParticipantDescriptor, connID string) *Participant {
	id := desc.ID
	if id == "" {
		id = uuid.NewString()
	}

	nickname := strings.TrimSpace(desc.Nickname)
	if err := validateNickname(nickname); err != nil {
		nickname = DefaultNickname
	}

	avatar := desc.Avatar
	if avatar == "" {
		avatar = DeriveAvatar(nickname)
	}

	return &Participant{
		ID:        id,
		Nickname:  nickname,
		Avatar:    avatar,
		JoinedAt:  time.Now().UTC(),
		IsCreator: desc.IsCreator,
		ConnID:    connID,
	}
}

// DeriveAvatar is deterministic in the nickname so a participant keeps the
// same avatar across reconnects.
func DeriveAvatar(nickname string) string {
	return fmt.Sprintf("%s?seed=%s", avatarBaseURL, url.QueryEscape(nickname))
}
