package messaging

import "github.com/Phantasm0009/search-party/internal/domain"

const (
	RoomsQueue      = "rooms"
	DeadLetterQueue = "dead_letter_queue"
)

// RoomEventData is the payload carried by room lifecycle events. Only the
// public summary crosses the broker, never connection handles.
type RoomEventData struct {
	Room        domain.RoomSummary `json:"room"`
	Participant string             `json:"participant,omitempty"`
}
