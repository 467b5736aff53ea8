package ws

import (
	"encoding/json"

	"github.com/Phantasm0009/search-party/internal/domain"
)

// inboundFrame is the wire frame read off a client connection. Data stays raw
// until the dispatcher knows the event.
type inboundFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// frame pairs a decoded wire frame with the connection it arrived on.
type frame struct {
	client *Client
	event  string
	data   json.RawMessage
}

type JoinRoomPayload struct {
	RoomID string                       `json:"roomId"`
	User   domain.ParticipantDescriptor `json:"user"`
}

type NewSearchPayload struct {
	Query   string          `json:"query"`
	Results []domain.Result `json:"results"`
}

type ResultClickPayload struct {
	SearchID string `json:"searchId"`
	URL      string `json:"url"`
	Title    string `json:"title"`
}

type VoteResultPayload struct {
	SearchID string `json:"searchId"`
	URL      string `json:"url"`
	Type     string `json:"type"`
}

type SendMessagePayload struct {
	Message string `json:"message"`
}

type ToggleBrowsingPayload struct {
	Enabled bool `json:"enabled"`
}

type NavigateSharedPayload struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type SharedScrollPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// decodePayload unmarshals an event payload, treating an absent body as the
// zero payload so malformed clients degrade instead of erroring.
func decodePayload[T any](data json.RawMessage, out *T) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}
