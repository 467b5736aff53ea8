package ws

import (
	"time"

	"github.com/Phantasm0009/search-party/internal/domain"
)

// Envelope is the wire frame for every outbound event.
type Envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Payload structs
type RoomJoinedPayload struct {
	Room       domain.RoomSummary    `json:"room"`
	User       domain.Participant    `json:"user"`
	Users      []domain.Participant  `json:"users"`
	Searches   []domain.Search       `json:"searches"`
	Messages   []domain.ChatMessage  `json:"messages"`
	TopResults []domain.RankedResult `json:"topResults"`
}

type VoteUpdatedPayload struct {
	SearchID  string              `json:"searchId"`
	URL       string              `json:"url"`
	Upvotes   int                 `json:"upvotes"`
	Downvotes int                 `json:"downvotes"`
	UserID    string              `json:"userId"`
	VoteType  string              `json:"voteType"`
	UserVote  domain.VotePolarity `json:"userVote"`
}

type ResultClickedPayload struct {
	SearchID   string `json:"searchId"`
	URL        string `json:"url"`
	ClickCount int    `json:"clickCount"`
}

type UserClickedLinkPayload struct {
	UserID       string    `json:"userId"`
	UserNickname string    `json:"userNickname"`
	URL          string    `json:"url"`
	SearchID     string    `json:"searchId"`
	Timestamp    time.Time `json:"timestamp"`
}

type SharedNavigationPayload struct {
	URL                string    `json:"url"`
	Title              string    `json:"title"`
	NavigatedBy        string    `json:"navigatedBy"`
	Timestamp          time.Time `json:"timestamp"`
	SearchID           string    `json:"searchId,omitempty"`
	IsManualNavigation bool      `json:"isManualNavigation,omitempty"`
}

type BrowsingToggledPayload struct {
	Enabled   bool      `json:"enabled"`
	ToggledBy string    `json:"toggledBy"`
	Timestamp time.Time `json:"timestamp"`
}

type ScrollUpdatePayload struct {
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	ScrolledBy string    `json:"scrolledBy"`
	Timestamp  time.Time `json:"timestamp"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func NewRoomJoined(room *domain.Room, user domain.Participant) *Envelope {
	return &Envelope{
		Type: EventRoomJoined,
		Data: RoomJoinedPayload{
			Room:       room.Summary(),
			User:       user,
			Users:      room.Participants(),
			Searches:   room.Searches(),
			Messages:   room.Messages(),
			TopResults: room.TopResults(0),
		},
	}
}

func NewUserJoined(user domain.Participant) *Envelope {
	return &Envelope{
		Type: EventUserJoined,
		Data: user,
	}
}

func NewUserLeft(user domain.Participant) *Envelope {
	return &Envelope{
		Type: EventUserLeft,
		Data: user,
	}
}

func NewSearchAdded(search domain.Search) *Envelope {
	return &Envelope{
		Type: EventSearchAdded,
		Data: search,
	}
}

func NewTopResultsUpdated(ranked []domain.RankedResult) *Envelope {
	return &Envelope{
		Type: EventTopResultsUpdated,
		Data: ranked,
	}
}

func NewVoteUpdated(tally domain.VoteTally, userID, voteType string) *Envelope {
	return &Envelope{
		Type: EventVoteUpdated,
		Data: VoteUpdatedPayload{
			SearchID:  tally.SearchID,
			URL:       tally.URL,
			Upvotes:   tally.Upvotes,
			Downvotes: tally.Downvotes,
			UserID:    userID,
			VoteType:  voteType,
			UserVote:  tally.UserVote,
		},
	}
}

func NewMessageReceived(msg domain.ChatMessage) *Envelope {
	return &Envelope{
		Type: EventMessageReceived,
		Data: msg,
	}
}

func NewResultClicked(searchID, url string, clickCount int) *Envelope {
	return &Envelope{
		Type: EventResultClicked,
		Data: ResultClickedPayload{
			SearchID:   searchID,
			URL:        url,
			ClickCount: clickCount,
		},
	}
}

func NewUserClickedLink(user domain.Participant, url, searchID string) *Envelope {
	return &Envelope{
		Type: EventUserClickedLink,
		Data: UserClickedLinkPayload{
			UserID:       user.ID,
			UserNickname: user.Nickname,
			URL:          url,
			SearchID:     searchID,
			Timestamp:    time.Now().UTC(),
		},
	}
}

func NewSharedNavigation(url, title, navigatedBy, searchID string, manual bool) *Envelope {
	if title == "" {
		title = "Loading..."
	}

	return &Envelope{
		Type: EventSharedNavigation,
		Data: SharedNavigationPayload{
			URL:                url,
			Title:              title,
			NavigatedBy:        navigatedBy,
			Timestamp:          time.Now().UTC(),
			SearchID:           searchID,
			IsManualNavigation: manual,
		},
	}
}

func NewBrowsingToggled(enabled bool, toggledBy string) *Envelope {
	return &Envelope{
		Type: EventSharedBrowsingToggled,
		Data: BrowsingToggledPayload{
			Enabled:   enabled,
			ToggledBy: toggledBy,
			Timestamp: time.Now().UTC(),
		},
	}
}

func NewScrollUpdate(pos domain.ScrollPosition, scrolledBy string) *Envelope {
	return &Envelope{
		Type: EventSharedScrollUpdate,
		Data: ScrollUpdatePayload{
			X:          pos.X,
			Y:          pos.Y,
			ScrolledBy: scrolledBy,
			Timestamp:  time.Now().UTC(),
		},
	}
}

// NewIframeStateReceived echoes the sender's state map with attribution
// appended.
func NewIframeStateReceived(state map[string]any, updatedBy string) *Envelope {
	data := make(map[string]any, len(state)+2)
	for k, v := range state {
		data[k] = v
	}
	data["updatedBy"] = updatedBy
	data["timestamp"] = time.Now().UTC()

	return &Envelope{
		Type: EventIframeStateReceived,
		Data: data,
	}
}

func NewError(message string) *Envelope {
	return &Envelope{
		Type: EventError,
		Data: ErrorPayload{Message: message},
	}
}
