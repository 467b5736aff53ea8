package domain

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultRoomName        = "Untitled Room"
	DefaultTopResultsLimit = 10

	maxMessageLength = 2000
	maxQueryLength   = 512
)

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomAlreadyExists = errors.New("room already exists")
	ErrInvalidInput      = errors.New("invalid input")
)

// Room is the authoritative per-room aggregate: membership, search log, chat
// transcript, vote ledger and shared-browsing state. All mutation goes
// through its methods so the invariants hold after every operation.
//
// Inbound events are serialized by the router's dispatch loop, but REST
// handlers read summaries concurrently, so the aggregate carries its own
// lock.
type Room struct {
	ID        string
	Name      string
	CreatedAt time.Time

	mu           sync.RWMutex
	participants []*Participant
	searches     []*Search
	messages     []*ChatMessage
	votes        *voteLedger
	browsing     *SharedBrowsing
}

func NewRoom(name string) *Room {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultRoomName
	}

	return &Room{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		votes:     newVoteLedger(),
		browsing:  newSharedBrowsing(),
	}
}

// Join resolves a join request against current membership. A descriptor
// carrying a known participant id is a reconnect: the connection handle is
// swapped in place and nickname, avatar, join time and creator flag are
// preserved. Anything else is a new join.
func (r *Room) Join(desc ParticipantDescriptor, connID string) (participant *Participant, reconnected bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if desc.ID != "" {
		for _, p := range r.participants {
			if p.ID == desc.ID {
				p.ConnID = connID
				return p, true
			}
		}
	}

	p := NewParticipant(desc, connID)
	r.participants = append(r.participants, p)
	return p, false
}

// RemoveParticipant drops a member on disconnect. Removal preserves the
// relative order of the remaining members.
func (r *Room) RemoveParticipant(participantID string) (*Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.participants {
		if p.ID == participantID {
			r.participants = append(r.participants[:i], r.participants[i+1:]...)
			return p, true
		}
	}
	return nil, false
}

// AppendSearch denormalizes the author into a new search entry, seeds an
// empty vote record for every result and appends to the search log. A copy
// safe for concurrent serialization is returned.
func (r *Room) AppendSearch(author *Participant, query string, results []Result) Search {
	if len(query) > maxQueryLength {
		query = query[:maxQueryLength]
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	search := newSearch(author, query, results)
	for _, result := range search.Results {
		r.votes.initRecord(search.ID, result.URL)
	}
	r.searches = append(r.searches, search)

	return search.clone()
}

// AppendMessage appends to the chat transcript and returns a copy for
// broadcast.
func (r *Room) AppendMessage(author *Participant, text string) ChatMessage {
	if len(text) > maxMessageLength {
		text = text[:maxMessageLength]
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	msg := newChatMessage(author, text)
	r.messages = append(r.messages, msg)
	return *msg
}

// RecordClick appends to the click log of the given search and reports the
// updated per-url click count. Unknown search ids are silently ignored.
func (r *Room) RecordClick(searchID, participantID, url string) (count int, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, search := range r.searches {
		if search.ID == searchID {
			search.Clicks = append(search.Clicks, Click{
				UserID:    participantID,
				URL:       url,
				Timestamp: time.Now().UTC(),
			})
			return search.ClickCount(url), true
		}
	}
	return 0, false
}

// CastVote retracts any prior vote by the participant on the result and
// applies the new polarity. The resulting tally is always returned, even when
// nothing changed.
func (r *Room) CastVote(searchID, url, participantID string, polarity VotePolarity) VoteTally {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.votes.castVote(searchID, url, participantID, polarity)
}

// TopResults ranks every voted-on result by net score, ties in encounter
// order, truncated to limit (<=0 means the default of 10).
func (r *Room) TopResults(limit int) []RankedResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return topResults(r.searches, r.votes, limit)
}

func (r *Room) ToggleBrowsing(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.browsing.toggle(enabled)
}

// NavigateShared sets the live page. While browsing is disabled the request
// is ignored and false is returned.
func (r *Room) NavigateShared(url, title string, by *Participant) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.browsing.Enabled {
		return false
	}
	r.browsing.navigate(url, title, by)
	return true
}

// ScrollShared updates the room and per-participant scroll positions, only
// while browsing is enabled.
func (r *Room) ScrollShared(participantID string, pos ScrollPosition) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.browsing.Enabled {
		return false
	}
	r.browsing.scroll(participantID, pos)
	return true
}

// UpdateSharedTitle refreshes the current page title, only while browsing is
// enabled.
func (r *Room) UpdateSharedTitle(title string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.browsing.Enabled {
		return false
	}
	r.browsing.setTitle(title)
	return true
}

func (r *Room) BrowsingEnabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.browsing.Enabled
}

func (r *Room) BrowsingState() PublicState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.browsing.publicState()
}

func (r *Room) ParticipantCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.participants)
}

// Participants returns a copy of the membership list in join order.
func (r *Room) Participants() []Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Participant, 0, len(r.participants))
	for _, p := range r.participants {
		out = append(out, *p)
	}
	return out
}

// Searches returns a deep copy of the search log in insertion order.
func (r *Room) Searches() []Search {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Search, 0, len(r.searches))
	for _, s := range r.searches {
		out = append(out, s.clone())
	}
	return out
}

// Messages returns a copy of the chat transcript in insertion order.
func (r *Room) Messages() []ChatMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ChatMessage, 0, len(r.messages))
	for _, m := range r.messages {
		out = append(out, *m)
	}
	return out
}

// RoomSummary is the externally visible projection of a room. It never
// exposes connection handles, only counts and the public browsing state.
type RoomSummary struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	CreatedAt      time.Time   `json:"createdAt"`
	UserCount      int         `json:"userCount"`
	SearchCount    int         `json:"searchCount"`
	MessageCount   int         `json:"messageCount"`
	SharedBrowsing PublicState `json:"sharedBrowsing"`
}

func (r *Room) Summary() RoomSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return RoomSummary{
		ID:             r.ID,
		Name:           r.Name,
		CreatedAt:      r.CreatedAt,
		UserCount:      len(r.participants),
		SearchCount:    len(r.searches),
		MessageCount:   len(r.messages),
		SharedBrowsing: r.browsing.publicState(),
	}
}

func (s *Search) clone() Search {
	out := *s
	out.Results = make([]Result, len(s.Results))
	copy(out.Results, s.Results)
	out.Clicks = make([]Click, len(s.Clicks))
	copy(out.Clicks, s.Clicks)
	return out
}
