package domain

import "time"

const defaultPageTitle = "Loading..."

// NavigatedBy attributes the current shared page to the participant who
// navigated there.
type NavigatedBy struct {
	UserID    string    `json:"userId"`
	Nickname  string    `json:"nickname"`
	Timestamp time.Time `json:"timestamp"`
}

// ScrollPosition is a page scroll offset.
type ScrollPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SharedBrowsing is the collaborative-browsing state of a room. While
// disabled, url/title/attribution are nil; they are only set while enabled.
type SharedBrowsing struct {
	Enabled         bool                      `json:"enabled"`
	CurrentURL      *string                   `json:"currentUrl"`
	CurrentTitle    *string                   `json:"currentTitle"`
	LastNavigatedBy *NavigatedBy              `json:"lastNavigatedBy"`
	ScrollPosition  ScrollPosition            `json:"scrollPosition"`
	userScrolls     map[string]ScrollPosition `json:"-"`
}

// newSharedBrowsing starts enabled: rooms default to browsing together.
func newSharedBrowsing() *SharedBrowsing {
	return &SharedBrowsing{
		Enabled:     true,
		userScrolls: make(map[string]ScrollPosition),
	}
}

func (b *SharedBrowsing) toggle(enabled bool) {
	b.Enabled = enabled
	if !enabled {
		b.CurrentURL = nil
		b.CurrentTitle = nil
		b.LastNavigatedBy = nil
	}
}

// navigate sets the live page and resets scroll to origin. Callers gate on
// Enabled.
func (b *SharedBrowsing) navigate(url, title string, by *Participant) {
	if title == "" {
		title = defaultPageTitle
	}

	b.CurrentURL = &url
	b.CurrentTitle = &title
	b.LastNavigatedBy = &NavigatedBy{
		UserID:    by.ID,
		Nickname:  by.Nickname,
		Timestamp: time.Now().UTC(),
	}
	b.ScrollPosition = ScrollPosition{}
}

func (b *SharedBrowsing) scroll(participantID string, pos ScrollPosition) {
	b.ScrollPosition = pos
	b.userScrolls[participantID] = pos
}

func (b *SharedBrowsing) setTitle(title string) {
	if title != "" {
		b.CurrentTitle = &title
	}
}

// PublicState is the externally visible browsing projection used by room
// summaries; per-participant scroll positions stay internal.
type PublicState struct {
	Enabled         bool         `json:"enabled"`
	CurrentURL      *string      `json:"currentUrl"`
	CurrentTitle    *string      `json:"currentTitle"`
	LastNavigatedBy *NavigatedBy `json:"lastNavigatedBy"`
}

func (b *SharedBrowsing) publicState() PublicState {
	return PublicState{
		Enabled:         b.Enabled,
		CurrentURL:      b.CurrentURL,
		CurrentTitle:    b.CurrentTitle,
		LastNavigatedBy: b.LastNavigatedBy,
	}
}
