package domain

import (
	"time"

	"github.com/google/uuid"
)

// Result is a single search hit. The url is its identity key within the
// parent search; vote identity is the (search id, url) pair.
type Result struct {
	ID           string `json:"id,omitempty"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	Snippet      string `json:"snippet"`
	DisplayLink  string `json:"displayLink,omitempty"`
	FormattedURL string `json:"formattedUrl,omitempty"`
	Image        string `json:"image,omitempty"`
	Upvotes      int    `json:"upvotes"`
	Downvotes    int    `json:"downvotes"`
	UserVote     string `json:"userVote,omitempty"`
}

// Click records that a participant opened a result url.
type Click struct {
	UserID    string    `json:"userId"`
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`
}

// Search is an entry in a room's search log. Author identity is denormalized
// at creation time; later nickname changes do not rewrite history. The result
// list is fixed at creation, the click log grows monotonically.
type Search struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	UserNickname string    `json:"userNickname"`
	UserAvatar   string    `json:"userAvatar"`
	Query        string    `json:"query"`
	Timestamp    time.Time `json:"timestamp"`
	Results      []Result  `json:"results"`
	Clicks       []Click   `json:"clicks"`
}

func newSearch(author *Participant, query string, results []Result) *Search {
	if results == nil {
		results = []Result{}
	}

	return &Search{
		ID:           uuid.NewString(),
		UserID:       author.ID,
		UserNickname: author.Nickname,
		UserAvatar:   author.Avatar,
		Query:        query,
		Timestamp:    time.Now().UTC(),
		Results:      results,
		Clicks:       []Click{},
	}
}

// ClickCount returns how many times url was clicked within this search.
func (s *Search) ClickCount(url string) int {
	count := 0
	for _, c := range s.Clicks {
		if c.URL == url {
			count++
		}
	}
	return count
}
