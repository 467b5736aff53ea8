package domain

import "sort"

// VotePolarity is a participant's vote on a result: up, down, or none
// (retract).
type VotePolarity string

const (
	VoteUp   VotePolarity = "up"
	VoteDown VotePolarity = "down"
	VoteNone VotePolarity = ""
)

type voteKey struct {
	searchID string
	url      string
}

// VoteRecord holds the voter sets for one (search id, url) pair. A
// participant id appears in at most one of the two sets.
type VoteRecord struct {
	Up   map[string]struct{}
	Down map[string]struct{}
}

func newVoteRecord() *VoteRecord {
	return &VoteRecord{
		Up:   make(map[string]struct{}),
		Down: make(map[string]struct{}),
	}
}

// VoteTally is the resulting state returned by every CastVote call, whether
// or not the net state changed.
type VoteTally struct {
	SearchID  string       `json:"searchId"`
	URL       string       `json:"url"`
	Upvotes   int          `json:"upvotes"`
	Downvotes int          `json:"downvotes"`
	UserVote  VotePolarity `json:"userVote"`
}

// voteLedger tracks per-result voter sets, keyed by (search id, url).
type voteLedger struct {
	records map[voteKey]*VoteRecord
}

func newVoteLedger() *voteLedger {
	return &voteLedger{records: make(map[voteKey]*VoteRecord)}
}

// initRecord registers an empty record so the result becomes rankable once
// any vote lands. Idempotent.
func (l *voteLedger) initRecord(searchID, url string) {
	key := voteKey{searchID, url}
	if _, ok := l.records[key]; !ok {
		l.records[key] = newVoteRecord()
	}
}

func (l *voteLedger) record(searchID, url string) *VoteRecord {
	return l.records[voteKey{searchID, url}]
}

// castVote removes the participant from both sets, then re-adds according to
// polarity. Same-polarity repeats are idempotent; the tally is returned
// regardless so callers can re-broadcast.
func (l *voteLedger) castVote(searchID, url, participantID string, polarity VotePolarity) VoteTally {
	key := voteKey{searchID, url}
	rec, ok := l.records[key]
	if !ok {
		rec = newVoteRecord()
		l.records[key] = rec
	}

	delete(rec.Up, participantID)
	delete(rec.Down, participantID)

	userVote := VoteNone
	switch polarity {
	case VoteUp:
		rec.Up[participantID] = struct{}{}
		userVote = VoteUp
	case VoteDown:
		rec.Down[participantID] = struct{}{}
		userVote = VoteDown
	}

	return VoteTally{
		SearchID:  searchID,
		URL:       url,
		Upvotes:   len(rec.Up),
		Downvotes: len(rec.Down),
		UserVote:  userVote,
	}
}

// RankedResult is a result projected into the room's top-results view.
type RankedResult struct {
	Result
	Score     int    `json:"score"`
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`
	SearchID  string `json:"searchId"`
	Query     string `json:"query"`
}

// topResults scans searches in chronological order and ranks every result
// holding at least one vote, by upvotes-downvotes descending. Entries are
// keyed by url: a url first encountered keeps its encounter position for tie
// ordering, while a later search's voted record replaces its tally. Results
// with no votes stay out of the list, so a fresh search ranks nothing; equal
// up and down counts still qualify at score zero.
func topResults(searches []*Search, ledger *voteLedger, limit int) []RankedResult {
	if limit <= 0 {
		limit = DefaultTopResultsLimit
	}

	order := make([]string, 0)
	byURL := make(map[string]RankedResult)

	for _, search := range searches {
		for _, result := range search.Results {
			rec := ledger.record(search.ID, result.URL)
			if rec == nil || len(rec.Up)+len(rec.Down) == 0 {
				continue
			}
			if _, seen := byURL[result.URL]; !seen {
				order = append(order, result.URL)
			}
			byURL[result.URL] = RankedResult{
				Result:    result,
				Score:     len(rec.Up) - len(rec.Down),
				Upvotes:   len(rec.Up),
				Downvotes: len(rec.Down),
				SearchID:  search.ID,
				Query:     search.Query,
			}
		}
	}

	ranked := make([]RankedResult, 0, len(order))
	for _, url := range order {
		ranked = append(ranked, byURL[url])
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
