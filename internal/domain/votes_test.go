package domain

import "testing"

func TestCastVote_TallyAndUserVote(t *testing.T) {
	l := newVoteLedger()

	tally := l.castVote("s1", "https://a.example", "u1", VoteUp)
	if tally.Upvotes != 1 || tally.Downvotes != 0 {
		t.Fatalf("unexpected tally: %+v", tally)
	}
	if tally.UserVote != VoteUp {
		t.Fatalf("expected user vote up, got %q", tally.UserVote)
	}
}

func TestCastVote_SwitchMovesVoteBetweenSets(t *testing.T) {
	l := newVoteLedger()

	l.castVote("s1", "https://a.example", "u1", VoteUp)
	tally := l.castVote("s1", "https://a.example", "u1", VoteDown)

	if tally.Upvotes != 0 || tally.Downvotes != 1 {
		t.Fatalf("switching polarity should move the vote, got %+v", tally)
	}
	if tally.UserVote != VoteDown {
		t.Fatalf("expected user vote down, got %q", tally.UserVote)
	}
}

func TestCastVote_RepeatIsIdempotent(t *testing.T) {
	l := newVoteLedger()

	l.castVote("s1", "https://a.example", "u1", VoteUp)
	tally := l.castVote("s1", "https://a.example", "u1", VoteUp)

	if tally.Upvotes != 1 {
		t.Fatalf("repeated up vote must not double count, got %d", tally.Upvotes)
	}
}

func TestCastVote_RetractClearsBothSets(t *testing.T) {
	l := newVoteLedger()

	l.castVote("s1", "https://a.example", "u1", VoteUp)
	tally := l.castVote("s1", "https://a.example", "u1", VoteNone)

	if tally.Upvotes != 0 || tally.Downvotes != 0 {
		t.Fatalf("retract should clear the vote, got %+v", tally)
	}
	if tally.UserVote != VoteNone {
		t.Fatalf("expected no user vote, got %q", tally.UserVote)
	}
}

func TestCastVote_PerParticipantIndependence(t *testing.T) {
	l := newVoteLedger()

	l.castVote("s1", "https://a.example", "u1", VoteUp)
	l.castVote("s1", "https://a.example", "u2", VoteUp)
	tally := l.castVote("s1", "https://a.example", "u3", VoteDown)

	if tally.Upvotes != 2 || tally.Downvotes != 1 {
		t.Fatalf("unexpected tally: %+v", tally)
	}
}

func testSearch(id string, urls ...string) *Search {
	results := make([]Result, 0, len(urls))
	for _, u := range urls {
		results = append(results, Result{Title: "t " + u, URL: u})
	}
	return &Search{ID: id, Query: "query " + id, Results: results}
}

func TestTopResults_ExcludesResultsWithoutRecords(t *testing.T) {
	l := newVoteLedger()
	searches := []*Search{testSearch("s1", "https://a.example", "https://b.example")}

	l.initRecord("s1", "https://a.example")
	l.castVote("s1", "https://a.example", "u1", VoteUp)

	ranked := topResults(searches, l, 0)
	if len(ranked) != 1 {
		t.Fatalf("expected only voted-on result, got %d", len(ranked))
	}
	if ranked[0].URL != "https://a.example" {
		t.Fatalf("unexpected url %q", ranked[0].URL)
	}
}

func TestTopResults_SeededButUnvotedRecordsDoNotRank(t *testing.T) {
	l := newVoteLedger()
	searches := []*Search{testSearch("s1", "https://a.example", "https://b.example")}

	l.initRecord("s1", "https://a.example")
	l.initRecord("s1", "https://b.example")

	if ranked := topResults(searches, l, 0); len(ranked) != 0 {
		t.Fatalf("fresh search must rank nothing, got %+v", ranked)
	}

	// Balanced tallies still qualify at score zero.
	l.castVote("s1", "https://a.example", "u1", VoteUp)
	l.castVote("s1", "https://a.example", "u2", VoteDown)

	ranked := topResults(searches, l, 0)
	if len(ranked) != 1 || ranked[0].URL != "https://a.example" || ranked[0].Score != 0 {
		t.Fatalf("balanced tally should rank at score zero: %+v", ranked)
	}

	// Retracting the last vote drops the result back out.
	l.castVote("s1", "https://b.example", "u1", VoteUp)
	l.castVote("s1", "https://b.example", "u1", VoteNone)

	if ranked := topResults(searches, l, 0); len(ranked) != 1 {
		t.Fatalf("retracted-to-empty record must not rank, got %+v", ranked)
	}
}

func TestTopResults_OrdersByScoreWithStableTies(t *testing.T) {
	l := newVoteLedger()
	searches := []*Search{testSearch("s1", "https://a.example", "https://b.example", "https://c.example")}

	for _, u := range []string{"https://a.example", "https://b.example", "https://c.example"} {
		l.initRecord("s1", u)
	}

	l.castVote("s1", "https://b.example", "u1", VoteUp)
	l.castVote("s1", "https://b.example", "u2", VoteUp)
	l.castVote("s1", "https://a.example", "u1", VoteUp)
	l.castVote("s1", "https://c.example", "u1", VoteUp)

	ranked := topResults(searches, l, 0)
	if len(ranked) != 3 {
		t.Fatalf("expected 3 ranked results, got %d", len(ranked))
	}
	if ranked[0].URL != "https://b.example" {
		t.Fatalf("highest score should rank first, got %q", ranked[0].URL)
	}
	// a and c tie at +1; a was encountered first and must stay ahead.
	if ranked[1].URL != "https://a.example" || ranked[2].URL != "https://c.example" {
		t.Fatalf("tie order broken: %q then %q", ranked[1].URL, ranked[2].URL)
	}
}

func TestTopResults_LaterSearchReplacesSameURL(t *testing.T) {
	l := newVoteLedger()
	searches := []*Search{
		testSearch("s1", "https://a.example", "https://b.example"),
		testSearch("s2", "https://a.example"),
	}

	l.initRecord("s1", "https://a.example")
	l.initRecord("s1", "https://b.example")
	l.initRecord("s2", "https://a.example")

	l.castVote("s1", "https://b.example", "u1", VoteUp)
	l.castVote("s2", "https://a.example", "u1", VoteUp)
	l.castVote("s2", "https://a.example", "u2", VoteUp)

	ranked := topResults(searches, l, 0)
	if len(ranked) != 2 {
		t.Fatalf("url entries must be keyed by url, got %d", len(ranked))
	}
	if ranked[0].URL != "https://a.example" || ranked[0].SearchID != "s2" {
		t.Fatalf("later record should win for the url: %+v", ranked[0])
	}
	if ranked[0].Query != "query s2" {
		t.Fatalf("ranked entry should carry the originating query, got %q", ranked[0].Query)
	}
}

func TestTopResults_TruncatesToLimit(t *testing.T) {
	l := newVoteLedger()

	urls := []string{
		"https://1.example", "https://2.example", "https://3.example",
		"https://4.example", "https://5.example", "https://6.example",
		"https://7.example", "https://8.example", "https://9.example",
		"https://10.example", "https://11.example", "https://12.example",
	}
	searches := []*Search{testSearch("s1", urls...)}
	for _, u := range urls {
		l.initRecord("s1", u)
		l.castVote("s1", u, "u1", VoteUp)
	}

	if got := len(topResults(searches, l, 0)); got != DefaultTopResultsLimit {
		t.Fatalf("default limit should apply, got %d", got)
	}
	if got := len(topResults(searches, l, 3)); got != 3 {
		t.Fatalf("explicit limit should apply, got %d", got)
	}
}

func TestTopResults_NegativeScoresStillRank(t *testing.T) {
	l := newVoteLedger()
	searches := []*Search{testSearch("s1", "https://a.example")}

	l.initRecord("s1", "https://a.example")
	l.castVote("s1", "https://a.example", "u1", VoteDown)

	ranked := topResults(searches, l, 0)
	if len(ranked) != 1 || ranked[0].Score != -1 {
		t.Fatalf("downvoted result should still rank: %+v", ranked)
	}
}
