package ws

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Phantasm0009/search-party/internal/domain"
	"github.com/Phantasm0009/search-party/internal/infrastructure/events"
	"github.com/Phantasm0009/search-party/internal/infrastructure/logging"
	"github.com/Phantasm0009/search-party/internal/infrastructure/metrics"
	"github.com/Phantasm0009/search-party/internal/infrastructure/profanity"
	"github.com/Phantasm0009/search-party/internal/infrastructure/repository"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

type nopLogger struct{}

func (nopLogger) Init() {}

func (nopLogger) Debug(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Debugf(string, ...any)                                                         {}
func (nopLogger) Info(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any)  {}
func (nopLogger) Infof(string, ...any)                                                          {}
func (nopLogger) Warn(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any)  {}
func (nopLogger) Warnf(string, ...any)                                                          {}
func (nopLogger) Error(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Errorf(string, ...any)                                                         {}
func (nopLogger) Fatal(logging.Category, logging.SubCategory, string, map[logging.ExtraKey]any) {}
func (nopLogger) Fatalf(string, ...any)                                                         {}

func newTestCore(t *testing.T) (*Core, *domain.Room) {
	t.Helper()

	rooms := repository.NewRooms(0, 0)
	room := domain.NewRoom("test room")
	if err := rooms.Create(context.Background(), room); err != nil {
		t.Fatalf("create room: %v", err)
	}

	core := NewCore(
		rooms,
		nil, // no profanity filter unless a test installs one
		events.NewRoomPublisher(nil),
		nopLogger{},
		metrics.New(prometheus.NewRegistry()),
	)
	return core, room
}

func newTestClient() *Client {
	return &Client{
		Message: make(chan *Envelope, 64),
		ID:      uuid.NewString(),
	}
}

func mustFrame(t *testing.T, cl *Client, event string, payload any) *frame {
	t.Helper()

	var data json.RawMessage
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		data = raw
	}
	return &frame{client: cl, event: event, data: data}
}

func drain(cl *Client) []*Envelope {
	var out []*Envelope
	for {
		select {
		case env := <-cl.Message:
			out = append(out, env)
		default:
			return out
		}
	}
}

func eventTypes(envs []*Envelope) []string {
	types := make([]string, 0, len(envs))
	for _, env := range envs {
		types = append(types, env.Type)
	}
	return types
}

func join(t *testing.T, core *Core, cl *Client, roomID, participantID, nickname string) domain.Participant {
	t.Helper()

	core.dispatch(mustFrame(t, cl, EventJoinRoom, JoinRoomPayload{
		RoomID: roomID,
		User:   domain.ParticipantDescriptor{ID: participantID, Nickname: nickname},
	}))

	envs := drain(cl)
	if len(envs) == 0 || envs[0].Type != EventRoomJoined {
		t.Fatalf("expected room_joined first, got %v", eventTypes(envs))
	}
	return envs[0].Data.(RoomJoinedPayload).User
}

func TestDispatch_JoinUnknownRoom(t *testing.T) {
	core, _ := newTestCore(t)
	cl := newTestClient()

	core.dispatch(mustFrame(t, cl, EventJoinRoom, JoinRoomPayload{RoomID: "missing"}))

	envs := drain(cl)
	if len(envs) != 1 || envs[0].Type != EventError {
		t.Fatalf("expected a single error event, got %v", eventTypes(envs))
	}
	if envs[0].Data.(ErrorPayload).Message != "Room not found" {
		t.Fatalf("unexpected error payload: %+v", envs[0].Data)
	}
}

func TestDispatch_JoinAnnouncesToOthersOnly(t *testing.T) {
	core, room := newTestCore(t)
	first := newTestClient()
	second := newTestClient()

	joined := join(t, core, first, room.ID, "", "ada")
	if joined.Nickname != "ada" {
		t.Fatalf("unexpected snapshot user: %+v", joined)
	}

	core.dispatch(mustFrame(t, second, EventJoinRoom, JoinRoomPayload{
		RoomID: room.ID,
		User:   domain.ParticipantDescriptor{Nickname: "bob"},
	}))

	secondEnvs := drain(second)
	if len(secondEnvs) != 1 || secondEnvs[0].Type != EventRoomJoined {
		t.Fatalf("joiner should only get the snapshot, got %v", eventTypes(secondEnvs))
	}

	snapshot := secondEnvs[0].Data.(RoomJoinedPayload)
	if len(snapshot.Users) != 2 {
		t.Fatalf("snapshot should carry current membership, got %d", len(snapshot.Users))
	}

	firstEnvs := drain(first)
	if len(firstEnvs) != 1 || firstEnvs[0].Type != EventUserJoined {
		t.Fatalf("existing member should see user_joined, got %v", eventTypes(firstEnvs))
	}
}

func TestDispatch_ReconnectSupersedesQuietly(t *testing.T) {
	core, room := newTestCore(t)
	observer := newTestClient()
	old := newTestClient()

	join(t, core, observer, room.ID, "", "watcher")
	participant := join(t, core, old, room.ID, "p1", "ada")
	drain(observer)

	fresh := newTestClient()
	core.dispatch(mustFrame(t, fresh, EventJoinRoom, JoinRoomPayload{
		RoomID: room.ID,
		User:   domain.ParticipantDescriptor{ID: participant.ID},
	}))

	freshEnvs := drain(fresh)
	if len(freshEnvs) != 1 || freshEnvs[0].Type != EventRoomJoined {
		t.Fatalf("reconnect should get the snapshot, got %v", eventTypes(freshEnvs))
	}
	if got := freshEnvs[0].Data.(RoomJoinedPayload).User; got.Nickname != "ada" {
		t.Fatalf("reconnect must keep identity, got %+v", got)
	}

	if envs := drain(observer); len(envs) != 0 {
		t.Fatalf("reconnect must not be announced, got %v", eventTypes(envs))
	}
	if room.ParticipantCount() != 2 {
		t.Fatalf("reconnect must not duplicate membership, got %d", room.ParticipantCount())
	}

	// The superseded connection dropping must not remove the member.
	core.handleDisconnect(old)
	if room.ParticipantCount() != 2 {
		t.Fatalf("stale disconnect removed membership, count %d", room.ParticipantCount())
	}
	if envs := drain(observer); len(envs) != 0 {
		t.Fatalf("stale disconnect must be silent, got %v", eventTypes(envs))
	}
}

func TestDispatch_DisconnectBroadcastsUserLeft(t *testing.T) {
	core, room := newTestCore(t)
	leaver := newTestClient()
	observer := newTestClient()

	left := join(t, core, leaver, room.ID, "", "ada")
	join(t, core, observer, room.ID, "", "watcher")
	drain(leaver)

	core.handleDisconnect(leaver)

	envs := drain(observer)
	if len(envs) != 1 || envs[0].Type != EventUserLeft {
		t.Fatalf("expected user_left, got %v", eventTypes(envs))
	}
	if got := envs[0].Data.(domain.Participant); got.ID != left.ID {
		t.Fatalf("user_left should carry the leaver, got %+v", got)
	}
	if room.ParticipantCount() != 1 {
		t.Fatalf("membership not removed, count %d", room.ParticipantCount())
	}
}

func TestDispatch_EventsBeforeJoinAreDropped(t *testing.T) {
	core, _ := newTestCore(t)
	cl := newTestClient()

	core.dispatch(mustFrame(t, cl, EventSendMessage, SendMessagePayload{Message: "hi"}))

	if envs := drain(cl); len(envs) != 0 {
		t.Fatalf("unjoined events must be dropped silently, got %v", eventTypes(envs))
	}
}

func TestDispatch_SearchBroadcastsLogAndRanking(t *testing.T) {
	core, room := newTestCore(t)
	author := newTestClient()
	observer := newTestClient()

	join(t, core, author, room.ID, "", "ada")
	join(t, core, observer, room.ID, "", "bob")
	drain(author)
	drain(observer)

	core.dispatch(mustFrame(t, author, EventNewSearch, NewSearchPayload{
		Query:   "golang",
		Results: []domain.Result{{Title: "Go", URL: "https://go.dev"}},
	}))

	for _, cl := range []*Client{author, observer} {
		envs := drain(cl)
		types := eventTypes(envs)
		if len(types) != 2 || types[0] != EventSearchAdded || types[1] != EventTopResultsUpdated {
			t.Fatalf("expected search_added then top_results_updated, got %v", types)
		}
		search := envs[0].Data.(domain.Search)
		if search.Query != "golang" || search.UserNickname != "ada" {
			t.Fatalf("unexpected search payload: %+v", search)
		}
		ranked := envs[1].Data.([]domain.RankedResult)
		if len(ranked) != 0 {
			t.Fatalf("ranking must be empty before any vote: %+v", ranked)
		}
	}
}

func TestDispatch_VoteBroadcastsTallyAndRanking(t *testing.T) {
	core, room := newTestCore(t)
	voter := newTestClient()

	participant := join(t, core, voter, room.ID, "", "ada")
	search := room.AppendSearch(&domain.Participant{ID: participant.ID, Nickname: "ada"}, "golang",
		[]domain.Result{{URL: "https://go.dev"}})

	core.dispatch(mustFrame(t, voter, EventVoteResult, VoteResultPayload{
		SearchID: search.ID,
		URL:      "https://go.dev",
		Type:     "up",
	}))

	envs := drain(voter)
	types := eventTypes(envs)
	if len(types) != 2 || types[0] != EventVoteUpdated || types[1] != EventTopResultsUpdated {
		t.Fatalf("expected vote_updated then top_results_updated, got %v", types)
	}

	vote := envs[0].Data.(VoteUpdatedPayload)
	if vote.Upvotes != 1 || vote.Downvotes != 0 || vote.UserVote != domain.VoteUp || vote.UserID != participant.ID {
		t.Fatalf("unexpected vote payload: %+v", vote)
	}

	ranked := envs[1].Data.([]domain.RankedResult)
	if len(ranked) != 1 || ranked[0].Score != 1 {
		t.Fatalf("unexpected ranking: %+v", ranked)
	}
}

func TestDispatch_VoteRepeatStillRebroadcasts(t *testing.T) {
	core, room := newTestCore(t)
	voter := newTestClient()

	participant := join(t, core, voter, room.ID, "", "ada")
	search := room.AppendSearch(&domain.Participant{ID: participant.ID, Nickname: "ada"}, "golang",
		[]domain.Result{{URL: "https://go.dev"}})

	payload := VoteResultPayload{SearchID: search.ID, URL: "https://go.dev", Type: "up"}
	core.dispatch(mustFrame(t, voter, EventVoteResult, payload))
	drain(voter)

	core.dispatch(mustFrame(t, voter, EventVoteResult, payload))
	envs := drain(voter)
	if len(envs) != 2 {
		t.Fatalf("no-op vote must still re-broadcast, got %v", eventTypes(envs))
	}
	if vote := envs[0].Data.(VoteUpdatedPayload); vote.Upvotes != 1 {
		t.Fatalf("repeat vote must not double count: %+v", vote)
	}
}

func TestDispatch_UnknownVoteTypeRetracts(t *testing.T) {
	core, room := newTestCore(t)
	voter := newTestClient()

	participant := join(t, core, voter, room.ID, "", "ada")
	search := room.AppendSearch(&domain.Participant{ID: participant.ID, Nickname: "ada"}, "golang",
		[]domain.Result{{URL: "https://go.dev"}})

	core.dispatch(mustFrame(t, voter, EventVoteResult, VoteResultPayload{
		SearchID: search.ID, URL: "https://go.dev", Type: "up",
	}))
	drain(voter)

	core.dispatch(mustFrame(t, voter, EventVoteResult, VoteResultPayload{
		SearchID: search.ID, URL: "https://go.dev", Type: "sideways",
	}))
	envs := drain(voter)
	vote := envs[0].Data.(VoteUpdatedPayload)
	if vote.Upvotes != 0 || vote.UserVote != domain.VoteNone {
		t.Fatalf("unknown type must retract, got %+v", vote)
	}
}

func TestDispatch_ResultClickWithBrowsingEnabled(t *testing.T) {
	core, room := newTestCore(t)
	clicker := newTestClient()
	observer := newTestClient()

	participant := join(t, core, clicker, room.ID, "", "ada")
	join(t, core, observer, room.ID, "", "bob")
	drain(clicker)
	drain(observer)

	search := room.AppendSearch(&domain.Participant{ID: participant.ID, Nickname: "ada"}, "golang",
		[]domain.Result{{URL: "https://go.dev"}})

	core.dispatch(mustFrame(t, clicker, EventResultClick, ResultClickPayload{
		SearchID: search.ID,
		URL:      "https://go.dev",
		Title:    "Go",
	}))

	for _, cl := range []*Client{clicker, observer} {
		types := eventTypes(drain(cl))
		if len(types) != 2 || types[0] != EventSharedNavigation || types[1] != EventResultClicked {
			t.Fatalf("expected shared_navigation then result_clicked, got %v", types)
		}
	}

	state := room.BrowsingState()
	if state.CurrentURL == nil || *state.CurrentURL != "https://go.dev" {
		t.Fatalf("click should navigate the room: %+v", state)
	}
}

func TestDispatch_ResultClickWithBrowsingDisabled(t *testing.T) {
	core, room := newTestCore(t)
	clicker := newTestClient()
	observer := newTestClient()

	participant := join(t, core, clicker, room.ID, "", "ada")
	join(t, core, observer, room.ID, "", "bob")
	drain(clicker)
	drain(observer)

	room.ToggleBrowsing(false)
	search := room.AppendSearch(&domain.Participant{ID: participant.ID, Nickname: "ada"}, "golang",
		[]domain.Result{{URL: "https://go.dev"}})

	core.dispatch(mustFrame(t, clicker, EventResultClick, ResultClickPayload{
		SearchID: search.ID,
		URL:      "https://go.dev",
	}))

	clickerTypes := eventTypes(drain(clicker))
	if len(clickerTypes) != 1 || clickerTypes[0] != EventResultClicked {
		t.Fatalf("clicker should only see the count, got %v", clickerTypes)
	}

	observerEnvs := drain(observer)
	observerTypes := eventTypes(observerEnvs)
	if len(observerTypes) != 2 || observerTypes[0] != EventUserClickedLink || observerTypes[1] != EventResultClicked {
		t.Fatalf("observer should see click activity then count, got %v", observerTypes)
	}

	clicked := observerEnvs[1].Data.(ResultClickedPayload)
	if clicked.ClickCount != 1 || clicked.URL != "https://go.dev" {
		t.Fatalf("unexpected click count payload: %+v", clicked)
	}
}

func TestDispatch_ResultClickUnknownSearchIsSilent(t *testing.T) {
	core, room := newTestCore(t)
	clicker := newTestClient()

	join(t, core, clicker, room.ID, "", "ada")

	core.dispatch(mustFrame(t, clicker, EventResultClick, ResultClickPayload{
		SearchID: "missing",
		URL:      "https://go.dev",
	}))

	if envs := drain(clicker); len(envs) != 0 {
		t.Fatalf("unknown search click must be silent, got %v", eventTypes(envs))
	}
}

func TestDispatch_ToggleBrowsingBroadcasts(t *testing.T) {
	core, room := newTestCore(t)
	toggler := newTestClient()
	observer := newTestClient()

	join(t, core, toggler, room.ID, "", "ada")
	join(t, core, observer, room.ID, "", "bob")
	drain(toggler)
	drain(observer)

	core.dispatch(mustFrame(t, toggler, EventToggleSharedBrowsing, ToggleBrowsingPayload{Enabled: false}))

	for _, cl := range []*Client{toggler, observer} {
		envs := drain(cl)
		if len(envs) != 1 || envs[0].Type != EventSharedBrowsingToggled {
			t.Fatalf("expected shared_browsing_toggled, got %v", eventTypes(envs))
		}
		toggled := envs[0].Data.(BrowsingToggledPayload)
		if toggled.Enabled || toggled.ToggledBy != "ada" {
			t.Fatalf("unexpected toggle payload: %+v", toggled)
		}
	}
}

func TestDispatch_ScrollGoesToOthersWhileEnabled(t *testing.T) {
	core, room := newTestCore(t)
	scroller := newTestClient()
	observer := newTestClient()

	join(t, core, scroller, room.ID, "", "ada")
	join(t, core, observer, room.ID, "", "bob")
	drain(scroller)
	drain(observer)

	core.dispatch(mustFrame(t, scroller, EventSharedScroll, SharedScrollPayload{X: 10, Y: 250}))

	if envs := drain(scroller); len(envs) != 0 {
		t.Fatalf("scroller must not receive their own scroll, got %v", eventTypes(envs))
	}

	envs := drain(observer)
	if len(envs) != 1 || envs[0].Type != EventSharedScrollUpdate {
		t.Fatalf("expected shared_scroll_update, got %v", eventTypes(envs))
	}
	scroll := envs[0].Data.(ScrollUpdatePayload)
	if scroll.X != 10 || scroll.Y != 250 || scroll.ScrolledBy != "ada" {
		t.Fatalf("unexpected scroll payload: %+v", scroll)
	}

	room.ToggleBrowsing(false)
	drain(scroller)
	drain(observer)

	core.dispatch(mustFrame(t, scroller, EventSharedScroll, SharedScrollPayload{X: 1, Y: 1}))
	if envs := drain(observer); len(envs) != 0 {
		t.Fatalf("scroll while disabled must be dropped, got %v", eventTypes(envs))
	}
}

func TestDispatch_NavigateSharedMarksManual(t *testing.T) {
	core, room := newTestCore(t)
	nav := newTestClient()

	join(t, core, nav, room.ID, "", "ada")

	core.dispatch(mustFrame(t, nav, EventNavigateShared, NavigateSharedPayload{
		URL: "https://example.com",
	}))

	envs := drain(nav)
	if len(envs) != 1 || envs[0].Type != EventSharedNavigation {
		t.Fatalf("expected shared_navigation, got %v", eventTypes(envs))
	}
	payload := envs[0].Data.(SharedNavigationPayload)
	if !payload.IsManualNavigation || payload.Title != "Loading..." || payload.NavigatedBy != "ada" {
		t.Fatalf("unexpected navigation payload: %+v", payload)
	}
}

func TestDispatch_IframeStateRelayedToOthers(t *testing.T) {
	core, room := newTestCore(t)
	sender := newTestClient()
	observer := newTestClient()

	join(t, core, sender, room.ID, "", "ada")
	join(t, core, observer, room.ID, "", "bob")
	drain(sender)
	drain(observer)

	core.dispatch(mustFrame(t, sender, EventIframeStateUpdate, map[string]any{
		"title": "Go docs",
		"depth": 3,
	}))

	if envs := drain(sender); len(envs) != 0 {
		t.Fatalf("sender must not get their own iframe state, got %v", eventTypes(envs))
	}

	envs := drain(observer)
	if len(envs) != 1 || envs[0].Type != EventIframeStateReceived {
		t.Fatalf("expected iframe_state_received, got %v", eventTypes(envs))
	}
	state := envs[0].Data.(map[string]any)
	if state["title"] != "Go docs" || state["updatedBy"] != "ada" {
		t.Fatalf("unexpected iframe payload: %+v", state)
	}

	if got := room.BrowsingState(); got.CurrentTitle == nil || *got.CurrentTitle != "Go docs" {
		t.Fatalf("iframe title should update shared state: %+v", got)
	}

	room.ToggleBrowsing(false)
	core.dispatch(mustFrame(t, sender, EventIframeStateUpdate, map[string]any{"title": "x"}))
	if envs := drain(observer); len(envs) != 0 {
		t.Fatalf("iframe state while disabled must be dropped, got %v", eventTypes(envs))
	}
}

func TestDispatch_MalformedPayloadDoesNotKillLoop(t *testing.T) {
	core, room := newTestCore(t)
	cl := newTestClient()

	join(t, core, cl, room.ID, "", "ada")

	core.dispatch(&frame{client: cl, event: EventVoteResult, data: json.RawMessage(`{"searchId":42}`)})
	if envs := drain(cl); len(envs) != 0 {
		t.Fatalf("malformed vote must fail silently, got %v", eventTypes(envs))
	}

	// The loop is still healthy afterwards.
	core.dispatch(mustFrame(t, cl, EventSendMessage, SendMessagePayload{Message: "still alive"}))
	envs := drain(cl)
	if len(envs) != 1 || envs[0].Type != EventMessageReceived {
		t.Fatalf("expected message_received, got %v", eventTypes(envs))
	}
}

func TestDispatch_ChatIsMaskedAndBroadcast(t *testing.T) {
	core, room := newTestCore(t)
	core.filter = profanity.NewFilter()
	sender := newTestClient()
	observer := newTestClient()

	join(t, core, sender, room.ID, "", "ada")
	join(t, core, observer, room.ID, "", "bob")
	drain(sender)
	drain(observer)

	core.dispatch(mustFrame(t, sender, EventSendMessage, SendMessagePayload{Message: "well shit happens"}))

	for _, cl := range []*Client{sender, observer} {
		envs := drain(cl)
		if len(envs) != 1 || envs[0].Type != EventMessageReceived {
			t.Fatalf("expected message_received, got %v", eventTypes(envs))
		}
		msg := envs[0].Data.(domain.ChatMessage)
		if msg.Message != "well **** happens" {
			t.Fatalf("message should be masked, got %q", msg.Message)
		}
		if msg.UserNickname != "ada" || msg.ID == "" {
			t.Fatalf("unexpected chat payload: %+v", msg)
		}
	}
}
