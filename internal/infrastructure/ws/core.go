package ws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Phantasm0009/search-party/internal/domain"
	"github.com/Phantasm0009/search-party/internal/infrastructure/events"
	"github.com/Phantasm0009/search-party/internal/infrastructure/logging"
	"github.com/Phantasm0009/search-party/internal/infrastructure/metrics"
	"github.com/Phantasm0009/search-party/internal/infrastructure/profanity"
	"github.com/Phantasm0009/search-party/internal/infrastructure/repository"
)

// session binds a live connection to a room and the participant identity it
// joined as.
type session struct {
	room        *domain.Room
	participant *domain.Participant
}

// Core is the event router. A single Run loop owns the session table and the
// room groups, so every inbound event is applied in arrival order without
// per-handler locking.
type Core struct {
	roomMgr  *RoomManager
	sessions map[*Client]*session

	register   chan *Client
	unregister chan *Client
	inbound    chan *frame

	rooms     *repository.Rooms
	filter    *profanity.Filter
	publisher *events.RoomPublisher
	logger    logging.Logger
	metrics   *metrics.Metrics
}

func NewCore(
	rooms *repository.Rooms,
	filter *profanity.Filter,
	publisher *events.RoomPublisher,
	logger logging.Logger,
	m *metrics.Metrics,
) *Core {
	return &Core{
		roomMgr:    NewRoomManager(m),
		sessions:   make(map[*Client]*session),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan *frame, 256),
		rooms:      rooms,
		filter:     filter,
		publisher:  publisher,
		logger:     logger,
		metrics:    m,
	}
}

func (c *Core) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case <-c.register:
			c.metrics.ActiveConnections.Inc()

		case cl := <-c.unregister:
			c.metrics.ActiveConnections.Dec()
			c.handleDisconnect(cl)
			cl.CloseSend()

		case f := <-c.inbound:
			c.dispatch(f)
		}
	}
}

func (c *Core) Register() chan<- *Client {
	return c.register
}

func (c *Core) Unregister() chan<- *Client {
	return c.unregister
}

func (c *Core) Inbound() chan<- *frame {
	return c.inbound
}

// dispatch routes one inbound event. Handler panics are contained so a bad
// payload never takes the loop down; join and search report failure to the
// sender, everything else fails silently like an unknown event.
func (c *Core) dispatch(f *frame) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error(logging.Events, logging.Dispatch, "event handler panicked", map[logging.ExtraKey]any{
				logging.EventName:    f.event,
				logging.ErrorMessage: fmt.Sprint(r),
			})
			switch f.event {
			case EventJoinRoom:
				f.client.TrySend(NewError("Failed to join room"))
			case EventNewSearch:
				f.client.TrySend(NewError("Failed to process search"))
			}
		}
	}()

	c.metrics.InboundEvents.WithLabelValues(f.event).Inc()

	if f.event == EventJoinRoom {
		c.handleJoin(f)
		return
	}

	sess, ok := c.sessions[f.client]
	if !ok {
		// Events before a join have no room context and are dropped.
		return
	}

	switch f.event {
	case EventNewSearch:
		c.handleSearch(sess, f)
	case EventResultClick:
		c.handleResultClick(sess, f)
	case EventVoteResult:
		c.handleVote(sess, f)
	case EventSendMessage:
		c.handleMessage(sess, f)
	case EventToggleSharedBrowsing:
		c.handleToggleBrowsing(sess, f)
	case EventNavigateShared:
		c.handleNavigateShared(sess, f)
	case EventSharedScroll:
		c.handleSharedScroll(sess, f)
	case EventIframeStateUpdate:
		c.handleIframeState(sess, f)
	default:
		c.logger.Debug(logging.Events, logging.Dispatch, "unknown event dropped", map[logging.ExtraKey]any{
			logging.EventName: f.event,
		})
	}
}

// handleJoin resolves a join request. A descriptor with a known participant id
// supersedes that participant's previous connection: the newcomer gets the
// full snapshot and nobody else is notified. Fresh identities are announced to
// the rest of the room.
func (c *Core) handleJoin(f *frame) {
	var payload JoinRoomPayload
	if err := decodePayload(f.data, &payload); err != nil {
		f.client.TrySend(NewError("Failed to join room"))
		return
	}

	room, err := c.rooms.GetByID(context.Background(), payload.RoomID)
	if err != nil {
		f.client.TrySend(NewError("Room not found"))
		return
	}

	if payload.User.ID == "" {
		payload.User.ID = f.client.ParticipantHint
	}

	// A connection can only be in one room; a re-join moves it.
	if prev, ok := c.sessions[f.client]; ok {
		c.roomMgr.RemoveClient(prev.room.ID, f.client)
		delete(c.sessions, f.client)
	}

	participant, reconnected := room.Join(payload.User, f.client.ID)
	c.sessions[f.client] = &session{room: room, participant: participant}
	c.roomMgr.AddClient(room.ID, f.client)

	f.client.TrySend(NewRoomJoined(room, *participant))

	if !reconnected {
		c.roomMgr.BroadcastExcept(room.ID, f.client, NewUserJoined(*participant))
	}

	if err := c.publisher.PublishMemberJoined(context.Background(), room.Summary(), participant.ID); err != nil {
		c.logger.Warn(logging.Broker, logging.Join, "member joined publish failed", map[logging.ExtraKey]any{
			logging.RoomID:       room.ID,
			logging.ErrorMessage: err.Error(),
		})
	}

	c.logger.Info(logging.Events, logging.Join, "participant joined room", map[logging.ExtraKey]any{
		logging.RoomID: room.ID,
		logging.UserID: participant.ID,
	})
}

// handleDisconnect tears a connection down. When the participant has since
// reconnected on a newer connection the membership stays; only the stale
// session is dropped.
func (c *Core) handleDisconnect(cl *Client) {
	sess, ok := c.sessions[cl]
	if !ok {
		return
	}
	delete(c.sessions, cl)
	c.roomMgr.RemoveClient(sess.room.ID, cl)

	if sess.participant.ConnID != cl.ID {
		return
	}

	if left, removed := sess.room.RemoveParticipant(sess.participant.ID); removed {
		c.roomMgr.Broadcast(sess.room.ID, NewUserLeft(*left))

		if err := c.publisher.PublishMemberLeft(context.Background(), sess.room.Summary(), left.ID); err != nil {
			c.logger.Warn(logging.Broker, logging.Dispatch, "member left publish failed", map[logging.ExtraKey]any{
				logging.RoomID:       sess.room.ID,
				logging.ErrorMessage: err.Error(),
			})
		}
	}
}

func (c *Core) handleSearch(sess *session, f *frame) {
	var payload NewSearchPayload
	if err := decodePayload(f.data, &payload); err != nil {
		f.client.TrySend(NewError("Failed to process search"))
		return
	}

	search := sess.room.AppendSearch(sess.participant, payload.Query, payload.Results)

	c.roomMgr.Broadcast(sess.room.ID, NewSearchAdded(search))
	c.roomMgr.Broadcast(sess.room.ID, NewTopResultsUpdated(sess.room.TopResults(0)))
}

// handleResultClick serves two purposes. While shared browsing is enabled the
// click navigates the whole room; while disabled the rest of the room only
// learns about the click. Either way the per-url click count goes out.
func (c *Core) handleResultClick(sess *session, f *frame) {
	var payload ResultClickPayload
	if err := decodePayload(f.data, &payload); err != nil {
		return
	}

	count, ok := sess.room.RecordClick(payload.SearchID, sess.participant.ID, payload.URL)
	if !ok {
		return
	}

	if sess.room.NavigateShared(payload.URL, payload.Title, sess.participant) {
		c.roomMgr.Broadcast(sess.room.ID, NewSharedNavigation(
			payload.URL, payload.Title, sess.participant.Nickname, payload.SearchID, false,
		))
	} else {
		c.roomMgr.BroadcastExcept(sess.room.ID, f.client, NewUserClickedLink(
			*sess.participant, payload.URL, payload.SearchID,
		))
	}

	c.roomMgr.Broadcast(sess.room.ID, NewResultClicked(payload.SearchID, payload.URL, count))
}

// handleVote applies a vote and re-broadcasts the tally even when the net
// state did not change, so every client converges on the same counts.
func (c *Core) handleVote(sess *session, f *frame) {
	var payload VoteResultPayload
	if err := decodePayload(f.data, &payload); err != nil {
		return
	}

	polarity := domain.VoteNone
	switch payload.Type {
	case "up":
		polarity = domain.VoteUp
	case "down":
		polarity = domain.VoteDown
	}

	tally := sess.room.CastVote(payload.SearchID, payload.URL, sess.participant.ID, polarity)

	c.roomMgr.Broadcast(sess.room.ID, NewVoteUpdated(tally, sess.participant.ID, payload.Type))
	c.roomMgr.Broadcast(sess.room.ID, NewTopResultsUpdated(sess.room.TopResults(0)))
}

func (c *Core) handleMessage(sess *session, f *frame) {
	var payload SendMessagePayload
	if err := decodePayload(f.data, &payload); err != nil {
		return
	}

	text := payload.Message
	if c.filter != nil {
		text = c.filter.Mask(text)
	}

	msg := sess.room.AppendMessage(sess.participant, text)
	c.roomMgr.Broadcast(sess.room.ID, NewMessageReceived(msg))
}

func (c *Core) handleToggleBrowsing(sess *session, f *frame) {
	var payload ToggleBrowsingPayload
	if err := decodePayload(f.data, &payload); err != nil {
		return
	}

	sess.room.ToggleBrowsing(payload.Enabled)
	c.roomMgr.Broadcast(sess.room.ID, NewBrowsingToggled(payload.Enabled, sess.participant.Nickname))
}

func (c *Core) handleNavigateShared(sess *session, f *frame) {
	var payload NavigateSharedPayload
	if err := decodePayload(f.data, &payload); err != nil {
		return
	}

	if !sess.room.NavigateShared(payload.URL, payload.Title, sess.participant) {
		return
	}

	c.roomMgr.Broadcast(sess.room.ID, NewSharedNavigation(
		payload.URL, payload.Title, sess.participant.Nickname, "", true,
	))
}

func (c *Core) handleSharedScroll(sess *session, f *frame) {
	var payload SharedScrollPayload
	if err := decodePayload(f.data, &payload); err != nil {
		return
	}

	pos := domain.ScrollPosition{X: payload.X, Y: payload.Y}
	if !sess.room.ScrollShared(sess.participant.ID, pos) {
		return
	}

	c.roomMgr.BroadcastExcept(sess.room.ID, f.client, NewScrollUpdate(pos, sess.participant.Nickname))
}

// handleIframeState relays arbitrary embedded-page state to the rest of the
// room, keeping only the title server-side.
func (c *Core) handleIframeState(sess *session, f *frame) {
	if !sess.room.BrowsingEnabled() {
		return
	}

	state := make(map[string]any)
	if len(f.data) > 0 {
		if err := json.Unmarshal(f.data, &state); err != nil {
			return
		}
	}

	if title, ok := state["title"].(string); ok {
		sess.room.UpdateSharedTitle(title)
	}

	c.roomMgr.BroadcastExcept(sess.room.ID, f.client, NewIframeStateReceived(state, sess.participant.Nickname))
}
