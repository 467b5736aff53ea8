package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const maxFrameSize = 1 << 20 // 1MB

// Client is one live websocket connection. Room membership and participant
// identity are bound later, by a join_room event, and live in the core's
// session table rather than on the client.
type Client struct {
	conn    *connWrapper
	Message chan *Envelope
	ID      string

	// ParticipantHint carries the participant id recovered from the
	// participant cookie at upgrade time, used when the join payload
	// omits one.
	ParticipantHint string

	mu     sync.Mutex
	closed bool
}

func NewClient(conn *websocket.Conn, participantHint string) *Client {
	conn.SetReadLimit(maxFrameSize)

	return &Client{
		conn:            newConnWrapper(conn),
		Message:         make(chan *Envelope, 64), // buffered to avoid dead-locks on slow clients
		ID:              uuid.NewString(),
		ParticipantHint: participantHint,
	}
}

func (c *Client) ReadMessage(core *Core) {
	defer func() {
		core.Unregister() <- c
		_ = c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ws read error (client %s): %v", c.ID, err)
			}
			break
		}

		var f inboundFrame
		if err := json.Unmarshal(raw, &f); err != nil || f.Type == "" {
			c.TrySend(NewError("malformed frame"))
			continue
		}

		core.Inbound() <- &frame{
			client: c,
			event:  f.Type,
			data:   f.Data,
		}
	}
}

func (c *Client) WriteMessage() {
	defer func() {
		_ = c.conn.Close()
	}()

	for msg := range c.Message {
		if err := c.conn.WriteJSON(msg); err != nil {
			log.Printf("ws write error (client %s): %v", c.ID, err)
			break
		}
	}
}

// TrySend queues an envelope without blocking the caller. A full buffer means
// the client is too slow to keep up and the frame is dropped.
func (c *Client) TrySend(msg *Envelope) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.Message <- msg:
		return true
	default:
		return false
	}
}

// CloseSend ends the write pump. Safe to call more than once; sends after
// close report false instead of panicking.
func (c *Client) CloseSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.Message)
	}
}
