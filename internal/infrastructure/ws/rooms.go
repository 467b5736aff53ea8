package ws

import (
	"github.com/Phantasm0009/search-party/internal/infrastructure/metrics"
)

// RoomManager tracks which connections belong to which room. It is only
// touched from the core's dispatch loop, so it carries no lock.
type RoomManager struct {
	groups  map[string]map[*Client]struct{}
	metrics *metrics.Metrics
}

func NewRoomManager(m *metrics.Metrics) *RoomManager {
	return &RoomManager{
		groups:  make(map[string]map[*Client]struct{}),
		metrics: m,
	}
}

func (rm *RoomManager) AddClient(roomID string, cl *Client) {
	group, ok := rm.groups[roomID]
	if !ok {
		group = make(map[*Client]struct{})
		rm.groups[roomID] = group
	}
	group[cl] = struct{}{}
}

func (rm *RoomManager) RemoveClient(roomID string, cl *Client) {
	group, ok := rm.groups[roomID]
	if !ok {
		return
	}
	delete(group, cl)
	if len(group) == 0 {
		delete(rm.groups, roomID)
	}
}

// Broadcast fans an envelope out to every connection in the room.
func (rm *RoomManager) Broadcast(roomID string, msg *Envelope) {
	rm.metrics.BroadcastsSent.Inc()

	for cl := range rm.groups[roomID] {
		if !cl.TrySend(msg) {
			rm.metrics.DroppedFrames.Inc()
		}
	}
}

// BroadcastExcept fans out to every connection in the room but the sender.
func (rm *RoomManager) BroadcastExcept(roomID string, sender *Client, msg *Envelope) {
	rm.metrics.BroadcastsSent.Inc()

	for cl := range rm.groups[roomID] {
		if cl == sender {
			continue
		}
		if !cl.TrySend(msg) {
			rm.metrics.DroppedFrames.Inc()
		}
	}
}
