package contracts

// AmqpMessage is the message structure for AMQP.
type AmqpMessage struct {
	RoomID string `json:"roomId"`
	Data   []byte `json:"data"`
}

// Routing keys - room lifecycle events published for downstream consumers
const (
	EventRoomCreated  = "room.created"
	EventMemberJoined = "room.joined"
	EventMemberLeft   = "room.left"
)
