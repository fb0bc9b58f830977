// Package events defines the lobby-domain event types published on the
// EventBus: session lifecycle, room lifecycle, and administrative actions
// that other subsystems (telemetry, CLI, Ops API) observe without coupling
// directly to the handler/lobby packages.
package events

// EventType identifies the kind of event carried on the bus.
type EventType string

const (
	EventSessionBound     EventType = "session_bound"
	EventSessionUnbound   EventType = "session_unbound"
	EventRoomCreated      EventType = "room_created"
	EventRoomRemoved      EventType = "room_removed"
	EventRoomGameStarted  EventType = "room_game_started"
	EventRoomGameEnded    EventType = "room_game_ended"
	EventUserKicked       EventType = "user_kicked"
	EventBroadcastMessage EventType = "broadcast_message"
	EventShutdown         EventType = "shutdown"
)

// Event is a single message passed through the EventBus.
type Event struct {
	Type    EventType
	Source  string
	Payload interface{}
}

// SessionPayload describes a session bind/unbind.
type SessionPayload struct {
	UserID   uint32
	UserName string
}

// RoomPayload describes a room lifecycle transition.
type RoomPayload struct {
	ChannelServerIndex uint16
	ChannelIndex       uint16
	RoomID             uint32
	RoomName           string
}

// KickPayload describes an operator-initiated disconnect.
type KickPayload struct {
	UserID   uint32
	Reason   string
	Operator string
}

// BroadcastPayload describes an operator chat broadcast.
type BroadcastPayload struct {
	ChannelServerIndex uint16
	ChannelIndex       uint16
	Text               string
	Operator           string
}
