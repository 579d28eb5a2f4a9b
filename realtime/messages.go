package realtime

import "time"

// UpdateKind names the server-to-client update message types.
type UpdateKind string

const (
	KindBracketUpdate UpdateKind = "bracket:update"
	KindMatchUpdate   UpdateKind = "match:update"
	KindStageUpdate   UpdateKind = "stage:update"
)

// Broadcaster is the contract the CRUD services call after a successful
// persisted mutation. Implementations must never touch persisted state and
// must never block on a slow subscriber.
type Broadcaster interface {
	Emit(eventID int, kind UpdateKind, payload interface{})
}

// UpdateEvent is the outbound envelope. The payload is treated as an opaque
// serializable value and forwarded verbatim to subscribers.
type UpdateEvent struct {
	Type      UpdateKind  `json:"type"`
	EventID   int         `json:"event_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// MatchUpdate is the payload shape for match:update messages: the mutated
// match id plus the changed fields, merged client-side by match id.
type MatchUpdate struct {
	MatchID int         `json:"match_id"`
	Updates interface{} `json:"updates"`
}

// StageUpdate is the payload shape for stage:update messages.
type StageUpdate struct {
	StageID int         `json:"stage_id"`
	Updates interface{} `json:"updates"`
}

// Client-to-server message types. Joining is always client-initiated.
const (
	msgJoinEvent   = "join-event"
	msgLeaveEvent  = "leave-event"
	msgJoinedEvent = "joined-event"
)

type clientMessage struct {
	Type    string `json:"type"`
	EventID int    `json:"event_id"`
}

// joinedEvent acknowledges a successful join to the joining client only.
type joinedEvent struct {
	Type    string `json:"type"`
	EventID int    `json:"event_id"`
	Room    string `json:"room"`
}
