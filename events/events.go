package events

import (
	"encoding/json"

	"github.com/cameroncuttingedge/tictactoe-arena/game"
)

// Inbound event names.
const (
	SearchPlayer = "search-player"
	MakeMove     = "make-move"
	RestartGame  = "restart-game"
)

// Outbound event names.
const (
	Waiting              = "waiting"
	MatchFound           = "match-found"
	StateUpdate          = "state-update"
	InvalidMove          = "invalid-move"
	SessionError         = "session-error"
	OpponentDisconnected = "opponent-disconnected"
)

// Envelope is one websocket text frame in either direction.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Message is an outbound event before encoding.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type Move struct {
	SessionID string `json:"sessionId"`
	Position  *int   `json:"position"`
}

type MatchFoundData struct {
	SessionID    string        `json:"sessionId"`
	PlayerIndex  int           `json:"playerIndex"`
	OpponentName string        `json:"opponentName"`
	Symbol       string        `json:"symbol"`
	Snapshot     game.Snapshot `json:"snapshot"`
}

func NewWaiting() Message {
	return Message{Event: Waiting}
}

func NewMatchFound(data MatchFoundData) Message {
	return Message{Event: MatchFound, Data: data}
}

func NewStateUpdate(snapshot game.Snapshot) Message {
	return Message{Event: StateUpdate, Data: snapshot}
}

func NewInvalidMove(reason string) Message {
	return Message{Event: InvalidMove, Data: reason}
}

func NewSessionError(reason string) Message {
	return Message{Event: SessionError, Data: reason}
}

func NewOpponentDisconnected() Message {
	return Message{Event: OpponentDisconnected}
}
