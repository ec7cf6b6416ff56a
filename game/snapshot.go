package game

import (
	"encoding/json"
	"fmt"
)

// Winner is the outcome of a session. On the wire it is null while the game
// is running, the winning seat (0 or 1), or "draw".
type Winner int

const (
	NoWinner Winner = iota - 1
	FirstPlayer
	SecondPlayer
	Draw
)

func (w Winner) MarshalJSON() ([]byte, error) {
	switch w {
	case NoWinner:
		return []byte("null"), nil
	case FirstPlayer, SecondPlayer:
		return json.Marshal(int(w))
	case Draw:
		return []byte(`"draw"`), nil
	}
	return nil, fmt.Errorf("unknown winner %d", int(w))
}

func (w *Winner) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "null":
		*w = NoWinner
		return nil
	case `"draw"`:
		*w = Draw
		return nil
	}

	var seat int
	if err := json.Unmarshal(data, &seat); err != nil {
		return fmt.Errorf("decoding winner: %w", err)
	}
	if seat != 0 && seat != 1 {
		return fmt.Errorf("unknown winner %d", seat)
	}
	*w = Winner(seat)
	return nil
}

type PlayerSummary struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// Snapshot is the read-only view of a session sent to clients.
type Snapshot struct {
	Board         [BoardSize]string `json:"board"`
	CurrentPlayer int               `json:"currentPlayer"`
	GameStatus    Status            `json:"gameStatus"`
	Winner        Winner            `json:"winner"`
	Players       []PlayerSummary   `json:"players"`
}
