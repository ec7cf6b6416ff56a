package game

import (
	"fmt"
	"strings"
)

type Symbol string

const (
	PlayerX Symbol = "X"
	PlayerO Symbol = "O"
	None    Symbol = ""
)

type Status string

const (
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

const BoardSize = 9

// lines holds the 8 winning triples over the row-major board.
var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Player is a participant as seen by a session. It holds the connection id,
// never the live connection.
type Player struct {
	ID     string
	Name   string
	Symbol Symbol
}

type Session struct {
	ID      string
	Players [2]Player
	Board   [BoardSize]Symbol
	Turn    int
	Status  Status
	Winner  Winner
}

// NewSession pairs first and second into a fresh match. First plays X and
// moves first.
func NewSession(id string, first, second Player) *Session {
	first.Symbol = PlayerX
	second.Symbol = PlayerO

	s := &Session{
		ID:      id,
		Players: [2]Player{first, second},
	}
	s.Restart()
	return s
}

// Index reports the seat of playerID, or -1 if it is not a participant.
func (s *Session) Index(playerID string) int {
	for i, player := range s.Players {
		if player.ID == playerID {
			return i
		}
	}
	return -1
}

// Opponent returns the player sitting across from index.
func (s *Session) Opponent(index int) Player {
	return s.Players[1-index]
}

// MakeMove places the symbol of the player at index on position. A rejected
// move leaves the session untouched and reports why.
func (s *Session) MakeMove(index, position int) error {
	if s.Status != StatusPlaying {
		return ErrGameFinished
	}
	if index != s.Turn {
		return ErrNotYourTurn
	}
	if position < 0 || position >= BoardSize {
		return ErrOutOfRange
	}
	if s.Board[position] != None {
		return ErrCellOccupied
	}

	s.Board[position] = s.Players[index].Symbol

	switch {
	case s.CheckWin():
		s.Status = StatusFinished
		s.Winner = Winner(index)
	case s.CheckDraw():
		s.Status = StatusFinished
		s.Winner = Draw
	default:
		s.Turn = 1 - s.Turn
	}
	return nil
}

// AttemptMove is MakeMove reduced to success or failure.
func (s *Session) AttemptMove(index, position int) bool {
	return s.MakeMove(index, position) == nil
}

// Restart clears the board for a rematch between the same players. It is
// allowed at any point, including mid-game.
func (s *Session) Restart() {
	s.Board = [BoardSize]Symbol{}
	s.Turn = 0
	s.Status = StatusPlaying
	s.Winner = NoWinner
}

func (s *Session) CheckWin() bool {
	for _, line := range lines {
		a, b, c := s.Board[line[0]], s.Board[line[1]], s.Board[line[2]]
		if a != None && a == b && b == c {
			return true
		}
	}
	return false
}

func (s *Session) CheckDraw() bool {
	for _, cell := range s.Board {
		if cell == None {
			return false
		}
	}
	return true
}

func (s *Session) Finished() bool {
	return s.Status == StatusFinished
}

// Snapshot copies the transmittable state of the session.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		CurrentPlayer: s.Turn,
		GameStatus:    s.Status,
		Winner:        s.Winner,
		Players:       make([]PlayerSummary, len(s.Players)),
	}
	for i, cell := range s.Board {
		snap.Board[i] = string(cell)
	}
	for i, player := range s.Players {
		snap.Players[i] = PlayerSummary{Name: player.Name, Symbol: string(player.Symbol)}
	}
	return snap
}

// String renders the board and status, for logs.
func (s *Session) String() string {
	var sb strings.Builder

	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			cell := s.Board[row*3+col]
			if cell == None {
				sb.WriteString("- ")
			} else {
				sb.WriteString(fmt.Sprintf("%s ", cell))
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Player X: %s\n", s.Players[0].Name))
	sb.WriteString(fmt.Sprintf("Player O: %s\n", s.Players[1].Name))
	switch {
	case !s.Finished():
		sb.WriteString(fmt.Sprintf("Turn: %s\n", s.Players[s.Turn].Name))
	case s.Winner == Draw:
		sb.WriteString("Winner: None (Draw)\n")
	default:
		sb.WriteString(fmt.Sprintf("Winner: %s\n", s.Players[s.Winner].Name))
	}

	return sb.String()
}
