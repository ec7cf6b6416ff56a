package game

import (
	"errors"
	"fmt"
)

// ErrInvalidMove is wrapped by every move rejection.
var ErrInvalidMove = errors.New("invalid move")

var (
	ErrGameFinished = fmt.Errorf("%w: game is already finished", ErrInvalidMove)
	ErrNotYourTurn  = fmt.Errorf("%w: it's not your turn", ErrInvalidMove)
	ErrOutOfRange   = fmt.Errorf("%w: position must be between 0 and 8", ErrInvalidMove)
	ErrCellOccupied = fmt.Errorf("%w: cell is already taken", ErrInvalidMove)
)
