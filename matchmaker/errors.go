package matchmaker

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNotParticipant  = errors.New("not a participant in this session")
	ErrEmptyName       = errors.New("display name is required")
)
