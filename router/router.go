package router

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cameroncuttingedge/tictactoe-arena/events"
	"github.com/cameroncuttingedge/tictactoe-arena/matchmaker"
	"github.com/rs/zerolog/log"
)

var (
	ErrMalformed    = errors.New("malformed message")
	ErrUnknownEvent = errors.New("unknown event")
)

// Matcher is the part of the matchmaker driven by client events.
type Matcher interface {
	RequestMatch(connID, name string) error
	RouteMove(connID, sessionID string, position int) error
	RouteRestart(connID, sessionID string) error
	HandleDisconnect(connID string)
}

// Router decodes inbound frames and dispatches them by event name.
type Router struct {
	matcher  Matcher
	notifier matchmaker.Notifier
}

func New(matcher Matcher, notifier matchmaker.Notifier) *Router {
	return &Router{matcher: matcher, notifier: notifier}
}

// Handle processes one frame from connID. Frames that cannot be decoded are
// answered with a session-error; the returned error is for logging only.
func (r *Router) Handle(connID string, data []byte) error {
	err := r.dispatch(connID, data)
	if errors.Is(err, ErrMalformed) || errors.Is(err, ErrUnknownEvent) {
		log.Warn().Err(err).Str("connID", connID).Msg("Dropping inbound message")
		if sendErr := r.notifier.Send(connID, events.NewSessionError(ErrMalformed.Error())); sendErr != nil {
			log.Error().Err(sendErr).Str("connID", connID).Msg("Failed to deliver event")
		}
	}
	return err
}

func (r *Router) dispatch(connID string, data []byte) error {
	var env events.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch env.Event {
	case events.SearchPlayer:
		var name string
		if err := decode(env.Data, &name); err != nil {
			return err
		}
		return r.matcher.RequestMatch(connID, name)

	case events.MakeMove:
		var move events.Move
		if err := decode(env.Data, &move); err != nil {
			return err
		}
		if move.Position == nil {
			return fmt.Errorf("%w: position is required", ErrMalformed)
		}
		return r.matcher.RouteMove(connID, move.SessionID, *move.Position)

	case events.RestartGame:
		var sessionID string
		if err := decode(env.Data, &sessionID); err != nil {
			return err
		}
		return r.matcher.RouteRestart(connID, sessionID)
	}

	return fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: missing data", ErrMalformed)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// Disconnect forwards the end of a connection to the matchmaker.
func (r *Router) Disconnect(connID string) {
	r.matcher.HandleDisconnect(connID)
}
