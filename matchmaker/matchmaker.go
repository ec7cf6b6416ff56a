package matchmaker

import (
	"strings"
	"sync"

	"github.com/cameroncuttingedge/tictactoe-arena/events"
	"github.com/cameroncuttingedge/tictactoe-arena/game"
	"github.com/cameroncuttingedge/tictactoe-arena/utils"
	"github.com/rs/zerolog/log"
)

// Notifier delivers an outbound message to one connection. Implementations
// must not block; a failed delivery is reported and dropped.
type Notifier interface {
	Send(connID string, msg events.Message) error
}

// Matchmaker owns the waiting queue and the session registry. Every exported
// method runs under one lock, so handlers never interleave.
type Matchmaker struct {
	mu       sync.Mutex
	queue    []game.Player
	sessions map[string]*game.Session
	assigned map[string]string // connID -> sessionID
	notifier Notifier
}

func New(notifier Notifier) *Matchmaker {
	return &Matchmaker{
		sessions: make(map[string]*game.Session),
		assigned: make(map[string]string),
		notifier: notifier,
	}
}

// RequestMatch pairs connID with the longest waiting player, or queues it
// when nobody is waiting. A player still seated in a session leaves it first.
func (m *Matchmaker) RequestMatch(connID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		m.send(connID, events.NewSessionError(ErrEmptyName.Error()))
		return ErrEmptyName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if sessionID, ok := m.assigned[connID]; ok {
		log.Info().Str("sessionID", sessionID).Str("connID", connID).Msg("Player left session to search again")
		m.endSession(sessionID, connID)
	}

	if i := m.queueIndex(connID); i >= 0 {
		m.queue[i].Name = name
		m.send(connID, events.NewWaiting())
		return nil
	}

	player := game.Player{ID: connID, Name: name}

	if len(m.queue) == 0 {
		m.queue = append(m.queue, player)
		m.send(connID, events.NewWaiting())
		log.Info().Str("connID", connID).Str("name", name).Int("waiting", len(m.queue)).Msg("Player waiting for opponent")
		return nil
	}

	opponent := m.queue[0]
	m.queue = m.queue[1:]

	session := game.NewSession(utils.GenerateUUIDString(), opponent, player)
	m.sessions[session.ID] = session
	for _, p := range session.Players {
		m.assigned[p.ID] = session.ID
	}

	snapshot := session.Snapshot()
	for i, p := range session.Players {
		m.send(p.ID, events.NewMatchFound(events.MatchFoundData{
			SessionID:    session.ID,
			PlayerIndex:  i,
			OpponentName: session.Opponent(i).Name,
			Symbol:       string(p.Symbol),
			Snapshot:     snapshot,
		}))
	}

	log.Info().
		Str("sessionID", session.ID).
		Str("playerX", session.Players[0].Name).
		Str("playerO", session.Players[1].Name).
		Msg("Session created")
	return nil
}

// RouteMove applies a move from connID to the named session and broadcasts
// the new state. Failures are reported to connID only.
func (m *Matchmaker) RouteMove(connID, sessionID string, position int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, index, err := m.seat(connID, sessionID)
	if err != nil {
		m.send(connID, events.NewSessionError(err.Error()))
		return err
	}

	if err := session.MakeMove(index, position); err != nil {
		log.Debug().Err(err).Str("sessionID", sessionID).Str("connID", connID).Int("position", position).Msg("Move rejected")
		m.send(connID, events.NewInvalidMove(err.Error()))
		return err
	}

	m.broadcast(session)

	if session.Finished() {
		log.Info().
			Str("sessionID", sessionID).
			Int("winner", int(session.Winner)).
			Str("board", session.String()).
			Msg("Session finished")
	}
	return nil
}

// RouteRestart resets the named session for either participant. Unknown
// sessions and outsiders are ignored without a reply.
func (m *Matchmaker) RouteRestart(connID, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, _, err := m.seat(connID, sessionID)
	if err != nil {
		log.Debug().Err(err).Str("sessionID", sessionID).Str("connID", connID).Msg("Restart ignored")
		return err
	}

	session.Restart()
	m.broadcast(session)

	log.Info().Str("sessionID", sessionID).Str("connID", connID).Msg("Session restarted")
	return nil
}

// HandleDisconnect drops connID from the queue and tears down its session,
// telling the opponent. It is a no-op for unknown connections.
func (m *Matchmaker) HandleDisconnect(connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.queueIndex(connID); i >= 0 {
		m.queue = append(m.queue[:i], m.queue[i+1:]...)
		log.Info().Str("connID", connID).Int("waiting", len(m.queue)).Msg("Removed player from queue")
	}

	if sessionID, ok := m.assigned[connID]; ok {
		m.endSession(sessionID, connID)
	}
}

// Snapshot returns the current state of a registered session.
func (m *Matchmaker) Snapshot(sessionID string) (game.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return game.Snapshot{}, ErrSessionNotFound
	}
	return session.Snapshot(), nil
}

type Stats struct {
	Waiting  int `json:"waiting"`
	Sessions int `json:"sessions"`
}

func (m *Matchmaker) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Stats{Waiting: len(m.queue), Sessions: len(m.sessions)}
}

func (m *Matchmaker) seat(connID, sessionID string) (*game.Session, int, error) {
	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, -1, ErrSessionNotFound
	}
	index := session.Index(connID)
	if index < 0 {
		return nil, -1, ErrNotParticipant
	}
	return session, index, nil
}

// endSession removes the session leaver sat in and notifies the other player.
func (m *Matchmaker) endSession(sessionID, leaver string) {
	session, ok := m.sessions[sessionID]
	if !ok {
		delete(m.assigned, leaver)
		return
	}

	delete(m.sessions, sessionID)
	for _, p := range session.Players {
		if m.assigned[p.ID] == sessionID {
			delete(m.assigned, p.ID)
		}
	}

	if index := session.Index(leaver); index >= 0 {
		m.send(session.Opponent(index).ID, events.NewOpponentDisconnected())
	}

	log.Info().Str("sessionID", sessionID).Str("connID", leaver).Msg("Session removed")
}

func (m *Matchmaker) queueIndex(connID string) int {
	for i, p := range m.queue {
		if p.ID == connID {
			return i
		}
	}
	return -1
}

func (m *Matchmaker) broadcast(session *game.Session) {
	msg := events.NewStateUpdate(session.Snapshot())
	for _, p := range session.Players {
		m.send(p.ID, msg)
	}
}

func (m *Matchmaker) send(connID string, msg events.Message) {
	if err := m.notifier.Send(connID, msg); err != nil {
		log.Error().Err(err).Str("connID", connID).Str("event", msg.Event).Msg("Failed to deliver event")
	}
}
