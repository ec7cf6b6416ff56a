package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/cameroncuttingedge/tictactoe-arena/api"
	"github.com/cameroncuttingedge/tictactoe-arena/events"
	"github.com/cameroncuttingedge/tictactoe-arena/game"
	"github.com/cameroncuttingedge/tictactoe-arena/matchmaker"
	"github.com/cameroncuttingedge/tictactoe-arena/router"
	"github.com/cameroncuttingedge/tictactoe-arena/websocket"
	gorillaws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	hub := websocket.NewHub()
	mm := matchmaker.New(hub)
	srv := httptest.NewServer(api.New(mm, hub, router.New(mm, hub)).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *gorillaws.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func emit(t *testing.T, conn *gorillaws.Conn, event string, data any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(events.Message{Event: event, Data: data}))
}

func expect(t *testing.T, conn *gorillaws.Conn, event string) events.Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var env events.Envelope
	require.NoError(t, conn.ReadJSON(&env))
	require.Equal(t, event, env.Event)
	return env
}

func expectSnapshot(t *testing.T, conn *gorillaws.Conn) game.Snapshot {
	t.Helper()
	var snap game.Snapshot
	require.NoError(t, json.Unmarshal(expect(t, conn, events.StateUpdate).Data, &snap))
	return snap
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	var body map[string]string
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/health", &body))
	assert.Equal(t, "ok", body["status"])
}

func TestUnknownSession(t *testing.T) {
	srv := newTestServer(t)

	var snap game.Snapshot
	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/sessions/missing", &snap))
}

func TestFullMatch(t *testing.T) {
	srv := newTestServer(t)
	alice := dial(t, srv)
	bob := dial(t, srv)

	emit(t, alice, events.SearchPlayer, "alice")
	expect(t, alice, events.Waiting)

	emit(t, bob, events.SearchPlayer, "bob")

	var forAlice, forBob events.MatchFoundData
	require.NoError(t, json.Unmarshal(expect(t, alice, events.MatchFound).Data, &forAlice))
	require.NoError(t, json.Unmarshal(expect(t, bob, events.MatchFound).Data, &forBob))
	assert.Equal(t, forAlice.SessionID, forBob.SessionID)
	assert.Equal(t, 0, forAlice.PlayerIndex)
	assert.Equal(t, "bob", forAlice.OpponentName)
	assert.Equal(t, "O", forBob.Symbol)
	assert.Equal(t, game.NoWinner, forBob.Snapshot.Winner)
	sessionID := forAlice.SessionID

	var stats map[string]int
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/stats", &stats))
	assert.Equal(t, map[string]int{"waiting": 0, "sessions": 1, "connections": 2}, stats)

	// Out of turn.
	emit(t, bob, events.MakeMove, events.Move{SessionID: sessionID, Position: intPtr(4)})
	var reason string
	require.NoError(t, json.Unmarshal(expect(t, bob, events.InvalidMove).Data, &reason))
	assert.Equal(t, game.ErrNotYourTurn.Error(), reason)

	players := []*gorillaws.Conn{alice, bob}
	for i, pos := range []int{0, 4, 1, 7, 2} {
		emit(t, players[i%2], events.MakeMove, events.Move{SessionID: sessionID, Position: intPtr(pos)})
		expectSnapshot(t, alice)
		snap := expectSnapshot(t, bob)
		assert.Equal(t, string([]game.Symbol{game.PlayerX, game.PlayerO}[i%2]), snap.Board[pos])
	}

	var final game.Snapshot
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/sessions/"+sessionID, &final))
	assert.Equal(t, game.StatusFinished, final.GameStatus)
	assert.Equal(t, game.FirstPlayer, final.Winner)
	assert.Equal(t, [game.BoardSize]string{"X", "X", "X", "", "O", "", "", "O", ""}, final.Board)

	emit(t, bob, events.RestartGame, sessionID)
	for _, conn := range players {
		snap := expectSnapshot(t, conn)
		assert.Equal(t, [game.BoardSize]string{}, snap.Board)
		assert.Equal(t, game.StatusPlaying, snap.GameStatus)
		assert.Equal(t, 0, snap.CurrentPlayer)
	}

	require.NoError(t, alice.Close())
	expect(t, bob, events.OpponentDisconnected)

	emit(t, bob, events.MakeMove, events.Move{SessionID: sessionID, Position: intPtr(0)})
	require.NoError(t, json.Unmarshal(expect(t, bob, events.SessionError).Data, &reason))
	assert.Equal(t, matchmaker.ErrSessionNotFound.Error(), reason)

	assert.Eventually(t, func() bool {
		resp, err := http.Get(srv.URL + "/stats")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var stats map[string]int
		if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
			return false
		}
		return stats["sessions"] == 0 && stats["connections"] == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestMalformedFrame(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv)

	require.NoError(t, conn.WriteMessage(gorillaws.TextMessage, []byte("hello")))

	var reason string
	require.NoError(t, json.Unmarshal(expect(t, conn, events.SessionError).Data, &reason))
	assert.Equal(t, router.ErrMalformed.Error(), reason)
}

func intPtr(v int) *int { return &v }
