package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/cameroncuttingedge/tictactoe-arena/matchmaker"
	"github.com/cameroncuttingedge/tictactoe-arena/websocket"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

type API struct {
	matchmaker *matchmaker.Matchmaker
	hub        *websocket.Hub
	inbound    websocket.Inbound
}

func New(mm *matchmaker.Matchmaker, hub *websocket.Hub, inbound websocket.Inbound) *API {
	return &API{matchmaker: mm, hub: hub, inbound: inbound}
}

// Routes builds the HTTP surface: the game socket plus a few read-only
// endpoints.
func (a *API) Routes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/ws", a.hub.ServeWS(a.inbound))
	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.HandleFunc("/stats", a.statsHandler).Methods("GET")
	r.HandleFunc("/sessions/{sessionID}", a.sessionStateHandler).Methods("GET")

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST"}),
	)
	return handlers.RecoveryHandler()(cors(r))
}

// StartAPI serves until ctx is cancelled, then shuts down gracefully.
func (a *API) StartAPI(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           a.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Server started")
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) statsHandler(w http.ResponseWriter, r *http.Request) {
	stats := a.matchmaker.Stats()

	writeJSON(w, http.StatusOK, map[string]int{
		"waiting":     stats.Waiting,
		"sessions":    stats.Sessions,
		"connections": a.hub.Count(),
	})
}

func (a *API) sessionStateHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionID"]

	snapshot, err := a.matchmaker.Snapshot(sessionID)
	if errors.Is(err, matchmaker.ErrSessionNotFound) {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
