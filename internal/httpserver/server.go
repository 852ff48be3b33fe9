// internal/httpserver/server.go
//
// HTTP server wiring for the pairs backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/debug/images", "/leaderboard".
//   - POST /game/new creates a session and issues its token.
//   - Session endpoints (token required): state, flip, action, cue, history, ws.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Every game mutation goes through the session's actor; handlers only
//     translate JSON to intents and snapshots back to JSON.
//   - The WebSocket route sits outside the request timeout.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pairs/internal/config"
	"github.com/robalobadob/pairs/internal/game"
	"github.com/robalobadob/pairs/internal/results"
	"github.com/robalobadob/pairs/internal/session"
	"github.com/robalobadob/pairs/internal/store"
)

// History records results and serves them back.
type History interface {
	session.Recorder
	Rounds(ctx context.Context, sessionID string, limit int) ([]results.Round, error)
	Leaderboard(ctx context.Context, limit int) ([]results.LBRow, error)
}

// Options are the server's collaborators.
type Options struct {
	Config  *config.Config
	Store   store.Store
	History History
	Pool    []string          // image pool handed to every session
	Sounds  map[string]string // cue name -> sound path
}

// Server bundles the router, the session store and the results history.
type Server struct {
	r        *chi.Mux
	cfg      *config.Config
	store    store.Store
	history  History
	pool     []string
	sounds   map[string]string
	upgrader websocket.Upgrader
}

// New constructs a Server, installs middleware, and registers routes.
func New(o Options) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		cfg:     o.Config,
		store:   o.Store,
		history: o.History,
		pool:    o.Pool,
		sounds:  o.Sounds,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(s.cors)          // credentials-friendly CORS

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)                 // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"pairs-go","endpoints":["/health","/leaderboard","POST /game/new","/game/*"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "sessions": s.store.Len()})
		})
		r.Get("/debug/images", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]int{"images": len(s.pool), "sounds": len(s.sounds)})
		})
		r.Get("/leaderboard", s.handleLeaderboard)

		// --- game ---
		r.Post("/game/new", s.handleNewGame)
		r.Group(func(r chi.Router) {
			r.Use(s.requireSession())
			r.Get("/game/state", s.handleState)
			r.Post("/game/flip", s.handleFlip)
			r.Post("/game/action", s.handleAction)
			r.Post("/game/cue", s.handleCue)
			r.Get("/game/history", s.handleHistory)
		})

		// JSON 404 for easier debugging
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
		})
	})

	s.r.With(s.requireSession()).Get("/game/ws", s.handleWS)

	return s
}

// Router exposes the internal router (used by the CLI and tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.ClientOrigin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------ GAME ---------------------------------------

type newGameRes struct {
	GameID string           `json:"gameId"`
	Token  string           `json:"token"`
	State  session.Snapshot `json:"state"`
}

// handleNewGame starts a session and issues its token. A session named by a
// token on the request is ended first.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if tok := bearerOrCookie(r); tok != "" {
		if sid, err := parseSessionToken(s.cfg.JWTSecret, tok); err == nil {
			_ = s.store.Delete(ctx, sid)
		}
	}

	id := session.NewID()
	sess, err := session.New(id, session.Options{
		Game:       s.cfg.GameOptions(),
		Sounds:     s.sounds,
		CueTimeout: s.cfg.CueTimeout,
	}, s.pool, s.history)
	if err != nil {
		log.Error().Err(err).Msg("new session")
		var ia *game.InsufficientAssetsError
		if errors.As(err, &ia) {
			http.Error(w, `{"error":"insufficient_assets"}`, http.StatusInternalServerError)
			return
		}
		http.Error(w, `{"error":"new_game_failed"}`, http.StatusInternalServerError)
		return
	}
	if err := s.store.Save(ctx, sess); err != nil {
		sess.Close()
		log.Error().Err(err).Msg("save session")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	tok, exp, err := signSessionToken(s.cfg.JWTSecret, id, s.cfg.TokenExpiry)
	if err != nil {
		_ = s.store.Delete(ctx, id)
		http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
		return
	}
	s.setAuthCookie(w, tok, exp)

	snap, err := sess.Snapshot(ctx)
	if err != nil {
		writeSessionErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(newGameRes{GameID: id, Token: tok, State: snap})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap, err := sessionFrom(r).Snapshot(r.Context())
	if err != nil {
		writeSessionErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(snap)
}

type flipReq struct {
	Index *int `json:"index"`
}

func (s *Server) handleFlip(w http.ResponseWriter, r *http.Request) {
	var req flipReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	snap, err := sessionFrom(r).Flip(r.Context(), *req.Index)
	if err != nil {
		writeSessionErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(snap)
}

type actionReq struct {
	Action string `json:"action"`
}

// handleAction applies an overlay action. Quit ends the session.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req actionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	sess := sessionFrom(r)
	if game.Action(req.Action) == game.ActionQuit {
		if err := s.store.Delete(r.Context(), sess.ID); err != nil {
			log.Warn().Err(err).Str("session", sess.ID).Msg("delete session")
		}
		s.clearAuthCookie(w)
		_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
		return
	}
	snap, err := sess.Choose(r.Context(), game.Action(req.Action))
	if err != nil {
		writeSessionErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(snap)
}

type cueReq struct {
	Cue string `json:"cue"`
}

func (s *Server) handleCue(w http.ResponseWriter, r *http.Request) {
	var req cueReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	cue, ok := parseCue(req.Cue)
	if !ok {
		http.Error(w, `{"error":"unknown_cue"}`, http.StatusBadRequest)
		return
	}
	snap, err := sessionFrom(r).CueFinished(r.Context(), cue)
	if err != nil {
		writeSessionErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(snap)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		_ = json.NewEncoder(w).Encode([]results.Round{})
		return
	}
	rounds, err := s.history.Rounds(r.Context(), sessionFrom(r).ID, queryLimit(r, 100))
	if err != nil {
		log.Warn().Err(err).Msg("rounds")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(rounds)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		_ = json.NewEncoder(w).Encode([]results.LBRow{})
		return
	}
	rows, err := s.history.Leaderboard(r.Context(), queryLimit(r, 20))
	if err != nil {
		log.Warn().Err(err).Msg("leaderboard")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(rows)
}

// ------------------------------- small util --------------------------------

// writeSessionErr maps session/controller errors to JSON responses.
func writeSessionErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrClosed):
		http.Error(w, `{"error":"session_not_found"}`, http.StatusNotFound)
	case errors.Is(err, game.ErrUnknownAction):
		http.Error(w, `{"error":"unknown_action"}`, http.StatusBadRequest)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		http.Error(w, `{"error":"timeout"}`, http.StatusServiceUnavailable)
	default:
		log.Error().Err(err).Msg("session")
		http.Error(w, `{"error":"game_error"}`, http.StatusInternalServerError)
	}
}

func parseCue(s string) (game.Cue, bool) {
	for _, c := range game.Cues {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// queryLimit reads ?limit=, clamped to [1, 100].
func queryLimit(r *http.Request, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 {
		return def
	}
	if n > 100 {
		return 100
	}
	return n
}
