// internal/httpserver/ws.go
//
// GET /game/ws: a WebSocket that streams the session's snapshots and accepts
// the same intents as the REST routes.
//
// Client -> server:
//   {"type":"flip","index":3}
//   {"type":"action","action":"retry"}
//   {"type":"cue","cue":"levelComplete"}
// Server -> client:
//   {"type":"state","state":{...}}
//   {"type":"error","error":"unknown_cue"}
//
// One writer goroutine owns the connection's write side.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pairs/internal/game"
	"github.com/robalobadob/pairs/internal/session"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsIntentWait = 5 * time.Second
)

type wsIn struct {
	Type   string `json:"type"`
	Index  *int   `json:"index,omitempty"`
	Action string `json:"action,omitempty"`
	Cue    string `json:"cue,omitempty"`
}

type wsOut struct {
	Type  string            `json:"type"`
	State *session.Snapshot `json:"state,omitempty"`
	Error string            `json:"error,omitempty"`
}

// checkOrigin accepts same-host handshakes and the configured client origin.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || origin == s.cfg.ClientOrigin {
		return true
	}
	return strings.HasSuffix(origin, "://"+r.Host)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	defer conn.Close()

	updates, cancel := sess.Subscribe()
	defer cancel()

	replies := make(chan wsOut, 8)
	readDone := make(chan struct{})
	go s.wsRead(conn, sess, replies, readDone)

	ctx, cancelSnap := context.WithTimeout(context.Background(), wsIntentWait)
	snap, err := sess.Snapshot(ctx)
	cancelSnap()
	if err == nil {
		if err := wsWrite(conn, wsOut{Type: "state", State: &snap}); err != nil {
			return
		}
	}

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()
	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				// Session ended (quit or swept).
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"),
					time.Now().Add(wsWriteWait))
				return
			}
			if err := wsWrite(conn, wsOut{Type: "state", State: &snap}); err != nil {
				return
			}
		case msg := <-replies:
			if err := wsWrite(conn, msg); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case <-readDone:
			return
		}
	}
}

// wsRead decodes intents until the peer goes away. State changes reach the
// client through the subscription; only errors are replied to directly.
func (s *Server) wsRead(conn *websocket.Conn, sess *session.Session, replies chan<- wsOut, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		var in wsIn
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Str("session", sess.ID).Msg("websocket read")
			}
			return
		}
		if code := s.applyIntent(sess, in); code != "" {
			select {
			case replies <- wsOut{Type: "error", Error: code}:
			default:
			}
		}
	}
}

// applyIntent runs one client message and returns an error code, or "".
func (s *Server) applyIntent(sess *session.Session, in wsIn) string {
	ctx, cancel := context.WithTimeout(context.Background(), wsIntentWait)
	defer cancel()

	var err error
	switch in.Type {
	case "flip":
		if in.Index == nil {
			return "bad_message"
		}
		_, err = sess.Flip(ctx, *in.Index)
	case "action":
		if game.Action(in.Action) == game.ActionQuit {
			err = s.store.Delete(ctx, sess.ID)
			break
		}
		_, err = sess.Choose(ctx, game.Action(in.Action))
	case "cue":
		cue, ok := parseCue(in.Cue)
		if !ok {
			return "unknown_cue"
		}
		_, err = sess.CueFinished(ctx, cue)
	default:
		return "bad_message"
	}

	switch {
	case err == nil:
		return ""
	case errors.Is(err, game.ErrUnknownAction):
		return "unknown_action"
	case errors.Is(err, session.ErrClosed):
		return "session_not_found"
	default:
		log.Warn().Err(err).Str("session", sess.ID).Msg("websocket intent")
		return "game_error"
	}
}

func wsWrite(conn *websocket.Conn, msg wsOut) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(msg)
}
