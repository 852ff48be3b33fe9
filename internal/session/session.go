// internal/session/session.go
//
// A Session hosts one Controller behind a single-writer actor goroutine.
// Responsibilities:
//   - Serialize HTTP/WebSocket intents, timer firings and cue completions
//     onto one event loop (the controller is not concurrency-safe).
//   - Keep the client projection (View/Audio) and broadcast a Snapshot to
//     subscribers whenever it changes.
//   - Forward finished rounds/games to a Recorder (best effort).

package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pairs/internal/clock"
	"github.com/robalobadob/pairs/internal/game"
)

// ErrClosed is returned for work submitted to a closed session.
var ErrClosed = errors.New("session closed")

// Recorder persists round and game results.
type Recorder interface {
	InsertRound(ctx context.Context, sessionID string, r game.RoundResult) error
	InsertGame(ctx context.Context, sessionID string, t game.GameTotals) error
}

// Options configures a Session.
type Options struct {
	Game       game.Options
	Sounds     map[string]string // cue name -> sound path
	CueTimeout time.Duration     // fallback finish for awaited cues; 0 disables
	Clock      game.Clock        // nil uses a wall clock posting to the actor
}

// NewID returns a fresh, URL-safe session id.
func NewID() string { return xid.New().String() }

// Session is one player's running game.
type Session struct {
	ID string

	ctrl    *game.Controller
	view    *View
	audio   *Audio
	clock   game.Clock
	maxTime int
	log     zerolog.Logger

	queue     chan func()
	done      chan struct{}
	closeOnce sync.Once
	lastSeen  atomic.Int64

	mu   sync.Mutex
	subs map[chan Snapshot]struct{}
}

// New builds a session, deals the first round and starts its actor.
// rec may be nil.
func New(id string, opts Options, pool []string, rec Recorder) (*Session, error) {
	s := &Session{
		ID:    id,
		view:  &View{},
		log:   log.With().Str("session", id).Logger(),
		queue: make(chan func(), 64),
		done:  make(chan struct{}),
		subs:  make(map[chan Snapshot]struct{}),
	}
	s.clock = opts.Clock
	if s.clock == nil {
		s.clock = clock.NewReal(s.post)
	}
	s.audio = newAudio(s.view, s.clock, opts.Sounds, opts.CueTimeout)

	gopts := opts.Game
	gopts.Logger = &s.log
	if rec != nil {
		gopts.Listener = &recorderListener{id: id, rec: rec, log: s.log}
	}
	ctrl, err := game.New(gopts, pool, game.Deps{Renderer: s.view, Audio: s.audio, Clock: s.clock})
	if err != nil {
		s.stopClock()
		return nil, err
	}
	s.ctrl = ctrl
	s.maxTime = gopts.MaxTime
	if s.maxTime <= 0 {
		s.maxTime = game.DefaultMaxTime
	}
	s.audio.finish = ctrl.OnAudioCueFinished

	if err := ctrl.StartNewGame(); err != nil {
		s.stopClock()
		return nil, err
	}
	s.view.dirty = false
	s.Touch()

	go s.run()
	s.log.Info().Msg("session started")
	return s, nil
}

func (s *Session) run() {
	for {
		select {
		case fn := <-s.queue:
			fn()
			s.flush()
		case <-s.done:
			return
		}
	}
}

// post queues fn on the actor; dropped once the session is closed.
func (s *Session) post(fn func()) {
	select {
	case s.queue <- fn:
	case <-s.done:
	}
}

// Do runs fn on the actor and returns the snapshot taken right after it.
func (s *Session) Do(ctx context.Context, fn func(c *game.Controller) error) (Snapshot, error) {
	type result struct {
		snap Snapshot
		err  error
	}
	select {
	case <-s.done:
		return Snapshot{}, ErrClosed
	default:
	}

	out := make(chan result, 1)
	job := func() {
		err := fn(s.ctrl)
		out <- result{snap: s.view.snapshot(s.ID, s.ctrl, s.maxTime), err: err}
	}

	select {
	case s.queue <- job:
	case <-s.done:
		return Snapshot{}, ErrClosed
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	s.Touch()

	select {
	case r := <-out:
		return r.snap, r.err
	case <-s.done:
		return Snapshot{}, ErrClosed
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// Snapshot returns the current state without changing it.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	return s.Do(ctx, func(*game.Controller) error { return nil })
}

// Flip submits a card flip intent.
func (s *Session) Flip(ctx context.Context, index int) (Snapshot, error) {
	return s.Do(ctx, func(c *game.Controller) error {
		c.OnCardFlipIntent(index)
		return nil
	})
}

// Choose applies an overlay action.
func (s *Session) Choose(ctx context.Context, a game.Action) (Snapshot, error) {
	return s.Do(ctx, func(c *game.Controller) error { return c.Choose(a) })
}

// CueFinished reports that the client finished playing cue.
func (s *Session) CueFinished(ctx context.Context, cue game.Cue) (Snapshot, error) {
	return s.Do(ctx, func(*game.Controller) error {
		s.audio.Finished(cue)
		return nil
	})
}

// Subscribe returns a channel of snapshots. Slow readers only see the latest.
// The channel is closed by cancel or when the session closes.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	s.mu.Lock()
	if s.subs == nil {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// flush broadcasts a snapshot if the projection changed. Runs on the actor.
func (s *Session) flush() {
	if !s.view.dirty {
		return
	}
	s.view.dirty = false
	snap := s.view.snapshot(s.ID, s.ctrl, s.maxTime)

	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

// Touch marks the session as used now.
func (s *Session) Touch() { s.lastSeen.Store(time.Now().UnixNano()) }

// LastSeen reports when the session was last used.
func (s *Session) LastSeen() time.Time { return time.Unix(0, s.lastSeen.Load()) }

// Close cancels the controller's timers and stops the actor. Idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		ack := make(chan struct{})
		s.queue <- func() {
			s.ctrl.Close()
			// Subscribers see the channel close, not the stop cue.
			s.view.dirty = false
			close(ack)
		}
		<-ack
		close(s.done)
		s.stopClock()

		s.mu.Lock()
		for ch := range s.subs {
			close(ch)
		}
		s.subs = nil
		s.mu.Unlock()
		s.log.Info().Msg("session closed")
	})
}

func (s *Session) stopClock() {
	if st, ok := s.clock.(interface{ Stop() }); ok {
		st.Stop()
	}
}

// recorderListener adapts a Recorder to game.Listener.
type recorderListener struct {
	id  string
	rec Recorder
	log zerolog.Logger
}

func (l *recorderListener) RoundEnded(r game.RoundResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := l.rec.InsertRound(ctx, l.id, r); err != nil {
		l.log.Warn().Err(err).Int("level", r.Level).Msg("record round failed")
	}
}

func (l *recorderListener) GameCompleted(t game.GameTotals) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := l.rec.InsertGame(ctx, l.id, t); err != nil {
		l.log.Warn().Err(err).Msg("record game failed")
	}
}
