// internal/game/engine.go
//
// Round controller: the finite-state machine over one level of the pairs game.
// Responsibilities:
//   - Deal boards for the current level (via GenerateBoard).
//   - Resolve flip intents into match/mismatch and schedule the flip-back.
//   - Run the round timer and enter RoundLost on timeout.
//   - Enter RoundWon, accumulate totals, and advance levels on cue completion.
//   - Reset a round (retry) or the whole game (restart).
//
// Notes:
//   - The controller is not safe for concurrent use. Hosts must serialize flip
//     intents, clock callbacks and cue completions (see internal/session).
//   - RoundWon and RoundLost are real states; they are left only when the host
//     reports the awaited cue finished or the player picks an action.
//   - Every pending timer handle is tracked, so callbacks for cancelled or
//     superseded timers fall through as no-ops.
package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultMaxTime       = 60 // seconds per round
	DefaultTickInterval  = time.Second
	DefaultFlipBackDelay = time.Second
	DefaultWinDelay      = 1500 * time.Millisecond
)

// WinLock selects when the board locks after the last pair is matched.
type WinLock int

const (
	WinLockImmediate WinLock = iota // lock as soon as the win is detected
	WinLockDeferred                 // lock when the win delay elapses
)

// String returns the configuration name of a WinLock.
func (w WinLock) String() string {
	if w == WinLockDeferred {
		return "deferred"
	}
	return "immediate"
}

// ParseWinLock maps "immediate" / "deferred" to a WinLock.
func ParseWinLock(s string) (WinLock, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "immediate":
		return WinLockImmediate, nil
	case "deferred":
		return WinLockDeferred, nil
	default:
		return WinLockImmediate, fmt.Errorf("unknown win lock %q", s)
	}
}

// Options configures a Controller. Zero durations and MaxTime fall back to defaults.
type Options struct {
	Progression   Progression
	MaxTime       int           // seconds before a round is lost
	TickInterval  time.Duration // round timer period
	FlipBackDelay time.Duration // how long a resolved pair stays visible
	WinDelay      time.Duration // pause between the last match and RoundWon
	WinLock       WinLock
	Welcome       bool // show a welcome overlay before each round
	Logger        *zerolog.Logger
	Listener      Listener
}

// DefaultOptions returns the linear 1..5 policy with the standard timings.
func DefaultOptions() Options {
	return Options{
		Progression:   Linear{Final: 5},
		MaxTime:       DefaultMaxTime,
		TickInterval:  DefaultTickInterval,
		FlipBackDelay: DefaultFlipBackDelay,
		WinDelay:      DefaultWinDelay,
		WinLock:       WinLockImmediate,
		Welcome:       true,
	}
}

// Deps are the injected collaborators. Rand may be nil.
type Deps struct {
	Renderer Renderer
	Audio    AudioCue
	Clock    Clock
	Rand     *rand.Rand
}

type delayKind int

const (
	delayFlipBack delayKind = iota
	delayWin
)

// Controller owns one session's board, round state and totals.
type Controller struct {
	opts   Options
	pool   []string
	rng    *rand.Rand
	render Renderer
	audio  AudioCue
	clock  Clock
	log    zerolog.Logger

	board    Board
	state    RoundState
	totals   GameTotals
	phase    Phase
	ticker   Handle
	delays   map[Handle]delayKind
	awaiting Cue // cue whose completion the current phase waits on
	offered  []Action
}

// New validates the progression against the pool and builds an idle controller.
// Call StartNewGame to deal the first round.
func New(opts Options, pool []string, deps Deps) (*Controller, error) {
	if deps.Renderer == nil || deps.Audio == nil || deps.Clock == nil {
		return nil, errors.New("game: renderer, audio and clock are required")
	}
	if opts.Progression == nil {
		opts.Progression = Linear{Final: 5}
	}
	if opts.MaxTime <= 0 {
		opts.MaxTime = DefaultMaxTime
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.FlipBackDelay <= 0 {
		opts.FlipBackDelay = DefaultFlipBackDelay
	}
	if opts.WinDelay <= 0 {
		opts.WinDelay = DefaultWinDelay
	}

	distinct := dedupe(pool)
	if err := ValidateProgression(opts.Progression, len(distinct)); err != nil {
		return nil, err
	}

	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	lg := zerolog.Nop()
	if opts.Logger != nil {
		lg = *opts.Logger
	}

	return &Controller{
		opts:   opts,
		pool:   distinct,
		rng:    rng,
		render: deps.Renderer,
		audio:  deps.Audio,
		clock:  deps.Clock,
		log:    lg,
		state:  RoundState{Level: opts.Progression.StartLevel()},
		phase:  PhaseReady,
		delays: make(map[Handle]delayKind),
	}, nil
}

// ------------------------------ host entry points ------------------------------

// StartNewGame fully resets and deals the start level.
func (c *Controller) StartNewGame() error {
	c.ResetRound(true)
	return c.NewRound()
}

// NewRound deals and renders a board for the current level.
func (c *Controller) NewRound() error {
	c.cancelTimers()
	b, err := GenerateBoard(c.state.Level, c.opts.Progression, c.pool, c.rng)
	if err != nil {
		return err
	}
	c.board = b
	c.render.RenderBoard(c.board.Clone())
	c.render.UpdateHUD(c.state.TotalFlips, c.state.TotalTime)

	if !c.opts.Welcome {
		c.phase = PhasePlaying
		c.log.Debug().Int("level", c.state.Level).Int("cards", len(b.Cards)).Msg("round dealt")
		return nil
	}
	c.phase = PhaseReady
	actions := []Action{ActionContinue}
	if c.state.Level > c.opts.Progression.StartLevel() {
		actions = append(actions, ActionRetry, ActionRestart, ActionQuit)
	}
	c.render.SetBoardFlipped(true)
	c.showOverlay(OverlayWelcome, fmt.Sprintf("Welcome to level %d", c.state.Level), actions)
	c.log.Debug().Int("level", c.state.Level).Int("cards", len(b.Cards)).Msg("round dealt, welcome shown")
	return nil
}

// Continue dismisses the welcome overlay and opens the board for flips.
func (c *Controller) Continue() {
	if c.phase != PhaseReady || len(c.board.Cards) == 0 {
		return
	}
	c.phase = PhasePlaying
	c.clearOverlay()
	c.render.SetBoardFlipped(false)
}

// Choose applies an action offered by the overlay on screen. Quit belongs to
// the host; anything else not on the overlay is rejected.
func (c *Controller) Choose(a Action) error {
	if !slices.Contains(c.offered, a) {
		return fmt.Errorf("%w: %q not offered in phase %s", ErrUnknownAction, a, c.phase)
	}
	switch a {
	case ActionContinue:
		c.Continue()
		return nil
	case ActionRetry:
		c.ResetRound(false)
		return c.NewRound()
	case ActionRestart:
		return c.StartNewGame()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a)
	}
}

// ResetRound cancels timers, silences the background, clears the overlay and
// zeroes the per-round fields. A full reset also rewinds the level and totals.
// The caller follows it with NewRound.
func (c *Controller) ResetRound(full bool) {
	c.cancelTimers()
	c.awaiting = ""
	c.audio.Stop(CueBackground)
	c.clearOverlay()
	c.render.SetBoardFlipped(false)

	c.state = RoundState{Level: c.state.Level}
	if full {
		c.state.Level = c.opts.Progression.StartLevel()
		c.totals = GameTotals{}
	}
	c.phase = PhaseReady
}

func (c *Controller) showOverlay(kind OverlayKind, text string, actions []Action) {
	c.offered = slices.Clone(actions)
	c.render.ShowOverlay(kind, text, actions)
}

func (c *Controller) clearOverlay() {
	c.offered = nil
	c.render.ClearOverlay()
}

// Close cancels every pending timer. The controller must not be used afterwards.
func (c *Controller) Close() {
	c.cancelTimers()
	c.audio.Stop(CueBackground)
}

// OnCardFlipIntent reveals card index. Intents that cannot apply are dropped.
func (c *Controller) OnCardFlipIntent(index int) {
	if c.phase != PhasePlaying || c.state.Locked {
		return
	}
	if index < 0 || index >= len(c.board.Cards) {
		return
	}
	card := &c.board.Cards[index]
	if card.Visibility != FaceDown || c.state.FlippedUnmatched >= 2 {
		return
	}

	card.Visibility = FaceUp
	c.state.TotalFlips++
	c.state.FlippedUnmatched++
	if !c.state.Started {
		c.startTimer()
	}
	if c.state.FlippedUnmatched == 2 {
		c.resolvePair()
	}
	c.render.RenderBoard(c.board.Clone())
	c.render.UpdateHUD(c.state.TotalFlips, c.state.TotalTime)

	if c.board.AllMatched() {
		c.beginWin()
	}
}

// OnTimerTick advances the round clock by one tick.
func (c *Controller) OnTimerTick() {
	if c.ticker == 0 || c.phase != PhasePlaying {
		return
	}
	c.state.TotalTime++
	c.render.UpdateHUD(c.state.TotalFlips, c.state.TotalTime)
	if c.state.TotalTime >= c.opts.MaxTime {
		c.enterRoundLost()
	}
}

// OnDelayElapsed resumes the flip-back or win delay identified by h.
func (c *Controller) OnDelayElapsed(h Handle) {
	kind, ok := c.delays[h]
	if !ok {
		return
	}
	delete(c.delays, h)
	switch kind {
	case delayFlipBack:
		c.flipBack()
	case delayWin:
		c.enterRoundWon()
	}
}

// OnAudioCueFinished resumes a phase suspended on cue. Other cues are ignored.
func (c *Controller) OnAudioCueFinished(cue Cue) {
	if c.awaiting == "" || cue != c.awaiting {
		return
	}
	c.awaiting = ""
	switch c.phase {
	case PhaseRoundLost:
		c.state.Locked = false
	case PhaseRoundWon:
		c.advance()
	}
}

// ----------------------------------- queries -----------------------------------

// Board returns a copy of the current board.
func (c *Controller) Board() Board { return c.board.Clone() }

// State returns the per-round state.
func (c *Controller) State() RoundState { return c.state }

// Totals returns the accumulated game totals.
func (c *Controller) Totals() GameTotals { return c.totals }

// Phase returns the coarse state.
func (c *Controller) Phase() Phase { return c.phase }

// Awaiting returns the cue the current phase waits on, or "".
func (c *Controller) Awaiting() Cue { return c.awaiting }

// FlipPhase derives the flip-resolution sub-state.
func (c *Controller) FlipPhase() FlipPhase {
	switch c.state.FlippedUnmatched {
	case 0:
		return FlipIdle
	case 1:
		return FlipOneFaceUp
	}
	for _, card := range c.board.Cards {
		if card.Visibility == FaceUp {
			return FlipResolving
		}
	}
	return FlipResolved
}

// ---------------------------------- internals ----------------------------------

func (c *Controller) startTimer() {
	c.state.Started = true
	c.audio.Play(CueBackground)
	c.ticker = c.clock.ScheduleRepeating(c.opts.TickInterval, c.OnTimerTick)
}

func (c *Controller) stopTimer() {
	if c.ticker != 0 {
		c.clock.Cancel(c.ticker)
		c.ticker = 0
	}
}

func (c *Controller) schedule(d time.Duration, kind delayKind) {
	h := c.clock.ScheduleOnce(d, c.OnDelayElapsed)
	c.delays[h] = kind
}

func (c *Controller) cancelTimers() {
	c.stopTimer()
	for h := range c.delays {
		c.clock.Cancel(h)
		delete(c.delays, h)
	}
}

// resolvePair compares the two face-up cards and schedules the flip-back
// regardless of outcome.
func (c *Controller) resolvePair() {
	first, second := -1, -1
	for i, card := range c.board.Cards {
		if card.Visibility != FaceUp {
			continue
		}
		if first < 0 {
			first = i
		} else {
			second = i
			break
		}
	}
	if second < 0 {
		return
	}

	if c.board.Cards[first].ImageID == c.board.Cards[second].ImageID {
		c.board.Cards[first].Visibility = Matched
		c.board.Cards[second].Visibility = Matched
		c.audio.Play(CueSuccess)
	} else {
		c.audio.Play(CueError)
	}
	c.schedule(c.opts.FlipBackDelay, delayFlipBack)
}

func (c *Controller) flipBack() {
	for i := range c.board.Cards {
		if c.board.Cards[i].Visibility == FaceUp {
			c.board.Cards[i].Visibility = FaceDown
		}
	}
	c.state.FlippedUnmatched = 0
	c.render.RenderBoard(c.board.Clone())
}

// beginWin freezes the round clock and schedules RoundWon.
func (c *Controller) beginWin() {
	c.stopTimer()
	if c.opts.WinLock == WinLockImmediate {
		c.state.Locked = true
	}
	c.schedule(c.opts.WinDelay, delayWin)
}

func (c *Controller) enterRoundWon() {
	if c.phase != PhasePlaying {
		return
	}
	c.stopTimer()
	c.audio.Stop(CueBackground)
	c.state.Locked = true
	c.totals.TotalGameFlips += c.state.TotalFlips
	c.totals.TotalGameTime += c.state.TotalTime
	c.phase = PhaseRoundWon
	c.awaiting = CueLevelComplete

	c.render.SetBoardFlipped(true)
	c.showOverlay(OverlayLevelComplete,
		fmt.Sprintf("Level %d complete! %d moves in %d seconds", c.state.Level, c.state.TotalFlips, c.state.TotalTime),
		nil)
	c.audio.Play(CueLevelComplete)

	c.log.Debug().Int("level", c.state.Level).Int("flips", c.state.TotalFlips).
		Int("seconds", c.state.TotalTime).Msg("round won")
	c.notifyRound(OutcomeWon)
}

func (c *Controller) enterRoundLost() {
	c.cancelTimers()
	c.audio.Stop(CueBackground)
	c.state.Locked = true
	c.phase = PhaseRoundLost
	c.awaiting = CueTimeout
	c.audio.Play(CueTimeout)

	c.render.SetBoardFlipped(true)
	c.showOverlay(OverlayTimeout,
		fmt.Sprintf("Time's up! Level %d lost", c.state.Level),
		[]Action{ActionRetry, ActionRestart, ActionQuit})

	c.log.Debug().Int("level", c.state.Level).Int("flips", c.state.TotalFlips).Msg("round lost")
	c.notifyRound(OutcomeLost)
}

// advance runs once the levelComplete cue has finished.
func (c *Controller) advance() {
	c.state.Locked = false
	next, ok := c.opts.Progression.Next(c.state.Level)
	if !ok {
		c.enterGameComplete()
		return
	}
	c.ResetRound(false)
	c.state.Level = next
	if err := c.NewRound(); err != nil {
		// Unreachable for a validated progression.
		c.log.Error().Err(err).Int("level", next).Msg("deal next level")
	}
}

func (c *Controller) enterGameComplete() {
	c.phase = PhaseGameComplete
	c.state.Locked = true
	c.render.SetBoardFlipped(true)
	c.showOverlay(OverlayGameComplete,
		fmt.Sprintf("Game complete! %d moves in %d seconds", c.totals.TotalGameFlips, c.totals.TotalGameTime),
		[]Action{ActionRestart, ActionQuit})
	c.audio.Play(CueLevelComplete)

	c.log.Debug().Int("flips", c.totals.TotalGameFlips).Int("seconds", c.totals.TotalGameTime).Msg("game complete")
	if c.opts.Listener != nil {
		c.opts.Listener.GameCompleted(c.totals)
	}
}

func (c *Controller) notifyRound(o Outcome) {
	if c.opts.Listener == nil {
		return
	}
	c.opts.Listener.RoundEnded(RoundResult{
		Level:   c.state.Level,
		Outcome: o,
		Flips:   c.state.TotalFlips,
		Seconds: c.state.TotalTime,
	})
}

// dedupe drops empty and repeated image ids, keeping first occurrences.
func dedupe(pool []string) []string {
	seen := make(map[string]struct{}, len(pool))
	out := make([]string, 0, len(pool))
	for _, p := range pool {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
