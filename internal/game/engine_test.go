package game_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/robalobadob/pairs/internal/clock"
	"github.com/robalobadob/pairs/internal/game"
)

type overlay struct {
	kind    game.OverlayKind
	text    string
	actions []game.Action
}

type harness struct {
	render *MockRenderer
	audio  *MockAudioCue
	clock  *clock.Manual
	c      *game.Controller

	played   []game.Cue
	overlays []overlay
	results  []game.RoundResult
	totals   []game.GameTotals
}

func (h *harness) RoundEnded(r game.RoundResult)  { h.results = append(h.results, r) }
func (h *harness) GameCompleted(t game.GameTotals) { h.totals = append(h.totals, t) }

func (h *harness) count(cue game.Cue) int {
	n := 0
	for _, c := range h.played {
		if c == cue {
			n++
		}
	}
	return n
}

func (h *harness) lastOverlay() overlay {
	if len(h.overlays) == 0 {
		return overlay{}
	}
	return h.overlays[len(h.overlays)-1]
}

func newHarness(t *testing.T, opts game.Options, pool []string) *harness {
	t.Helper()
	mc := gomock.NewController(t)
	h := &harness{
		render: NewMockRenderer(mc),
		audio:  NewMockAudioCue(mc),
		clock:  clock.NewManual(),
	}
	h.render.EXPECT().RenderBoard(gomock.Any()).AnyTimes()
	h.render.EXPECT().UpdateHUD(gomock.Any(), gomock.Any()).AnyTimes()
	h.render.EXPECT().ClearOverlay().AnyTimes()
	h.render.EXPECT().SetBoardFlipped(gomock.Any()).AnyTimes()
	h.render.EXPECT().ShowOverlay(gomock.Any(), gomock.Any(), gomock.Any()).
		Do(func(k game.OverlayKind, text string, actions []game.Action) {
			h.overlays = append(h.overlays, overlay{k, text, actions})
		}).AnyTimes()
	h.audio.EXPECT().Play(gomock.Any()).
		Do(func(c game.Cue) { h.played = append(h.played, c) }).AnyTimes()
	h.audio.EXPECT().Stop(gomock.Any()).AnyTimes()

	opts.Listener = h
	c, err := game.New(opts, pool, game.Deps{
		Renderer: h.render,
		Audio:    h.audio,
		Clock:    h.clock,
		Rand:     rand.New(rand.NewPCG(42, 7)),
	})
	require.NoError(t, err)
	require.NoError(t, c.StartNewGame())
	h.c = c
	return h
}

func playOpts(p game.Progression) game.Options {
	opts := game.DefaultOptions()
	opts.Progression = p
	opts.Welcome = false
	return opts
}

// pairs groups board indices by image id.
func pairs(b game.Board) [][2]int {
	byImage := map[string][]int{}
	var order []string
	for i, c := range b.Cards {
		if _, ok := byImage[c.ImageID]; !ok {
			order = append(order, c.ImageID)
		}
		byImage[c.ImageID] = append(byImage[c.ImageID], i)
	}
	out := make([][2]int, 0, len(order))
	for _, id := range order {
		idx := byImage[id]
		out = append(out, [2]int{idx[0], idx[1]})
	}
	return out
}

func TestFlipSameCardTwiceIsNoop(t *testing.T) {
	h := newHarness(t, playOpts(game.EvenStepped{Start: 4, Final: 4}), testPool(4))

	h.c.OnCardFlipIntent(0)
	before := h.c.State()
	boardBefore := h.c.Board()

	h.c.OnCardFlipIntent(0)
	assert.Equal(t, before, h.c.State())
	assert.Equal(t, boardBefore, h.c.Board())
	assert.Equal(t, 1, h.c.State().TotalFlips)
	assert.Equal(t, game.FlipOneFaceUp, h.c.FlipPhase())
}

func TestMatchingPairStaysMatched(t *testing.T) {
	h := newHarness(t, playOpts(game.EvenStepped{Start: 6, Final: 6}), testPool(4))
	p := pairs(h.c.Board())

	h.c.OnCardFlipIntent(p[0][0])
	h.c.OnCardFlipIntent(p[0][1])

	b := h.c.Board()
	assert.Equal(t, game.Matched, b.Cards[p[0][0]].Visibility)
	assert.Equal(t, game.Matched, b.Cards[p[0][1]].Visibility)
	assert.Equal(t, 2, h.c.State().TotalFlips)
	assert.Equal(t, 1, h.count(game.CueSuccess))
	assert.Equal(t, game.FlipResolved, h.c.FlipPhase())

	h.c.OnCardFlipIntent(p[1][0])
	assert.Equal(t, 2, h.c.State().TotalFlips, "flip during the flip-back delay must be dropped")

	h.clock.Advance(game.DefaultFlipBackDelay)
	assert.Equal(t, 0, h.c.State().FlippedUnmatched)
	assert.Equal(t, game.Matched, h.c.Board().Cards[p[0][0]].Visibility)
	assert.Equal(t, game.FlipIdle, h.c.FlipPhase())
}

func TestMismatchFlipsBackAfterDelay(t *testing.T) {
	h := newHarness(t, playOpts(game.EvenStepped{Start: 6, Final: 6}), testPool(4))
	p := pairs(h.c.Board())
	a, b := p[0][0], p[1][0]

	h.c.OnCardFlipIntent(a)
	h.c.OnCardFlipIntent(b)
	assert.Equal(t, 1, h.count(game.CueError))
	assert.Equal(t, game.FlipResolving, h.c.FlipPhase())
	assert.Equal(t, game.FaceUp, h.c.Board().Cards[a].Visibility)

	h.clock.Advance(game.DefaultFlipBackDelay - time.Millisecond)
	assert.Equal(t, game.FaceUp, h.c.Board().Cards[b].Visibility)

	h.clock.Advance(time.Millisecond)
	board := h.c.Board()
	assert.Equal(t, game.FaceDown, board.Cards[a].Visibility)
	assert.Equal(t, game.FaceDown, board.Cards[b].Visibility)
	assert.Equal(t, 0, h.c.State().FlippedUnmatched)
	assert.Equal(t, 2, h.c.State().TotalFlips)
}

func TestFlipOutOfRangeIsIgnored(t *testing.T) {
	h := newHarness(t, playOpts(game.Linear{Final: 2}), testPool(2))
	h.c.OnCardFlipIntent(-1)
	h.c.OnCardFlipIntent(99)
	assert.Equal(t, 0, h.c.State().TotalFlips)
	assert.False(t, h.c.State().Started)
	assert.Zero(t, h.clock.Pending())
}

func TestTimerStartsOnFirstFlip(t *testing.T) {
	h := newHarness(t, playOpts(game.EvenStepped{Start: 4, Final: 4}), testPool(2))
	h.clock.Advance(5 * time.Second)
	assert.Equal(t, 0, h.c.State().TotalTime)

	h.c.OnCardFlipIntent(0)
	assert.True(t, h.c.State().Started)
	assert.Equal(t, 1, h.count(game.CueBackground))

	h.clock.Advance(3 * time.Second)
	assert.Equal(t, 3, h.c.State().TotalTime)
}

func TestTimeoutEntersRoundLostOnce(t *testing.T) {
	h := newHarness(t, playOpts(game.EvenStepped{Start: 4, Final: 4}), testPool(2))
	h.c.OnCardFlipIntent(0)

	h.clock.Advance(time.Duration(game.DefaultMaxTime-1) * time.Second)
	assert.Equal(t, game.PhasePlaying, h.c.Phase())

	h.clock.Advance(time.Second)
	assert.Equal(t, game.PhaseRoundLost, h.c.Phase())
	assert.True(t, h.c.State().Locked)
	assert.Equal(t, game.DefaultMaxTime, h.c.State().TotalTime)
	assert.Equal(t, 1, h.count(game.CueTimeout))
	assert.Equal(t, game.OverlayTimeout, h.lastOverlay().kind)
	assert.Equal(t, []game.Action{game.ActionRetry, game.ActionRestart, game.ActionQuit}, h.lastOverlay().actions)
	require.Len(t, h.results, 1)
	assert.Equal(t, game.OutcomeLost, h.results[0].Outcome)

	// Further ticks cannot re-trigger the loss.
	h.c.OnTimerTick()
	h.clock.Advance(10 * time.Second)
	assert.Equal(t, 1, h.count(game.CueTimeout))
	assert.Equal(t, game.DefaultMaxTime, h.c.State().TotalTime)
	assert.Len(t, h.results, 1)

	// Flips stay dropped until the cue finishes, and the cue releases the lock.
	h.c.OnCardFlipIntent(1)
	assert.Equal(t, 1, h.c.State().TotalFlips)
	h.c.OnAudioCueFinished(game.CueLevelComplete)
	assert.True(t, h.c.State().Locked)
	h.c.OnAudioCueFinished(game.CueTimeout)
	assert.False(t, h.c.State().Locked)
	assert.Equal(t, game.PhaseRoundLost, h.c.Phase())
}

func TestFourCardExampleWinsRound(t *testing.T) {
	h := newHarness(t, playOpts(game.EvenStepped{Start: 4, Final: 4}), []string{"A", "B"})
	p := pairs(h.c.Board())

	h.c.OnCardFlipIntent(p[0][0])
	h.c.OnCardFlipIntent(p[0][1])
	assert.Equal(t, 2, h.c.State().TotalFlips)
	assert.False(t, h.c.State().Locked)

	h.clock.Advance(game.DefaultFlipBackDelay)
	h.c.OnCardFlipIntent(p[1][0])
	h.c.OnCardFlipIntent(p[1][1])
	assert.True(t, h.c.Board().AllMatched())
	assert.True(t, h.c.State().Locked, "immediate win lock")
	assert.Equal(t, game.PhasePlaying, h.c.Phase())

	h.clock.Advance(game.DefaultWinDelay)
	assert.Equal(t, game.PhaseRoundWon, h.c.Phase())
	assert.Equal(t, game.CueLevelComplete, h.c.Awaiting())
	assert.Equal(t, 1, h.count(game.CueLevelComplete))
	assert.Equal(t, game.OverlayLevelComplete, h.lastOverlay().kind)
	assert.Equal(t, game.GameTotals{TotalGameFlips: 4, TotalGameTime: 1}, h.c.Totals())
}

func TestDeferredWinLock(t *testing.T) {
	opts := playOpts(game.Linear{Final: 1})
	opts.WinLock = game.WinLockDeferred
	h := newHarness(t, opts, []string{"A"})

	h.c.OnCardFlipIntent(0)
	h.c.OnCardFlipIntent(1)
	assert.True(t, h.c.Board().AllMatched())
	assert.False(t, h.c.State().Locked)

	h.clock.Advance(game.DefaultWinDelay)
	assert.True(t, h.c.State().Locked)
	assert.Equal(t, game.PhaseRoundWon, h.c.Phase())
}

func TestWinningFinalLevelAccumulatesTotals(t *testing.T) {
	h := newHarness(t, playOpts(game.Linear{Final: 2}), []string{"A", "B"})

	// Level 1: two cards, three seconds.
	h.c.OnCardFlipIntent(0)
	h.clock.Advance(3 * time.Second)
	h.c.OnCardFlipIntent(1)
	h.clock.Advance(game.DefaultWinDelay)
	require.Equal(t, game.PhaseRoundWon, h.c.Phase())
	assert.Equal(t, game.GameTotals{TotalGameFlips: 2, TotalGameTime: 3}, h.c.Totals())

	h.c.OnAudioCueFinished(game.CueLevelComplete)
	require.Equal(t, game.PhasePlaying, h.c.Phase())
	assert.Equal(t, 2, h.c.State().Level)
	assert.Equal(t, 0, h.c.State().TotalFlips)
	assert.Len(t, h.c.Board().Cards, 4)

	// Level 2: four cards, three seconds.
	p := pairs(h.c.Board())
	h.c.OnCardFlipIntent(p[0][0])
	h.clock.Advance(2 * time.Second)
	h.c.OnCardFlipIntent(p[0][1])
	h.clock.Advance(game.DefaultFlipBackDelay)
	h.c.OnCardFlipIntent(p[1][0])
	h.c.OnCardFlipIntent(p[1][1])
	h.clock.Advance(game.DefaultWinDelay)
	require.Equal(t, game.PhaseRoundWon, h.c.Phase())

	h.c.OnAudioCueFinished(game.CueLevelComplete)
	assert.Equal(t, game.PhaseGameComplete, h.c.Phase())
	want := game.GameTotals{TotalGameFlips: 6, TotalGameTime: 6}
	assert.Equal(t, want, h.c.Totals())
	require.Len(t, h.totals, 1)
	assert.Equal(t, want, h.totals[0])
	assert.Equal(t, game.OverlayGameComplete, h.lastOverlay().kind)
	assert.Equal(t, []game.Action{game.ActionRestart, game.ActionQuit}, h.lastOverlay().actions)
	assert.Len(t, h.results, 2)

	// A repeated cue notice changes nothing.
	h.c.OnAudioCueFinished(game.CueLevelComplete)
	assert.Equal(t, game.PhaseGameComplete, h.c.Phase())
}

func TestResetRound(t *testing.T) {
	h := newHarness(t, playOpts(game.Linear{Final: 3}), []string{"A", "B", "C"})

	h.c.OnCardFlipIntent(0)
	h.c.OnCardFlipIntent(1)
	h.clock.Advance(game.DefaultWinDelay)
	h.c.OnAudioCueFinished(game.CueLevelComplete)
	require.Equal(t, 2, h.c.State().Level)
	totals := h.c.Totals()
	require.Equal(t, 2, totals.TotalGameFlips)

	// Partial reset keeps level and totals.
	h.c.OnCardFlipIntent(0)
	h.c.ResetRound(false)
	assert.Zero(t, h.clock.Pending())
	assert.Equal(t, game.RoundState{Level: 2}, h.c.State())
	assert.Equal(t, totals, h.c.Totals())
	require.NoError(t, h.c.NewRound())
	assert.Len(t, h.c.Board().Cards, 4)

	// Full reset rewinds to the start level and zeroes totals.
	h.c.ResetRound(true)
	assert.Equal(t, game.RoundState{Level: 1}, h.c.State())
	assert.Equal(t, game.GameTotals{}, h.c.Totals())
	require.NoError(t, h.c.NewRound())
	assert.Len(t, h.c.Board().Cards, 2)
}

func TestStaleCallbacksAfterResetAreNoops(t *testing.T) {
	h := newHarness(t, playOpts(game.EvenStepped{Start: 6, Final: 6}), testPool(3))
	p := pairs(h.c.Board())

	h.c.OnCardFlipIntent(p[0][0])
	h.c.OnCardFlipIntent(p[1][0])
	require.Equal(t, 2, h.clock.Pending(), "ticker and flip-back armed")

	h.c.ResetRound(false)
	require.NoError(t, h.c.NewRound())
	assert.Zero(t, h.clock.Pending())

	before := h.c.Board()
	h.c.OnDelayElapsed(game.Handle(1))
	h.c.OnDelayElapsed(game.Handle(2))
	h.c.OnTimerTick()
	assert.Equal(t, before, h.c.Board())
	assert.Equal(t, 0, h.c.State().TotalTime)
}

func TestWelcomeOverlayGatesFlips(t *testing.T) {
	opts := playOpts(game.Linear{Final: 2})
	opts.Welcome = true
	h := newHarness(t, opts, []string{"A", "B"})

	assert.Equal(t, game.PhaseReady, h.c.Phase())
	assert.Equal(t, game.OverlayWelcome, h.lastOverlay().kind)
	assert.Equal(t, []game.Action{game.ActionContinue}, h.lastOverlay().actions)

	h.c.OnCardFlipIntent(0)
	assert.Equal(t, 0, h.c.State().TotalFlips)

	require.NoError(t, h.c.Choose(game.ActionContinue))
	assert.Equal(t, game.PhasePlaying, h.c.Phase())
	h.c.OnCardFlipIntent(0)
	h.c.OnCardFlipIntent(1)
	h.clock.Advance(game.DefaultWinDelay)
	h.c.OnAudioCueFinished(game.CueLevelComplete)

	assert.Equal(t, game.PhaseReady, h.c.Phase())
	assert.Equal(t, []game.Action{game.ActionContinue, game.ActionRetry, game.ActionRestart, game.ActionQuit},
		h.lastOverlay().actions)
}

func TestChooseRejectsHostActions(t *testing.T) {
	h := newHarness(t, playOpts(game.Linear{Final: 2}), []string{"A", "B"})
	assert.ErrorIs(t, h.c.Choose(game.ActionQuit), game.ErrUnknownAction)
	assert.ErrorIs(t, h.c.Choose("dance"), game.ErrUnknownAction)
}

func TestChooseOnlyAcceptsOfferedActions(t *testing.T) {
	h := newHarness(t, playOpts(game.Linear{Final: 2}), []string{"A", "B"})

	// Nothing is on screen while playing.
	h.c.OnCardFlipIntent(0)
	h.clock.Advance(59 * time.Second)
	assert.ErrorIs(t, h.c.Choose(game.ActionRetry), game.ErrUnknownAction)
	assert.ErrorIs(t, h.c.Choose(game.ActionRestart), game.ErrUnknownAction)
	assert.ErrorIs(t, h.c.Choose(game.ActionContinue), game.ErrUnknownAction)
	assert.Equal(t, 59, h.c.State().TotalTime)

	h.clock.Advance(time.Second)
	assert.Equal(t, game.PhaseRoundLost, h.c.Phase())
	require.Len(t, h.results, 1)
	assert.Equal(t, game.OutcomeLost, h.results[0].Outcome)

	// The timeout overlay offers retry.
	require.NoError(t, h.c.Choose(game.ActionRetry))
	assert.Equal(t, game.PhasePlaying, h.c.Phase())
	assert.Equal(t, game.RoundState{Level: 1}, h.c.State())
}

func TestChooseRejectsRetryAfterGameComplete(t *testing.T) {
	h := newHarness(t, playOpts(game.Linear{Final: 1}), []string{"A"})

	h.c.OnCardFlipIntent(0)
	h.clock.Advance(2 * time.Second)
	h.c.OnCardFlipIntent(1)
	h.clock.Advance(game.DefaultWinDelay)
	h.c.OnAudioCueFinished(game.CueLevelComplete)
	require.Equal(t, game.PhaseGameComplete, h.c.Phase())
	want := game.GameTotals{TotalGameFlips: 2, TotalGameTime: 2}
	require.Len(t, h.totals, 1)

	assert.ErrorIs(t, h.c.Choose(game.ActionRetry), game.ErrUnknownAction)
	assert.ErrorIs(t, h.c.Choose(game.ActionContinue), game.ErrUnknownAction)
	assert.Equal(t, game.PhaseGameComplete, h.c.Phase())
	assert.Equal(t, want, h.c.Totals())
	assert.Len(t, h.totals, 1)

	require.NoError(t, h.c.Choose(game.ActionRestart))
	assert.Equal(t, game.PhasePlaying, h.c.Phase())
	assert.Equal(t, game.GameTotals{}, h.c.Totals())
	assert.Len(t, h.totals, 1)
}

func TestNewRejectsSmallPool(t *testing.T) {
	_, err := game.New(playOpts(game.Linear{Final: 5}), []string{"A", "B", "A"}, game.Deps{
		Renderer: NewMockRenderer(gomock.NewController(t)),
		Audio:    NewMockAudioCue(gomock.NewController(t)),
		Clock:    clock.NewManual(),
	})
	var ia *game.InsufficientAssetsError
	require.ErrorAs(t, err, &ia)
	assert.Equal(t, 2, ia.Available)
}
