// internal/session/audio.go
//
// Audio is the server-side AudioCue. Play/Stop requests become cue events in
// the snapshot; the client reports when an awaited cue has finished. Cues the
// controller waits on are also finished by a fallback timer so a silent or
// disconnected client cannot stall a round.

package session

import (
	"time"

	"github.com/robalobadob/pairs/internal/game"
)

// autoFinish lists the cues the controller suspends on.
var autoFinish = map[game.Cue]bool{
	game.CueTimeout:       true,
	game.CueLevelComplete: true,
}

// backgroundVolume is the level the looping background track plays at.
const backgroundVolume = 0.4

// Audio implements game.AudioCue. Only the session's actor touches it.
type Audio struct {
	view    *View
	clock   game.Clock
	sounds  map[string]string
	timeout time.Duration
	finish  func(game.Cue)

	pending map[game.Cue]game.Handle
}

func newAudio(v *View, clk game.Clock, sounds map[string]string, timeout time.Duration) *Audio {
	return &Audio{
		view:    v,
		clock:   clk,
		sounds:  sounds,
		timeout: timeout,
		pending: make(map[game.Cue]game.Handle),
	}
}

func (a *Audio) Play(cue game.Cue) {
	ev := CueEvent{Cue: string(cue), Op: "play", Src: a.sounds[string(cue)]}
	if cue == game.CueBackground {
		ev.Loop, ev.Volume = true, backgroundVolume
	}
	a.view.pushCue(ev)
	if !autoFinish[cue] || a.timeout <= 0 {
		return
	}
	a.cancel(cue)
	a.pending[cue] = a.clock.ScheduleOnce(a.timeout, func(h game.Handle) {
		if a.pending[cue] != h {
			return
		}
		delete(a.pending, cue)
		a.done(cue)
	})
}

func (a *Audio) Stop(cue game.Cue) {
	a.cancel(cue)
	a.view.pushCue(CueEvent{Cue: string(cue), Op: "stop"})
}

// Finished is the client's report that cue played to the end.
func (a *Audio) Finished(cue game.Cue) {
	a.cancel(cue)
	a.done(cue)
}

func (a *Audio) cancel(cue game.Cue) {
	if h, ok := a.pending[cue]; ok {
		a.clock.Cancel(h)
		delete(a.pending, cue)
	}
}

func (a *Audio) done(cue game.Cue) {
	if a.finish != nil {
		a.finish(cue)
	}
}
