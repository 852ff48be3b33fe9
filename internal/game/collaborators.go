// internal/game/collaborators.go
//
// Interfaces the controller calls into. The controller owns the model;
// everything here is a projection or a side effect requested by it.

package game

import "time"

// Renderer projects the board model. It is never read back as a source of truth.
type Renderer interface {
	RenderBoard(b Board)
	UpdateHUD(moves, seconds int)
	ShowOverlay(kind OverlayKind, text string, actions []Action)
	ClearOverlay()
	SetBoardFlipped(flipped bool)
}

// AudioCue plays and stops the fixed set of cues. Completion of the cues the
// controller waits on is reported back through Controller.OnAudioCueFinished.
type AudioCue interface {
	Play(cue Cue)
	Stop(cue Cue)
}

// Handle identifies a scheduled timer. The zero Handle is never issued.
type Handle uint64

// Clock schedules callbacks. Implementations must invoke callbacks on the
// same serialized event loop that drives the controller.
type Clock interface {
	ScheduleRepeating(interval time.Duration, fn func()) Handle
	ScheduleOnce(delay time.Duration, fn func(Handle)) Handle
	Cancel(h Handle)
}

// Listener is told about finished rounds and games. Optional.
type Listener interface {
	RoundEnded(r RoundResult)
	GameCompleted(t GameTotals)
}
