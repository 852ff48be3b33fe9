// internal/game/types.go
//
// Core type definitions for the pairs round controller.
// Defines:
//   - Visibility: per-card face state (face-down/face-up/matched).
//   - Card, Board: the authoritative model of one round's grid.
//   - RoundState, GameTotals: per-round and per-session counters.
//   - Phase, FlipPhase: where the round state machine currently is.
//   - Cue, OverlayKind, Action: names exchanged with the host collaborators.

package game

// Visibility is the tri-state face of a single card.
type Visibility int

const (
	FaceDown Visibility = iota
	FaceUp
	Matched
)

// String returns the wire name of a Visibility.
func (v Visibility) String() string {
	switch v {
	case FaceDown:
		return "faceDown"
	case FaceUp:
		return "faceUp"
	case Matched:
		return "matched"
	default:
		return "unknown"
	}
}

// Card is one slot on the board.
type Card struct {
	ImageID    string     // opaque image identity, passed through to the renderer
	Visibility Visibility // current face
}

// Board is the ordered card sequence of one round plus its grid shape.
type Board struct {
	Level int    // level the board was generated for
	Rows  int    // rows*Cols == len(Cards)
	Cols  int    // smallest divisor of len(Cards) that is >= ceil(sqrt(len(Cards)))
	Cards []Card // shuffled; every ImageID appears exactly twice
}

// Clone returns a deep copy so collaborators never alias controller state.
func (b Board) Clone() Board {
	out := b
	out.Cards = make([]Card, len(b.Cards))
	copy(out.Cards, b.Cards)
	return out
}

// AllMatched reports whether every card on the board is Matched.
func (b Board) AllMatched() bool {
	for _, c := range b.Cards {
		if c.Visibility != Matched {
			return false
		}
	}
	return true
}

// RoundState holds the per-round counters and gates.
type RoundState struct {
	Level            int  // current level number
	TotalFlips       int  // individual card flips this round
	TotalTime        int  // elapsed whole seconds this round
	FlippedUnmatched int  // face-up, not yet matched cards (0, 1 or 2)
	Locked           bool // flip intents are dropped while set
	Started          bool // the round timer runs only once started
}

// GameTotals accumulates won rounds across one play session.
type GameTotals struct {
	TotalGameFlips int `json:"totalGameFlips"`
	TotalGameTime  int `json:"totalGameTime"`
}

// Phase is the coarse state of the round state machine.
type Phase int

const (
	PhaseReady        Phase = iota // dealt (welcome overlay up) or between rounds; flips ignored
	PhasePlaying                   // flips accepted
	PhaseRoundWon                  // waiting for the levelComplete cue to finish
	PhaseRoundLost                 // timed out; waiting for a retry/restart choice
	PhaseGameComplete              // final level won
)

// String returns the wire name of a Phase.
func (p Phase) String() string {
	switch p {
	case PhaseReady:
		return "ready"
	case PhasePlaying:
		return "playing"
	case PhaseRoundWon:
		return "roundWon"
	case PhaseRoundLost:
		return "roundLost"
	case PhaseGameComplete:
		return "gameComplete"
	default:
		return "unknown"
	}
}

// FlipPhase describes the flip-resolution sub-state inside PhasePlaying.
type FlipPhase int

const (
	FlipIdle      FlipPhase = iota // nothing face up
	FlipOneFaceUp                  // one card waiting for its partner
	FlipResolving                  // mismatch shown, flip-back pending
	FlipResolved                   // match shown, flip-back pending
)

// String returns the wire name of a FlipPhase.
func (f FlipPhase) String() string {
	switch f {
	case FlipIdle:
		return "idle"
	case FlipOneFaceUp:
		return "oneFaceUp"
	case FlipResolving:
		return "resolving"
	case FlipResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Cue names one of the fixed sounds the controller asks the host to play.
type Cue string

const (
	CueBackground    Cue = "background"
	CueSuccess       Cue = "success"
	CueError         Cue = "error"
	CueTimeout       Cue = "timeout"
	CueLevelComplete Cue = "levelComplete"
)

// Cues lists every cue in a stable order.
var Cues = []Cue{CueBackground, CueSuccess, CueError, CueTimeout, CueLevelComplete}

// OverlayKind identifies which end-of-round (or start-of-round) overlay is shown.
type OverlayKind string

const (
	OverlayWelcome       OverlayKind = "welcome"
	OverlayTimeout       OverlayKind = "timeout"
	OverlayLevelComplete OverlayKind = "levelComplete"
	OverlayGameComplete  OverlayKind = "gameComplete"
)

// Action is a choice offered on an overlay.
type Action string

const (
	ActionContinue Action = "continue" // dismiss the welcome overlay
	ActionRetry    Action = "retry"    // replay the current level
	ActionRestart  Action = "restart"  // back to the start level, totals zeroed
	ActionQuit     Action = "quit"     // handled by the host
)

// Outcome is how a round ended.
type Outcome string

const (
	OutcomeWon  Outcome = "won"
	OutcomeLost Outcome = "lost"
)

// RoundResult is reported to a Listener when a round ends.
type RoundResult struct {
	Level   int
	Outcome Outcome
	Flips   int
	Seconds int
}
