// internal/session/view.go
//
// View is the server-side Renderer: it keeps the latest projection the
// controller pushed and turns it into a JSON Snapshot for clients.
// Face-down cards never carry their image id.

package session

import (
	"github.com/robalobadob/pairs/internal/game"
)

// CardView is one card as seen by a client.
type CardView struct {
	Index int    `json:"index"`
	State string `json:"state"`
	Image string `json:"image,omitempty"`
}

// Overlay is the modal shown over the board, if any.
type Overlay struct {
	Kind    string   `json:"kind"`
	Text    string   `json:"text"`
	Actions []string `json:"actions"`
}

// CueEvent asks the client to play or stop a sound. Seq increases across the
// session so clients can skip events they already handled.
type CueEvent struct {
	Seq uint64 `json:"seq"`
	Cue string `json:"cue"`
	Op  string `json:"op"` // "play" | "stop"
	Src string `json:"src,omitempty"`

	// Playback hints for "play"; zero Volume means full volume.
	Loop   bool    `json:"loop,omitempty"`
	Volume float64 `json:"volume,omitempty"`
}

// Snapshot is the full client-visible state of a session.
type Snapshot struct {
	GameID       string          `json:"gameId"`
	Version      uint64          `json:"version"`
	Phase        string          `json:"phase"`
	Level        int             `json:"level"`
	Rows         int             `json:"rows"`
	Cols         int             `json:"cols"`
	Cards        []CardView      `json:"cards"`
	Moves        int             `json:"moves"`
	Seconds      int             `json:"seconds"`
	MaxTime      int             `json:"maxTime"`
	Locked       bool            `json:"locked"`
	BoardFlipped bool            `json:"boardFlipped"`
	Overlay      *Overlay        `json:"overlay,omitempty"`
	Awaiting     string          `json:"awaiting,omitempty"`
	Totals       game.GameTotals `json:"totals"`
	Cues         []CueEvent      `json:"cues"`
}

// maxCueEvents bounds the cue ring carried in every snapshot.
const maxCueEvents = 16

// View implements game.Renderer. Only the session's actor touches it.
type View struct {
	board   game.Board
	moves   int
	seconds int
	overlay *Overlay
	flipped bool

	cues    []CueEvent
	cueSeq  uint64
	version uint64
	dirty   bool
}

func (v *View) touch() {
	v.version++
	v.dirty = true
}

func (v *View) RenderBoard(b game.Board) {
	v.board = b
	v.touch()
}

func (v *View) UpdateHUD(moves, seconds int) {
	v.moves, v.seconds = moves, seconds
	v.touch()
}

func (v *View) ShowOverlay(kind game.OverlayKind, text string, actions []game.Action) {
	o := &Overlay{Kind: string(kind), Text: text, Actions: make([]string, len(actions))}
	for i, a := range actions {
		o.Actions[i] = string(a)
	}
	v.overlay = o
	v.touch()
}

func (v *View) ClearOverlay() {
	if v.overlay == nil {
		return
	}
	v.overlay = nil
	v.touch()
}

func (v *View) SetBoardFlipped(flipped bool) {
	if v.flipped == flipped {
		return
	}
	v.flipped = flipped
	v.touch()
}

// pushCue stamps ev with the next sequence number and appends it to the cue
// ring, dropping the oldest entries.
func (v *View) pushCue(ev CueEvent) {
	v.cueSeq++
	ev.Seq = v.cueSeq
	v.cues = append(v.cues, ev)
	if n := len(v.cues); n > maxCueEvents {
		v.cues = append(v.cues[:0:0], v.cues[n-maxCueEvents:]...)
	}
	v.touch()
}

// snapshot combines the projection with controller queries.
func (v *View) snapshot(id string, c *game.Controller, maxTime int) Snapshot {
	st := c.State()
	s := Snapshot{
		GameID:       id,
		Version:      v.version,
		Phase:        c.Phase().String(),
		Level:        st.Level,
		Rows:         v.board.Rows,
		Cols:         v.board.Cols,
		Cards:        make([]CardView, len(v.board.Cards)),
		Moves:        v.moves,
		Seconds:      v.seconds,
		MaxTime:      maxTime,
		Locked:       st.Locked,
		BoardFlipped: v.flipped,
		Awaiting:     string(c.Awaiting()),
		Totals:       c.Totals(),
		Cues:         append([]CueEvent(nil), v.cues...),
	}
	for i, card := range v.board.Cards {
		cv := CardView{Index: i, State: card.Visibility.String()}
		if card.Visibility != game.FaceDown {
			cv.Image = card.ImageID
		}
		s.Cards[i] = cv
	}
	if v.overlay != nil {
		o := *v.overlay
		o.Actions = append([]string(nil), v.overlay.Actions...)
		s.Overlay = &o
	}
	return s
}
