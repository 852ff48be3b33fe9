// internal/clock/manual.go
//
// Manual is a virtual game.Clock: nothing fires until Advance is called.
// Tests use it to drive rounds with deterministic time.

package clock

import (
	"time"

	"github.com/robalobadob/pairs/internal/game"
)

type manualTimer struct {
	due      time.Duration
	interval time.Duration // zero for one-shot timers
	tick     func()
	once     func(game.Handle)
}

// Manual implements game.Clock over a virtual timeline starting at zero.
// Not safe for concurrent use.
type Manual struct {
	now    time.Duration
	next   game.Handle
	timers map[game.Handle]*manualTimer
}

var _ game.Clock = (*Manual)(nil)

// NewManual returns a Manual clock at t=0.
func NewManual() *Manual {
	return &Manual{timers: make(map[game.Handle]*manualTimer)}
}

func (m *Manual) ScheduleRepeating(interval time.Duration, fn func()) game.Handle {
	m.next++
	m.timers[m.next] = &manualTimer{due: m.now + interval, interval: interval, tick: fn}
	return m.next
}

func (m *Manual) ScheduleOnce(delay time.Duration, fn func(game.Handle)) game.Handle {
	m.next++
	m.timers[m.next] = &manualTimer{due: m.now + delay, once: fn}
	return m.next
}

func (m *Manual) Cancel(h game.Handle) { delete(m.timers, h) }

// Now reports the virtual time elapsed since creation.
func (m *Manual) Now() time.Duration { return m.now }

// Pending reports how many timers are armed.
func (m *Manual) Pending() int { return len(m.timers) }

// Advance moves the clock forward by d, firing every timer that falls due in
// deadline order (ties broken by handle). Callbacks may schedule or cancel timers.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		h, t := m.earliest()
		if t == nil || t.due > target {
			break
		}
		m.now = t.due
		if t.interval > 0 {
			t.due += t.interval
			t.tick()
			continue
		}
		delete(m.timers, h)
		t.once(h)
	}
	m.now = target
}

func (m *Manual) earliest() (game.Handle, *manualTimer) {
	var (
		best  game.Handle
		bestT *manualTimer
	)
	for h, t := range m.timers {
		if bestT == nil || t.due < bestT.due || (t.due == bestT.due && h < best) {
			best, bestT = h, t
		}
	}
	return best, bestT
}
