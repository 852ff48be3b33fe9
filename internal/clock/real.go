// internal/clock/real.go
//
// Real is a wall-clock game.Clock. Timers fire on runtime goroutines, but the
// callbacks themselves are handed to post, which must run them on the owner's
// serialized event loop. A handle is re-checked on that loop before its
// callback runs, so a firing that raced with Cancel is dropped.

package clock

import (
	"sync"
	"time"

	"github.com/robalobadob/pairs/internal/game"
)

// Real implements game.Clock with time.Ticker and time.AfterFunc.
type Real struct {
	post func(func())

	mu     sync.Mutex
	next   game.Handle
	stops  map[game.Handle]func()
	closed bool
}

var _ game.Clock = (*Real)(nil)

// NewReal returns a clock that delivers callbacks through post.
func NewReal(post func(func())) *Real {
	return &Real{post: post, stops: make(map[game.Handle]func())}
}

func (r *Real) ScheduleRepeating(interval time.Duration, fn func()) game.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0
	}
	r.next++
	h := r.next

	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				r.post(func() {
					if r.live(h) {
						fn()
					}
				})
			case <-done:
				return
			}
		}
	}()
	r.stops[h] = func() {
		ticker.Stop()
		close(done)
	}
	return h
}

func (r *Real) ScheduleOnce(delay time.Duration, fn func(game.Handle)) game.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0
	}
	r.next++
	h := r.next

	t := time.AfterFunc(delay, func() {
		r.post(func() {
			if r.take(h) {
				fn(h)
			}
		})
	})
	r.stops[h] = func() { t.Stop() }
	return h
}

func (r *Real) Cancel(h game.Handle) {
	r.mu.Lock()
	stop, ok := r.stops[h]
	delete(r.stops, h)
	r.mu.Unlock()
	if ok {
		stop()
	}
}

// Stop cancels every timer and refuses new ones.
func (r *Real) Stop() {
	r.mu.Lock()
	stops := r.stops
	r.stops = make(map[game.Handle]func())
	r.closed = true
	r.mu.Unlock()
	for _, stop := range stops {
		stop()
	}
}

// live reports whether a repeating handle is still armed.
func (r *Real) live(h game.Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.stops[h]
	return ok
}

// take disarms a one-shot handle, reporting whether it was still armed.
func (r *Real) take(h game.Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stops[h]; !ok {
		return false
	}
	delete(r.stops, h)
	return true
}
