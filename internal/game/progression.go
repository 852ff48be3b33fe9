package game

import (
	"fmt"
	"strings"
)

// Progression is the pluggable level policy: where a game starts, how many
// cards each level deals and which level follows a win.
type Progression interface {
	StartLevel() int
	CardCount(level int) int
	// Next returns the level after a win, or ok=false when level is final.
	Next(level int) (next int, ok bool)
}

// Linear deals 2*level cards, starting at level 1 and stepping by one.
type Linear struct {
	Final int
}

func (p Linear) StartLevel() int         { return 1 }
func (p Linear) CardCount(level int) int { return 2 * level }

func (p Linear) Next(level int) (int, bool) {
	if level >= p.Final {
		return level, false
	}
	return level + 1, true
}

// EvenStepped deals level cards (rounded up to even), starting at Start and
// stepping by two until Final.
type EvenStepped struct {
	Start int
	Final int
}

func (p EvenStepped) StartLevel() int { return p.Start }

func (p EvenStepped) CardCount(level int) int {
	if level%2 != 0 {
		return level + 1
	}
	return level
}

func (p EvenStepped) Next(level int) (int, bool) {
	if level >= p.Final {
		return level, false
	}
	next := level + 2
	if next > p.Final {
		next = p.Final
	}
	return next, true
}

// Levels lists every level a progression visits, start to final.
func Levels(p Progression) []int {
	lv := p.StartLevel()
	out := []int{lv}
	for {
		next, ok := p.Next(lv)
		if !ok || next <= lv {
			return out
		}
		lv = next
		out = append(out, lv)
	}
}

// ValidateProgression checks every level's card count against the pool size.
func ValidateProgression(p Progression, poolSize int) error {
	for _, lv := range Levels(p) {
		n := p.CardCount(lv)
		if n <= 0 || n%2 != 0 {
			return fmt.Errorf("level %d deals %d cards: %w", lv, n, ErrInvalidCardCount)
		}
		if n/2 > poolSize {
			return &InsufficientAssetsError{Level: lv, Needed: n / 2, Available: poolSize}
		}
	}
	return nil
}

// ParseProgression builds a policy from its configured name.
// Zero start/final fall back to the defaults of each policy (1..5, 4..10).
func ParseProgression(name string, start, final int) (Progression, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "linear":
		if final <= 0 {
			final = 5
		}
		return Linear{Final: final}, nil
	case "even", "even-stepped", "evenstepped":
		if start <= 0 {
			start = 4
		}
		if final <= 0 {
			final = 10
		}
		if final < start {
			return nil, fmt.Errorf("even progression: final level %d below start %d", final, start)
		}
		return EvenStepped{Start: start, Final: final}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProgression, name)
	}
}
