// internal/game/board.go
//
// Board generation: pick distinct images, pair them, shuffle, and derive
// the grid shape. Pure apart from the injected random source.

package game

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// GenerateBoard deals a fresh shuffled board for level.
func GenerateBoard(level int, p Progression, pool []string, rng *rand.Rand) (Board, error) {
	n := p.CardCount(level)
	if n <= 0 || n%2 != 0 {
		return Board{}, fmt.Errorf("level %d deals %d cards: %w", level, n, ErrInvalidCardCount)
	}
	pairs := n / 2
	if pairs > len(pool) {
		return Board{}, &InsufficientAssetsError{Level: level, Needed: pairs, Available: len(pool)}
	}

	// rng.Perm is a uniform permutation; the first `pairs` entries are a
	// uniform sample without repetition.
	perm := rng.Perm(len(pool))[:pairs]
	cards := make([]Card, 0, n)
	for _, i := range perm {
		cards = append(cards, Card{ImageID: pool[i]}, Card{ImageID: pool[i]})
	}
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})

	rows, cols := GridDimensions(n)
	return Board{Level: level, Rows: rows, Cols: cols, Cards: cards}, nil
}

// GridDimensions returns rows x cols for n cards: cols starts at ceil(sqrt(n))
// and grows until it divides n.
func GridDimensions(n int) (rows, cols int) {
	if n <= 0 {
		return 0, 0
	}
	cols = int(math.Ceil(math.Sqrt(float64(n))))
	for n%cols != 0 {
		cols++
	}
	return n / cols, cols
}
