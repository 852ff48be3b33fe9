package game

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCardCount is returned when a progression yields an odd or non-positive card count.
	ErrInvalidCardCount = errors.New("card count must be even and positive")
	// ErrUnknownAction is returned by Choose for actions the controller does not own
	// or that the current overlay does not offer.
	ErrUnknownAction = errors.New("unknown action")
	// ErrUnknownProgression is returned by ParseProgression for unrecognized policy names.
	ErrUnknownProgression = errors.New("unknown progression")
)

// InsufficientAssetsError means a level needs more distinct images than the pool holds.
// It is fatal to board generation and surfaces before any round starts.
type InsufficientAssetsError struct {
	Level     int
	Needed    int // distinct images required (pairs)
	Available int // distinct images in the pool
}

func (e *InsufficientAssetsError) Error() string {
	return fmt.Sprintf("level %d needs %d distinct images, pool has %d", e.Level, e.Needed, e.Available)
}
