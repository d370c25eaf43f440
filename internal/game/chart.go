package game

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoteSpeed    = errors.New("note speed must be positive")
	ErrUnordered    = errors.New("notes are not ordered by time")
	ErrNegativeTime = errors.New("note time is negative")
)

// Chart is immutable once loaded. Notes are sorted ascending by Time.
type Chart struct {
	Title  string
	Artist string
	Audio  string // Audio asset reference, relative to the chart file

	Difficulty string

	NoteSpeed time.Duration // Travel time from spawn to the judgement line
	Notes     []ChartNote
}

func (c *Chart) Validate() error {
	if c.NoteSpeed <= 0 {
		return fmt.Errorf("%w: %v", ErrNoteSpeed, c.NoteSpeed)
	}
	for i, n := range c.Notes {
		if !n.Lane.Valid() {
			return fmt.Errorf("note %v: %w: %v", i, ErrUnknownLane, n.Lane)
		}
		if n.Time < 0 {
			return fmt.Errorf("note %v: %w: %v", i, ErrNegativeTime, n.Time)
		}
		if i > 0 && n.Time < c.Notes[i-1].Time {
			return fmt.Errorf("note %v: %w: %v after %v", i, ErrUnordered, n.Time, c.Notes[i-1].Time)
		}
	}
	return nil
}

// SpawnAt is the instant note i has to appear so its travel ends on time.
// It is negative for notes closer to the track start than NoteSpeed.
func (c *Chart) SpawnAt(i int) time.Duration {
	return c.Notes[i].Time - c.NoteSpeed
}

func (c *Chart) Duration() time.Duration {
	if len(c.Notes) == 0 {
		return 0
	}
	return c.Notes[len(c.Notes)-1].Time
}

func (c *Chart) LaneCounts() [len(Lanes)]int {
	var counts [len(Lanes)]int
	for _, n := range c.Notes {
		counts[n.Lane]++
	}
	return counts
}
