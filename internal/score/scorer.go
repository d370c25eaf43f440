package score

import (
	"time"

	"git.lost.host/meutraa/notefall/internal/game"
	"git.lost.host/meutraa/notefall/internal/notes"
)

// Registry is the part of the note registry judging needs.
type Registry interface {
	FindBestMatch(lane game.Lane, observed, window time.Duration) *notes.ActiveNote
	Remove(note *notes.ActiveNote)
}

type Scorer interface {
	// ApplyInput judges a lane press against the closest pending note. It
	// reports false for a whiff, which changes nothing.
	ApplyInput(reg Registry, lane game.Lane, observed time.Duration) (Result, bool)

	// Miss scores a note that expired unjudged
	Miss(note *notes.ActiveNote) Result

	Tally() Tally
	Stats() Stats
	Reset()
}

type Result struct {
	Note   *notes.ActiveNote
	Grade  game.Grade
	Offset time.Duration // Signed hit error, positive when late. Zero for misses
}

// Tally counts judgements per grade for one session.
type Tally struct {
	Perfect int
	Ok      int
	Miss    int
}

func (t *Tally) Add(g game.Grade) {
	switch g {
	case game.Perfect:
		t.Perfect++
	case game.Ok:
		t.Ok++
	case game.Miss:
		t.Miss++
	}
}

func (t Tally) Count(g game.Grade) int {
	switch g {
	case game.Perfect:
		return t.Perfect
	case game.Ok:
		return t.Ok
	case game.Miss:
		return t.Miss
	}
	return 0
}

func (t Tally) Total() int {
	return t.Perfect + t.Ok + t.Miss
}

// Accuracy is a percentage where an ok is worth half a perfect.
func (t Tally) Accuracy() float64 {
	if t.Total() == 0 {
		return 100
	}
	return 100 * (float64(t.Perfect) + float64(t.Ok)/2) / float64(t.Total())
}
