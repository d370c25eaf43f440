package game

import (
	"errors"
	"fmt"
	"time"
)

var ErrWindows = errors.New("judgement windows must be positive and ascending")

type Grade uint8

const (
	Perfect Grade = iota
	Ok
	Miss
)

// Grades in order of accuracy, best first
var Grades = [...]Grade{Perfect, Ok, Miss}

func (g Grade) String() string {
	switch g {
	case Perfect:
		return "perfect"
	case Ok:
		return "ok"
	case Miss:
		return "miss"
	}
	return fmt.Sprintf("grade(%d)", uint8(g))
}

type Judgement struct {
	Grade  Grade
	Window time.Duration // Inclusive upper bound of the absolute distance
}

// Windows is the hit table, tightest window first. Anything outside the
// last window is not a hit at all.
type Windows []Judgement

func NewWindows(perfect, ok time.Duration) Windows {
	return Windows{
		{Grade: Perfect, Window: perfect},
		{Grade: Ok, Window: ok},
	}
}

func (w Windows) Validate() error {
	if len(w) == 0 {
		return ErrWindows
	}
	for i, j := range w {
		if j.Window <= 0 || (i > 0 && j.Window <= w[i-1].Window) {
			return fmt.Errorf("%w: %v", ErrWindows, j.Window)
		}
	}
	return nil
}

// Widest returns the outermost window, beyond which an input finds no note.
func (w Windows) Widest() time.Duration {
	if len(w) == 0 {
		return 0
	}
	return w[len(w)-1].Window
}

// Judge maps a distance to a grade. The second value is false when the
// distance is outside every window, which is a whiff and never a miss.
func (w Windows) Judge(d time.Duration) (Grade, bool) {
	d = Abs(d)
	for _, j := range w {
		if d <= j.Window {
			return j.Grade, true
		}
	}
	return Miss, false
}

// Distance is the signed error of a hit, positive when late.
func Distance(target, observed time.Duration) time.Duration {
	return observed - target
}

func Abs(x time.Duration) time.Duration {
	if x < 0 {
		return -x
	}
	return x
}
