// Package rendertest provides a Presenter that records calls for assertions.
package rendertest

import (
	"time"

	"git.lost.host/meutraa/notefall/internal/game"
	"git.lost.host/meutraa/notefall/internal/render"
)

type Spawned struct {
	Handle   render.Handle
	Lane     game.Lane
	Duration time.Duration
}

type Shown struct {
	Grade  game.Grade
	Handle render.Handle
}

type Recorder struct {
	Spawned  []Spawned
	Released []render.Handle
	Shown    []Shown

	next render.Handle
}

func (r *Recorder) Spawn(lane game.Lane, duration time.Duration) render.Handle {
	r.next++
	r.Spawned = append(r.Spawned, Spawned{Handle: r.next, Lane: lane, Duration: duration})
	return r.next
}

func (r *Recorder) Release(h render.Handle) {
	r.Released = append(r.Released, h)
}

func (r *Recorder) ShowJudgment(grade game.Grade, h render.Handle) {
	r.Shown = append(r.Shown, Shown{Grade: grade, Handle: h})
}

// Grades returns the shown judgements in order.
func (r *Recorder) Grades() []game.Grade {
	grades := make([]game.Grade, 0, len(r.Shown))
	for _, s := range r.Shown {
		grades = append(grades, s.Grade)
	}
	return grades
}
