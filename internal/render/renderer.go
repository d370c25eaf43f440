package render

import (
	"time"

	"git.lost.host/meutraa/notefall/internal/game"
)

// Handle is an opaque reference to a note on screen.
type Handle uint64

// Presenter is everything the engine asks of the display. It never reads
// presentation state back.
type Presenter interface {
	// Spawn shows a note in lane reaching the judgement line after duration.
	Spawn(lane game.Lane, duration time.Duration) Handle
	Release(h Handle)
	ShowJudgment(grade game.Grade, h Handle)
}

type Renderer interface {
	Presenter
	Init() error
	Deinit() error
	RenderLoop(delay time.Duration, frame func(duration time.Duration) bool)
	Status(lines []string)
}

// Nop discards everything, for headless sessions.
type Nop struct {
	next Handle
}

func (n *Nop) Spawn(game.Lane, time.Duration) Handle {
	n.next++
	return n.next
}

func (n *Nop) Release(Handle)                  {}
func (n *Nop) ShowJudgment(game.Grade, Handle) {}
