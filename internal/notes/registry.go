// Package notes tracks notes that are on screen and waiting to be judged.
package notes

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"git.lost.host/meutraa/notefall/internal/game"
	"git.lost.host/meutraa/notefall/internal/logger"
	"git.lost.host/meutraa/notefall/internal/render"
	"git.lost.host/meutraa/notefall/internal/timer"
)

type ActiveNote struct {
	ID     uuid.UUID
	Lane   game.Lane
	Target time.Duration // The time the note should be hit
	Handle render.Handle

	// This is state
	judged  bool
	removed bool
	expiry  *timer.Countdown
}

func (n *ActiveNote) Judged() bool {
	return n.judged
}

// MarkJudged flips judged and reports whether this call did it. Only the
// caller that gets true may score the note.
func (n *ActiveNote) MarkJudged() bool {
	if n.judged {
		return false
	}
	n.judged = true
	return true
}

// Registry owns every ActiveNote from spawn until removal.
type Registry struct {
	group     *timer.Group
	presenter render.Presenter
	grace     time.Duration
	onExpire  func(*ActiveNote)
	logger    *zap.Logger

	lanes [len(game.Lanes)][]*ActiveNote // ordered by spawn
	count int
}

// New builds a registry whose notes expire grace after their target time.
// onExpire is called for notes that expire unjudged, before they are removed.
func New(group *timer.Group, presenter render.Presenter, grace time.Duration, onExpire func(*ActiveNote), log *zap.Logger) *Registry {
	return &Registry{
		group:     group,
		presenter: presenter,
		grace:     grace,
		onExpire:  onExpire,
		logger:    logger.OrNop(log),
	}
}

// Spawn creates a note at clock position now. The presenter is given the
// time left until the judgement line, which is travel unless the scheduler
// spawned it early or late.
func (r *Registry) Spawn(now time.Duration, lane game.Lane, travel, target time.Duration) *ActiveNote {
	left := target - now
	if left < 0 {
		left = 0
	}
	n := &ActiveNote{
		ID:     uuid.New(),
		Lane:   lane,
		Target: target,
		Handle: r.presenter.Spawn(lane, left),
	}
	n.expiry = r.group.Start(left+r.grace, func() { r.expire(n) })
	r.lanes[lane] = append(r.lanes[lane], n)
	r.count++

	r.logger.Debug("spawned note",
		zap.Stringer("lane", lane),
		zap.Duration("target", target),
		zap.Duration("now", now),
		zap.Duration("lead", left-travel),
	)
	return n
}

func (r *Registry) expire(n *ActiveNote) {
	if n.MarkJudged() && r.onExpire != nil {
		r.onExpire(n)
	}
	r.Remove(n)
}

// FindBestMatch returns the unjudged note in lane closest to observed and
// strictly inside window, preferring the earlier target on ties.
func (r *Registry) FindBestMatch(lane game.Lane, observed, window time.Duration) *ActiveNote {
	if !lane.Valid() {
		return nil
	}
	var best *ActiveNote
	bestDistance := window
	for _, n := range r.lanes[lane] {
		if n.judged {
			continue
		}
		d := game.Abs(game.Distance(n.Target, observed))
		if d >= window {
			continue
		}
		if best == nil || d < bestDistance || (d == bestDistance && n.Target < best.Target) {
			best = n
			bestDistance = d
		}
	}
	return best
}

// Remove releases the note's handle and forgets it. Removing twice is a no-op.
func (r *Registry) Remove(n *ActiveNote) {
	if n == nil || n.removed {
		return
	}
	n.removed = true
	n.expiry.Stop()
	r.presenter.Release(n.Handle)

	notes := r.lanes[n.Lane]
	for i, o := range notes {
		if o == n {
			r.lanes[n.Lane] = append(notes[:i:i], notes[i+1:]...)
			break
		}
	}
	r.count--
}

// Clear removes every note without judging it.
func (r *Registry) Clear() {
	for _, n := range r.Active() {
		r.Remove(n)
	}
}

// Advance fires the expiry of every note that is due at now.
func (r *Registry) Advance(now time.Duration) {
	r.group.Advance(now)
}

func (r *Registry) Pause(now time.Duration) {
	r.group.Pause(now)
}

func (r *Registry) Resume(now time.Duration) {
	r.group.Resume(now)
}

func (r *Registry) Len() int {
	return r.count
}

// Active returns a snapshot of the live notes ordered by target time.
func (r *Registry) Active() []*ActiveNote {
	active := make([]*ActiveNote, 0, r.count)
	for _, notes := range r.lanes {
		active = append(active, notes...)
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Target < active[j].Target
	})
	return active
}
