// Package timer holds countdowns that run on playback time rather than wall
// time, so pausing the clock pauses every countdown with it.
package timer

import (
	"sort"
	"time"
)

type Countdown struct {
	group     *Group
	seq       uint64
	remaining time.Duration
	fire      func()
	live      bool
}

// Remaining is the budget left before the countdown fires.
func (c *Countdown) Remaining() time.Duration {
	return c.remaining
}

// Stop prevents the countdown from firing. It reports whether the countdown
// was still live.
func (c *Countdown) Stop() bool {
	if !c.live {
		return false
	}
	c.live = false
	delete(c.group.live, c.seq)
	return true
}

// Group advances its countdowns from clock positions handed to Advance.
// A new Group is paused.
type Group struct {
	live    map[uint64]*Countdown
	seq     uint64
	last    time.Duration
	running bool
}

func NewGroup() *Group {
	return &Group{live: map[uint64]*Countdown{}}
}

func (g *Group) Start(budget time.Duration, fire func()) *Countdown {
	g.seq++
	c := &Countdown{
		group:     g,
		seq:       g.seq,
		remaining: budget,
		fire:      fire,
		live:      true,
	}
	g.live[c.seq] = c
	return c
}

func (g *Group) Len() int {
	return len(g.live)
}

func (g *Group) Running() bool {
	return g.running
}

// Resume rebaselines at now, so time spent paused is never charged.
func (g *Group) Resume(now time.Duration) {
	g.last = now
	g.running = true
}

// Pause charges elapsed time up to now, firing anything due, then freezes.
func (g *Group) Pause(now time.Duration) {
	g.Advance(now)
	g.running = false
}

// Advance charges now - last against every countdown and fires those that
// reach zero, earliest deadline first. A clock that moved backwards charges
// nothing.
func (g *Group) Advance(now time.Duration) {
	if !g.running {
		return
	}
	delta := now - g.last
	g.last = now
	if delta <= 0 {
		if len(g.live) == 0 {
			return
		}
		delta = 0
	}

	var due []*Countdown
	for _, c := range g.live {
		c.remaining -= delta
		if c.remaining <= 0 {
			due = append(due, c)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].remaining != due[j].remaining {
			return due[i].remaining < due[j].remaining
		}
		return due[i].seq < due[j].seq
	})
	for _, c := range due {
		// An earlier callback may have stopped it
		if c.Stop() {
			c.fire()
		}
	}
}

// Clear stops every countdown without firing.
func (g *Group) Clear() {
	for _, c := range g.live {
		c.live = false
	}
	g.live = map[uint64]*Countdown{}
}
