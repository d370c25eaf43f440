// Package clock provides the playback position the engine synchronises to.
package clock

import "time"

// Clock is a playback position measured from track start. It only advances
// while playing.
type Clock interface {
	Now() time.Duration
	Play()
	Pause()
	// Rewind seeks back to the track start without changing play state.
	Rewind()
}

// Stopwatch is a wall clock driven Clock, used when there is no audio track
// to follow.
type Stopwatch struct {
	now     func() time.Time
	started time.Time     // Wall time the current run started, zero while paused
	elapsed time.Duration // Position accumulated by previous runs
}

func NewStopwatch() *Stopwatch {
	return &Stopwatch{now: time.Now}
}

func (s *Stopwatch) Now() time.Duration {
	if s.started.IsZero() {
		return s.elapsed
	}
	return s.elapsed + s.now().Sub(s.started)
}

func (s *Stopwatch) Play() {
	if s.started.IsZero() {
		s.started = s.now()
	}
}

func (s *Stopwatch) Pause() {
	if s.started.IsZero() {
		return
	}
	s.elapsed += s.now().Sub(s.started)
	s.started = time.Time{}
}

func (s *Stopwatch) Rewind() {
	s.elapsed = 0
	if !s.started.IsZero() {
		s.started = s.now()
	}
}

func (s *Stopwatch) Playing() bool {
	return !s.started.IsZero()
}

// Manual is a simulated Clock for tests and headless runs.
type Manual struct {
	position time.Duration
	playing  bool
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) Now() time.Duration { return m.position }
func (m *Manual) Play()              { m.playing = true }
func (m *Manual) Pause()             { m.playing = false }
func (m *Manual) Rewind()            { m.position = 0 }
func (m *Manual) Playing() bool      { return m.playing }

// Advance moves the position forward, but only while playing.
func (m *Manual) Advance(d time.Duration) {
	if m.playing && d > 0 {
		m.position += d
	}
}

// Set jumps to a position regardless of play state.
func (m *Manual) Set(p time.Duration) {
	m.position = p
}
