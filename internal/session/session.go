// Package session composes the scheduler, note registry and scorer into a
// playable session driven by a playback clock.
package session

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"git.lost.host/meutraa/notefall/internal/clock"
	"git.lost.host/meutraa/notefall/internal/game"
	"git.lost.host/meutraa/notefall/internal/logger"
	"git.lost.host/meutraa/notefall/internal/notes"
	"git.lost.host/meutraa/notefall/internal/render"
	"git.lost.host/meutraa/notefall/internal/schedule"
	"git.lost.host/meutraa/notefall/internal/score"
	"git.lost.host/meutraa/notefall/internal/timer"
)

var (
	ErrNoChart = errors.New("no chart loaded")
	ErrNotIdle = errors.New("session is not idle")
	ErrConfig  = errors.New("invalid session config")
)

type State uint8

const (
	Idle State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

type Config struct {
	Windows game.Windows
	// MissGrace is how long after its target time a note expires as a
	// miss. It must cover the widest window.
	MissGrace time.Duration
	Schedule  schedule.Config
}

func DefaultConfig() Config {
	windows := game.NewWindows(150*time.Millisecond, 220*time.Millisecond)
	return Config{
		Windows:   windows,
		MissGrace: windows.Widest(),
		Schedule:  schedule.DefaultConfig(),
	}
}

func (c Config) Validate() error {
	if err := c.Windows.Validate(); nil != err {
		return err
	}
	if c.MissGrace < c.Windows.Widest() {
		return fmt.Errorf("%w: miss grace %v is shorter than the widest window %v", ErrConfig, c.MissGrace, c.Windows.Widest())
	}
	return c.Schedule.Validate()
}

// Session must be driven from a single goroutine.
type Session struct {
	clock     clock.Clock
	presenter render.Presenter
	logger    *zap.Logger

	scheduler *schedule.Scheduler
	registry  *notes.Registry
	scorer    score.Scorer

	chart *game.Chart
	state State

	// OnJudgement observes every judgement after it is scored
	OnJudgement func(score.Result)
}

func New(config Config, clk clock.Clock, presenter render.Presenter, log *zap.Logger) (*Session, error) {
	if err := config.Validate(); nil != err {
		return nil, err
	}
	log = logger.OrNop(log)
	scheduler, err := schedule.New(config.Schedule, log.Named("schedule"))
	if nil != err {
		return nil, err
	}
	s := &Session{
		clock:     clk,
		presenter: presenter,
		logger:    log,
		scheduler: scheduler,
		scorer:    score.NewDefaultScorer(config.Windows, log.Named("score")),
	}
	s.registry = notes.New(timer.NewGroup(), presenter, config.MissGrace, s.expire, log.Named("notes"))
	return s, nil
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Chart() *game.Chart {
	return s.chart
}

// Load validates and attaches a chart. A rejected chart leaves the session
// as it was.
func (s *Session) Load(chart *game.Chart) error {
	if s.state != Idle {
		return ErrNotIdle
	}
	if nil == chart {
		return ErrNoChart
	}
	if err := chart.Validate(); nil != err {
		s.logger.Warn("rejected chart", zap.String("title", chart.Title), zap.Error(err))
		return fmt.Errorf("unable to load chart: %w", err)
	}
	s.chart = chart
	s.scheduler.Load(chart)
	s.logger.Info("loaded chart",
		zap.String("title", chart.Title),
		zap.String("artist", chart.Artist),
		zap.Int("notes", len(chart.Notes)),
		zap.Duration("note_speed", chart.NoteSpeed),
	)
	return nil
}

func (s *Session) Play() error {
	if nil == s.chart {
		return ErrNoChart
	}
	if s.state == Playing {
		return nil
	}
	s.clock.Play()
	now := s.clock.Now()
	s.registry.Resume(now)
	s.scheduler.Start()
	s.state = Playing
	s.logger.Info("playing", zap.Duration("position", now))
	s.Tick()
	return nil
}

func (s *Session) Pause() {
	if s.state != Playing {
		return
	}
	now := s.clock.Now()
	s.clock.Pause()
	s.registry.Pause(now)
	s.scheduler.Stop()
	s.state = Paused
	s.logger.Info("paused", zap.Duration("position", now))
}

func (s *Session) TogglePlayPause() error {
	if s.state == Playing {
		s.Pause()
		return nil
	}
	return s.Play()
}

// Reset discards active notes unjudged, zeroes the score and rewinds to
// the start of the chart.
func (s *Session) Reset() {
	if s.state == Idle {
		return
	}
	s.Pause()
	s.clock.Rewind()
	s.registry.Clear()
	s.scheduler.Reset()
	s.scorer.Reset()
	s.state = Idle
	s.logger.Info("reset")
}

// Tick moves the session to the current clock position: due notes expire,
// then the scheduler spawns anything that has come into view.
func (s *Session) Tick() {
	if s.state != Playing {
		return
	}
	now := s.clock.Now()
	s.registry.Advance(now)
	for _, spawn := range s.scheduler.Poll(now) {
		s.registry.Spawn(now, spawn.Lane, spawn.Travel, spawn.Target)
	}
}

func (s *Session) LaneActivate(lane game.Lane) {
	if s.state != Playing {
		return
	}
	now := s.clock.Now()
	// Anything already past its expiry can not be hit
	s.registry.Advance(now)

	result, hit := s.scorer.ApplyInput(s.registry, lane, now)
	if !hit {
		s.logger.Debug("whiff", zap.Stringer("lane", lane), zap.Duration("position", now))
		return
	}
	s.publish(result)
}

func (s *Session) LaneDeactivate(lane game.Lane) {
	s.logger.Debug("lane released", zap.Stringer("lane", lane), zap.Stringer("state", s.state))
}

func (s *Session) expire(note *notes.ActiveNote) {
	s.publish(s.scorer.Miss(note))
}

func (s *Session) publish(result score.Result) {
	s.presenter.ShowJudgment(result.Grade, result.Note.Handle)
	// No-op when the registry is already removing it after an expiry
	s.registry.Remove(result.Note)
	if nil != s.OnJudgement {
		s.OnJudgement(result)
	}
}

func (s *Session) Score() score.Tally {
	return s.scorer.Tally()
}

func (s *Session) Stats() score.Stats {
	return s.scorer.Stats()
}

// Dropped counts notes the scheduler saw too late to show. They are never
// judged.
func (s *Session) Dropped() int {
	return s.scheduler.Cursor().Dropped
}

func (s *Session) Active() []*notes.ActiveNote {
	return s.registry.Active()
}

// Finished reports whether every note has been scheduled and resolved.
func (s *Session) Finished() bool {
	return s.chart != nil && s.scheduler.Done() && s.registry.Len() == 0
}
