// Package schedule decides when chart notes have to appear on screen.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"git.lost.host/meutraa/notefall/internal/game"
	"git.lost.host/meutraa/notefall/internal/logger"
)

var ErrConfig = errors.New("invalid schedule config")

type Config struct {
	Lookahead    time.Duration // Spawn this far ahead of the clock
	Slack        time.Duration // How late a spawn may still happen
	PollInterval time.Duration // Minimum clock advance between evaluations
}

func DefaultConfig() Config {
	return Config{
		Lookahead:    100 * time.Millisecond,
		Slack:        50 * time.Millisecond,
		PollInterval: 50 * time.Millisecond,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Lookahead <= 0:
		return fmt.Errorf("%w: lookahead %v must be positive", ErrConfig, c.Lookahead)
	case c.Slack < 0:
		return fmt.Errorf("%w: slack %v must not be negative", ErrConfig, c.Slack)
	case c.PollInterval <= 0:
		return fmt.Errorf("%w: poll interval %v must be positive", ErrConfig, c.PollInterval)
	case c.PollInterval > c.Lookahead:
		return fmt.Errorf("%w: poll interval %v exceeds lookahead %v", ErrConfig, c.PollInterval, c.Lookahead)
	}
	return nil
}

// Spawn asks for a chart note to be put on screen.
type Spawn struct {
	Index  int
	Lane   game.Lane
	Travel time.Duration
	Target time.Duration
}

// Cursor is the scan position over a loaded chart. Every index below Next
// has been emitted or dropped, so nothing is emitted twice per load.
type Cursor struct {
	Next      int
	Scheduled int
	Dropped   int
}

type Scheduler struct {
	config Config
	logger *zap.Logger

	chart    *game.Chart
	cursor   Cursor
	running  bool
	polled   bool
	lastPoll time.Duration
}

func New(config Config, log *zap.Logger) (*Scheduler, error) {
	if err := config.Validate(); nil != err {
		return nil, err
	}
	return &Scheduler{config: config, logger: logger.OrNop(log)}, nil
}

// Load attaches a chart and clears the cursor. The scheduler is left stopped.
func (s *Scheduler) Load(chart *game.Chart) {
	s.Reset()
	s.chart = chart
}

// Start resumes polling from the current cursor.
func (s *Scheduler) Start() {
	s.running = true
	s.polled = false
}

// Stop halts polling and keeps the cursor.
func (s *Scheduler) Stop() {
	s.running = false
}

// Reset halts polling and rewinds the cursor to the first note.
func (s *Scheduler) Reset() {
	s.running = false
	s.polled = false
	s.cursor = Cursor{}
}

func (s *Scheduler) Running() bool {
	return s.running
}

func (s *Scheduler) Cursor() Cursor {
	return s.cursor
}

// Done reports whether every note has been emitted or dropped.
func (s *Scheduler) Done() bool {
	return s.chart == nil || s.cursor.Next >= len(s.chart.Notes)
}

// Poll returns the notes whose spawn instant has arrived at now, in chart
// order. Calls closer together than the poll interval evaluate nothing.
func (s *Scheduler) Poll(now time.Duration) []Spawn {
	if !s.running || s.chart == nil {
		return nil
	}
	if s.polled && now-s.lastPoll < s.config.PollInterval && now >= s.lastPoll {
		return nil
	}
	s.polled = true
	s.lastPoll = now

	var spawns []Spawn
	horizon := now + s.config.Lookahead
	for ; s.cursor.Next < len(s.chart.Notes); s.cursor.Next++ {
		i := s.cursor.Next
		at := s.chart.SpawnAt(i)
		// Lead-in notes spawn at track start with a shortened travel
		if at < 0 {
			at = 0
		}
		if at > horizon {
			break
		}
		note := s.chart.Notes[i]
		if late := now - at; late > s.config.Slack {
			s.cursor.Dropped++
			s.logger.Debug("dropped late note",
				zap.Int("index", i),
				zap.Stringer("lane", note.Lane),
				zap.Duration("late", late),
			)
			continue
		}
		s.cursor.Scheduled++
		spawns = append(spawns, Spawn{
			Index:  i,
			Lane:   note.Lane,
			Travel: s.chart.NoteSpeed,
			Target: note.Time,
		})
	}
	return spawns
}
