package score

import (
	"math"
	"time"

	"go.uber.org/zap"

	"git.lost.host/meutraa/notefall/internal/game"
	"git.lost.host/meutraa/notefall/internal/logger"
	"git.lost.host/meutraa/notefall/internal/notes"
)

type DefaultScorer struct {
	windows game.Windows
	logger  *zap.Logger

	tally   Tally
	offsets []time.Duration
}

func NewDefaultScorer(windows game.Windows, log *zap.Logger) *DefaultScorer {
	return &DefaultScorer{windows: windows, logger: logger.OrNop(log)}
}

func (s *DefaultScorer) ApplyInput(reg Registry, lane game.Lane, observed time.Duration) (Result, bool) {
	note := reg.FindBestMatch(lane, observed, s.windows.Widest())
	if nil == note {
		return Result{}, false
	}
	offset := game.Distance(note.Target, observed)
	grade, ok := s.windows.Judge(offset)
	if !ok || !note.MarkJudged() {
		return Result{}, false
	}

	s.tally.Add(grade)
	s.offsets = append(s.offsets, offset)
	s.logger.Debug("judged hit",
		zap.Stringer("lane", lane),
		zap.Stringer("grade", grade),
		zap.Duration("offset", offset),
	)
	return Result{Note: note, Grade: grade, Offset: offset}, true
}

func (s *DefaultScorer) Miss(note *notes.ActiveNote) Result {
	s.tally.Add(game.Miss)
	s.logger.Debug("judged miss",
		zap.Stringer("lane", note.Lane),
		zap.Duration("target", note.Target),
	)
	return Result{Note: note, Grade: game.Miss}
}

func (s *DefaultScorer) Tally() Tally {
	return s.tally
}

func (s *DefaultScorer) Reset() {
	s.tally = Tally{}
	s.offsets = s.offsets[:0]
}

// Stats summarises the hit errors of the session.
type Stats struct {
	Hits       int
	TotalError time.Duration // Sum of absolute errors
	Mean       time.Duration // Mean signed error, positive when late
	Stdev      time.Duration
}

func (s *DefaultScorer) Stats() Stats {
	stats := Stats{Hits: len(s.offsets)}
	if stats.Hits == 0 {
		return stats
	}
	var sum float64
	for _, o := range s.offsets {
		stats.TotalError += game.Abs(o)
		sum += float64(o)
	}
	mean := sum / float64(stats.Hits)
	stats.Mean = time.Duration(math.Round(mean))
	if stats.Hits > 1 {
		var variance float64
		for _, o := range s.offsets {
			xi := float64(o) - mean
			variance += xi * xi
		}
		variance /= float64(stats.Hits - 1)
		stats.Stdev = time.Duration(math.Round(math.Sqrt(variance)))
	}
	return stats
}
