package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"git.lost.host/meutraa/notefall/internal/audio"
	"git.lost.host/meutraa/notefall/internal/clock"
	"git.lost.host/meutraa/notefall/internal/config"
	"git.lost.host/meutraa/notefall/internal/game"
	"git.lost.host/meutraa/notefall/internal/input"
	"git.lost.host/meutraa/notefall/internal/logger"
	"git.lost.host/meutraa/notefall/internal/parser"
	"git.lost.host/meutraa/notefall/internal/render"
	"git.lost.host/meutraa/notefall/internal/session"
	"git.lost.host/meutraa/notefall/internal/theme"
)

// How long the last judgement stays on screen before exiting
const outro = 2 * time.Second

type Program struct {
	Config *config.Config
	Logger *zap.Logger
	Parser parser.Parser

	Session  *session.Session
	Renderer *render.DefaultRenderer

	chart    *game.Chart
	clock    clock.Clock
	audio    *audio.Clock
	keyboard *input.Keyboard

	started    bool
	finishedAt time.Time
}

func (p *Program) Init() error {
	var err error
	p.Logger, err = logger.New(p.Config.Log)
	if nil != err {
		return err
	}

	p.Parser, err = parser.ForFile(p.Config.Chart, p.Config.NoteSpeed)
	if nil != err {
		return err
	}
	charts, err := p.Parser.Parse(p.Config.Chart)
	if nil != err {
		return err
	}
	if p.Config.Difficulty < 0 || p.Config.Difficulty >= len(charts) {
		return fmt.Errorf("difficulty %v out of range, %v charts in %v", p.Config.Difficulty, len(charts), p.Config.Chart)
	}
	p.chart = charts[p.Config.Difficulty]

	if err := p.openClock(); nil != err {
		return err
	}

	var presenter render.Presenter = &render.Nop{}
	if !p.Config.Headless {
		p.Renderer = render.NewDefaultRenderer(p.clock, &theme.DefaultTheme{}, os.Stdout, p.Config.FramePeriod)
		presenter = p.Renderer
	}

	p.Session, err = session.New(p.Config.Session, p.clock, presenter, p.Logger)
	if nil != err {
		return err
	}
	return p.Session.Load(p.chart)
}

// openClock follows the audio track when there is one, and a wall clock
// otherwise.
func (p *Program) openClock() error {
	var audioFile string
	if !p.Config.Headless {
		audioFile = p.Config.Audio
		if audioFile == "" {
			audioFile = findAudio(filepath.Dir(p.Config.Chart), p.chart.Audio)
		}
	}
	if audioFile == "" {
		p.Logger.Info("no audio, using a wall clock")
		p.clock = clock.NewStopwatch()
		return nil
	}

	p.Logger.Info("opening audio", zap.String("file", audioFile), zap.String("chart", p.Config.Chart))
	a, err := audio.Open(audioFile, p.Logger)
	if nil != err {
		return err
	}
	p.audio = a
	if err := a.Start(); nil != err {
		return err
	}
	p.clock = a
	return nil
}

// findAudio resolves the chart's own reference, falling back to the first
// audio file next to the chart.
func findAudio(dir, ref string) string {
	if ref != "" {
		file := filepath.Join(dir, ref)
		if _, err := os.Stat(file); nil == err {
			return file
		}
	}
	var found string
	filepath.Walk(dir, func(file string, info os.FileInfo, err error) error {
		if nil != err || found != "" {
			return nil
		}
		switch filepath.Ext(info.Name()) {
		case ".ogg", ".mp3", ".wav":
			found = file
		}
		return nil
	})
	return found
}

func (p *Program) Run() error {
	if p.Config.Headless {
		return p.runHeadless()
	}

	var err error
	p.keyboard, err = input.OpenKeyboard(input.DefaultKeyMap(), p.Logger)
	if nil != err {
		return fmt.Errorf("unable to open keyboard: %w", err)
	}
	if err := p.Renderer.Init(); nil != err {
		return err
	}
	defer func() {
		// Restore the terminal state
		if err := p.Renderer.Deinit(); nil != err {
			p.Logger.Warn("unable to restore terminal", zap.Error(err))
		}
	}()

	var runErr error
	p.Renderer.RenderLoop(p.Config.Delay, func(elapsed time.Duration) bool {
		cont, err := p.Update(elapsed)
		if nil != err {
			runErr = err
			return false
		}
		return cont
	})
	return runErr
}

// Update handles one frame of input and timing. It reports false once the
// player quits or the chart is over.
func (p *Program) Update(elapsed time.Duration) (bool, error) {
	if !p.started && elapsed >= 0 {
		p.started = true
		if err := p.Session.Play(); nil != err {
			return false, err
		}
	}

	for _, ev := range p.keyboard.Drain() {
		switch ev.Kind {
		case input.Quit:
			return false, nil
		case input.TogglePlay:
			if err := p.Session.TogglePlayPause(); nil != err {
				return false, err
			}
		case input.Reset:
			p.Session.Reset()
			p.finishedAt = time.Time{}
			p.started = true
			if err := p.Session.Play(); nil != err {
				return false, err
			}
		case input.LanePress:
			p.Renderer.Press(ev.Lane)
			p.Session.LaneActivate(ev.Lane)
		}
	}

	p.Session.Tick()
	p.Renderer.Status(p.statusLines())
	return !p.over(), nil
}

func (p *Program) over() bool {
	if !p.Session.Finished() {
		return false
	}
	if p.finishedAt.IsZero() {
		p.finishedAt = time.Now()
	}
	return time.Since(p.finishedAt) > outro
}

func (p *Program) runHeadless() error {
	if err := p.Session.Play(); nil != err {
		return err
	}
	deadline := time.Now().Add(p.chart.Duration() + p.Config.Session.MissGrace + p.chart.NoteSpeed + time.Second)
	for !p.Session.Finished() {
		if time.Now().After(deadline) {
			return errors.New("session did not finish")
		}
		p.Session.Tick()
		time.Sleep(p.Config.FramePeriod)
	}
	return nil
}

func (p *Program) statusLines() []string {
	tally := p.Session.Score()
	stats := p.Session.Stats()
	return []string{
		fmt.Sprintf("%v - %v %v", p.chart.Artist, p.chart.Title, p.chart.Difficulty),
		fmt.Sprintf("      State:  %v", p.Session.State()),
		fmt.Sprintf("    Perfect:  %6v", tally.Perfect),
		fmt.Sprintf("         Ok:  %6v", tally.Ok),
		fmt.Sprintf("       Miss:  %6v", tally.Miss),
		fmt.Sprintf("   Accuracy:  %6.2f%%", tally.Accuracy()),
		fmt.Sprintf("       Mean:  %6.2f ms", float64(stats.Mean)/float64(time.Millisecond)),
		fmt.Sprintf("      Stdev:  %6.2f ms", float64(stats.Stdev)/float64(time.Millisecond)),
		fmt.Sprintf("    Dropped:  %6v", p.Session.Dropped()),
	}
}

func (p *Program) Summary() string {
	tally := p.Session.Score()
	return fmt.Sprintf("perfect %v  ok %v  miss %v  accuracy %.2f%%",
		tally.Perfect, tally.Ok, tally.Miss, tally.Accuracy())
}

func (p *Program) Close() {
	if nil != p.keyboard {
		if err := p.keyboard.Close(); nil != err && nil != p.Logger {
			p.Logger.Warn("unable to close keyboard", zap.Error(err))
		}
	}
	if nil != p.audio {
		p.audio.Close()
	}
	if nil != p.Logger {
		p.Logger.Sync()
	}
}
