// Package config reads command line flags. Every flag can also be set from
// the environment or a .env file in the working directory.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/alecthomas/kingpin.v2"

	"git.lost.host/meutraa/notefall/internal/game"
	"git.lost.host/meutraa/notefall/internal/logger"
	"git.lost.host/meutraa/notefall/internal/session"
)

const Version = "0.3.0"

type Config struct {
	Chart      string
	Audio      string // Overrides the chart's own audio reference
	Difficulty int
	NoteSpeed  time.Duration // For chart formats without one

	Session session.Config

	FramePeriod time.Duration
	Delay       time.Duration
	Headless    bool

	Log logger.Config
}

// LoadEnv reads .env files without overriding variables already set. A
// missing file is not an error.
func LoadEnv(files ...string) {
	_ = godotenv.Load(files...)
}

// Parse reads args, not including the program name.
func Parse(args []string) (*Config, error) {
	app := kingpin.New("notefall", "Lane based rhythm game in the terminal.")
	app.Version(Version)

	c := &Config{}
	var perfect, ok, grace time.Duration
	var logLevel string
	defaults := session.DefaultConfig()

	app.Arg("chart", "Chart file (.json or .sm)").Required().ExistingFileVar(&c.Chart)
	app.Flag("audio", "Audio file, overrides the chart").Short('a').Envar("NOTEFALL_AUDIO").ExistingFileVar(&c.Audio)
	app.Flag("difficulty", "Chart index for files with several charts").Short('D').Default("0").Envar("NOTEFALL_DIFFICULTY").IntVar(&c.Difficulty)
	app.Flag("note-speed", "Travel time of a note for .sm charts").Short('s').Default("1s").Envar("NOTEFALL_NOTE_SPEED").DurationVar(&c.NoteSpeed)
	app.Flag("perfect", "Perfect window").Default(defaults.Windows[0].Window.String()).Envar("NOTEFALL_PERFECT").DurationVar(&perfect)
	app.Flag("ok", "Ok window").Default(defaults.Windows[1].Window.String()).Envar("NOTEFALL_OK").DurationVar(&ok)
	app.Flag("grace", "How long after its time an unhit note counts as a miss, defaults to the ok window").Envar("NOTEFALL_GRACE").DurationVar(&grace)
	app.Flag("lookahead", "Spawn notes this far ahead of the clock").Default(defaults.Schedule.Lookahead.String()).Envar("NOTEFALL_LOOKAHEAD").DurationVar(&c.Session.Schedule.Lookahead)
	app.Flag("slack", "Latest a note may still be spawned").Default(defaults.Schedule.Slack.String()).Envar("NOTEFALL_SLACK").DurationVar(&c.Session.Schedule.Slack)
	app.Flag("poll", "Scheduler poll interval, at most the lookahead").Default(defaults.Schedule.PollInterval.String()).Envar("NOTEFALL_POLL").DurationVar(&c.Session.Schedule.PollInterval)
	app.Flag("frame-period", "Render frame period").Short('p').Default("8ms").Envar("NOTEFALL_FRAME_PERIOD").DurationVar(&c.FramePeriod)
	app.Flag("delay", "Start delay").Short('d').Default("1.5s").Envar("NOTEFALL_DELAY").DurationVar(&c.Delay)
	app.Flag("headless", "Play without the terminal renderer, silent, judging nothing").Envar("NOTEFALL_HEADLESS").BoolVar(&c.Headless)
	app.Flag("log-level", "debug, info, warn or error").Default("info").Envar("NOTEFALL_LOG_LEVEL").EnumVar(&logLevel, "debug", "info", "warn", "error")
	app.Flag("log-file", "Log file, rotated").Default("notefall.log").Envar("NOTEFALL_LOG_FILE").StringVar(&c.Log.OutputPath)

	if _, err := app.Parse(args); nil != err {
		return nil, err
	}

	if grace == 0 {
		grace = ok
	}
	c.Session.Windows = game.NewWindows(perfect, ok)
	c.Session.MissGrace = grace
	c.Log.Level = logger.Level(logLevel)
	c.Log.MaxSize = 10
	c.Log.MaxBackups = 3

	if c.NoteSpeed <= 0 {
		return nil, fmt.Errorf("note speed %v must be positive", c.NoteSpeed)
	}
	if err := c.Session.Validate(); nil != err {
		return nil, err
	}
	return c, nil
}
