// Package audio plays the chart's track and exposes its playback position
// as the engine clock.
package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
	"go.uber.org/zap"

	"git.lost.host/meutraa/notefall/internal/logger"
)

// Clock follows the number of samples the speaker has consumed, so the
// engine never drifts from what is heard.
type Clock struct {
	streamer beep.StreamSeeker
	ctrl     *beep.Ctrl
	format   beep.Format
	closer   func() error
	logger   *zap.Logger

	lock, unlock func()
}

func newClock(streamer beep.StreamSeeker, format beep.Format, log *zap.Logger) *Clock {
	return &Clock{
		streamer: streamer,
		ctrl:     &beep.Ctrl{Streamer: streamer, Paused: true},
		format:   format,
		closer:   func() error { return nil },
		logger:   logger.OrNop(log),
		lock:     speaker.Lock,
		unlock:   speaker.Unlock,
	}
}

// Open decodes an mp3, ogg or wav file. The track starts paused.
func Open(file string, log *zap.Logger) (*Clock, error) {
	f, err := os.Open(file)
	if nil != err {
		return nil, err
	}
	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch strings.ToLower(filepath.Ext(file)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		err = fmt.Errorf("unsupported audio format %q", filepath.Ext(file))
	}
	if nil != err {
		f.Close()
		return nil, fmt.Errorf("unable to decode %v: %w", file, err)
	}
	c := newClock(streamer, format, log)
	c.closer = streamer.Close
	return c, nil
}

// Start opens the speaker and queues the paused track.
func (c *Clock) Start() error {
	if err := speaker.Init(c.format.SampleRate, c.format.SampleRate.N(time.Second/60)); nil != err {
		return fmt.Errorf("unable to open speaker: %w", err)
	}
	speaker.Play(c.ctrl)
	return nil
}

func (c *Clock) Now() time.Duration {
	c.lock()
	defer c.unlock()
	return c.format.SampleRate.D(c.streamer.Position())
}

func (c *Clock) Play() {
	c.lock()
	c.ctrl.Paused = false
	c.unlock()
}

func (c *Clock) Pause() {
	c.lock()
	c.ctrl.Paused = true
	c.unlock()
}

func (c *Clock) Rewind() {
	c.lock()
	defer c.unlock()
	if err := c.streamer.Seek(0); nil != err {
		c.logger.Warn("unable to rewind track", zap.Error(err))
	}
}

// Length of the track.
func (c *Clock) Length() time.Duration {
	return c.format.SampleRate.D(c.streamer.Len())
}

func (c *Clock) Close() error {
	speaker.Close()
	return c.closer()
}
