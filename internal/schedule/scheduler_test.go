package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"git.lost.host/meutraa/notefall/internal/game"
)

const ms = time.Millisecond

func testChart() *game.Chart {
	return &game.Chart{
		NoteSpeed: time.Second,
		Notes: []game.ChartNote{
			{Time: 1000 * ms, Lane: game.LeftLeft},
			{Time: 1500 * ms, Lane: game.LeftMiddle},
			{Time: 2000 * ms, Lane: game.RightMiddle},
			{Time: 2000 * ms, Lane: game.RightRight},
			{Time: 2500 * ms, Lane: game.RightRight},
			{Time: 3000 * ms, Lane: game.LeftLeft},
			{Time: 3500 * ms, Lane: game.LeftMiddle},
		},
	}
}

func newScheduler(t *testing.T) *Scheduler {
	s, err := New(DefaultConfig(), zap.NewNop())
	require.NoError(t, err)
	return s
}

func indices(spawns []Spawn) []int {
	out := []int{}
	for _, s := range spawns {
		out = append(out, s.Index)
	}
	return out
}

// Every index comes out exactly once, in order, for any poll rate faster
// than the lookahead.
func TestEmitsEveryNoteOnce(t *testing.T) {
	for _, step := range []time.Duration{ms, 7 * ms, 16 * ms, 50 * ms, 99 * ms} {
		s := newScheduler(t)
		chart := testChart()
		s.Load(chart)
		s.Start()

		var all []int
		for now := time.Duration(0); now < 5*time.Second; now += step {
			for _, spawn := range s.Poll(now) {
				assert.LessOrEqual(t, spawn.Target-spawn.Travel, now+DefaultConfig().Lookahead)
				all = append(all, spawn.Index)
			}
		}
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, all, "step %v", step)
		assert.True(t, s.Done())
		assert.Equal(t, Cursor{Next: 7, Scheduled: 7}, s.Cursor())
	}
}

func TestSpawnCarriesTravelAndTarget(t *testing.T) {
	s := newScheduler(t)
	s.Load(testChart())
	s.Start()

	// Note 1 spawns at 500ms, inside the lookahead at 400ms
	assert.Equal(t, []int{0}, indices(s.Poll(0)))
	assert.Empty(t, s.Poll(350*ms))
	spawns := s.Poll(400 * ms)
	require.Len(t, spawns, 1)
	assert.Equal(t, Spawn{Index: 1, Lane: game.LeftMiddle, Travel: time.Second, Target: 1500 * ms}, spawns[0])
}

func TestLeadInNotesSpawnAtStart(t *testing.T) {
	s := newScheduler(t)
	s.Load(&game.Chart{
		NoteSpeed: 2 * time.Second,
		Notes:     []game.ChartNote{{Time: time.Second, Lane: game.LeftLeft}},
	})
	s.Start()
	spawns := s.Poll(0)
	require.Len(t, spawns, 1)
	assert.Equal(t, time.Second, spawns[0].Target)
}

func TestPollIntervalThrottles(t *testing.T) {
	s := newScheduler(t)
	s.Load(testChart())
	s.Start()
	s.Poll(0)
	assert.Empty(t, s.Poll(360*ms))

	// 400ms would reach note 1 but is within one interval of the last poll
	assert.Empty(t, s.Poll(400*ms))
	assert.Equal(t, 1, s.Cursor().Next)
	assert.Equal(t, []int{1}, indices(s.Poll(410*ms)))
}

func TestDropsLateNotes(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s, err := New(DefaultConfig(), zap.New(core))
	require.NoError(t, err)
	s.Load(testChart())
	s.Start()

	// First look at 1.06s: notes 0 and 1 are long gone, notes 2 and 3
	// (spawn 1s) are 60ms late, just beyond the slack
	assert.Empty(t, s.Poll(1060*ms))
	spawns := s.Poll(1450 * ms)
	assert.Equal(t, []int{4}, indices(spawns))

	c := s.Cursor()
	assert.Equal(t, 4, c.Dropped)
	assert.Equal(t, 1, c.Scheduled)
	assert.Equal(t, 4, logs.FilterMessage("dropped late note").Len())
}

func TestLateWithinSlackStillSpawns(t *testing.T) {
	s := newScheduler(t)
	s.Load(testChart())
	s.Start()
	s.Poll(0)
	// Note 1 spawn instant was 500ms, 50ms late is tolerated
	assert.Equal(t, []int{1}, indices(s.Poll(550*ms)))
}

func TestStopKeepsCursor(t *testing.T) {
	s := newScheduler(t)
	s.Load(testChart())
	s.Start()
	s.Poll(0)
	s.Stop()
	assert.Nil(t, s.Poll(time.Second))
	assert.False(t, s.Running())

	s.Start()
	assert.Equal(t, []int{1}, indices(s.Poll(450*ms)))
}

func TestResetReplaysFromStart(t *testing.T) {
	s := newScheduler(t)
	s.Load(testChart())
	s.Start()
	s.Poll(0)
	s.Poll(2 * time.Second)
	s.Reset()
	assert.Nil(t, s.Poll(0), "reset halts polling")

	s.Start()
	assert.Equal(t, []int{0}, indices(s.Poll(0)))
}

func TestPollWithoutChart(t *testing.T) {
	s := newScheduler(t)
	s.Start()
	assert.Nil(t, s.Poll(0))
	assert.True(t, s.Done())
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	for _, c := range []Config{
		{Lookahead: 0, Slack: 0, PollInterval: ms},
		{Lookahead: 100 * ms, Slack: -ms, PollInterval: 50 * ms},
		{Lookahead: 100 * ms, Slack: 0, PollInterval: 0},
		{Lookahead: 100 * ms, Slack: 0, PollInterval: 150 * ms},
	} {
		_, err := New(c, nil)
		assert.ErrorIs(t, err, ErrConfig, "%+v", c)
	}
}
