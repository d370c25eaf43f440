package notes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"git.lost.host/meutraa/notefall/internal/game"
	"git.lost.host/meutraa/notefall/internal/render"
	"git.lost.host/meutraa/notefall/internal/render/rendertest"
	"git.lost.host/meutraa/notefall/internal/timer"
)

const ms = time.Millisecond

type fixture struct {
	reg     *Registry
	group   *timer.Group
	rec     *rendertest.Recorder
	expired []*ActiveNote
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{group: timer.NewGroup(), rec: &rendertest.Recorder{}}
	f.reg = New(f.group, f.rec, 220*ms, func(n *ActiveNote) {
		f.expired = append(f.expired, n)
	}, zaptest.NewLogger(t))
	f.reg.Resume(0)
	return f
}

func TestSpawnPresentsRemainingTravel(t *testing.T) {
	f := newFixture(t)
	n := f.reg.Spawn(0, game.LeftLeft, 2*time.Second, time.Second)

	require.Len(t, f.rec.Spawned, 1)
	assert.Equal(t, time.Second, f.rec.Spawned[0].Duration)
	assert.Equal(t, n.Handle, f.rec.Spawned[0].Handle)
	assert.Equal(t, 1, f.reg.Len())
	assert.False(t, n.Judged())
}

func TestExpiryForcesMissOnce(t *testing.T) {
	f := newFixture(t)
	n := f.reg.Spawn(0, game.LeftLeft, time.Second, time.Second)

	f.reg.Advance(1219 * ms)
	assert.Empty(t, f.expired)
	f.reg.Advance(1220 * ms)
	require.Len(t, f.expired, 1)
	assert.Same(t, n, f.expired[0])
	assert.True(t, n.Judged())
	assert.Equal(t, 0, f.reg.Len())
	assert.Equal(t, []uint64{uint64(n.Handle)}, handles(f.rec.Released))

	f.reg.Advance(5 * time.Second)
	assert.Len(t, f.expired, 1)
}

func TestJudgedNoteDoesNotExpireAsMiss(t *testing.T) {
	f := newFixture(t)
	n := f.reg.Spawn(0, game.LeftLeft, time.Second, time.Second)
	require.True(t, n.MarkJudged())
	assert.False(t, n.MarkJudged())

	f.reg.Advance(2 * time.Second)
	assert.Empty(t, f.expired)
	assert.Equal(t, 0, f.reg.Len())
}

func TestRemoveIsIdempotent(t *testing.T) {
	f := newFixture(t)
	n := f.reg.Spawn(0, game.RightRight, time.Second, time.Second)
	other := f.reg.Spawn(0, game.RightRight, time.Second, 2*time.Second)

	f.reg.Remove(n)
	f.reg.Remove(n)
	f.reg.Remove(nil)

	assert.Equal(t, 1, f.reg.Len())
	assert.Len(t, f.rec.Released, 1)
	assert.Equal(t, []*ActiveNote{other}, f.reg.Active())

	f.reg.Advance(5 * time.Second)
	assert.Equal(t, []*ActiveNote{other}, f.expired, "removed note never expires")
}

func TestFindBestMatch(t *testing.T) {
	f := newFixture(t)
	early := f.reg.Spawn(0, game.LeftMiddle, time.Second, 1000*ms)
	late := f.reg.Spawn(0, game.LeftMiddle, time.Second, 1200*ms)
	f.reg.Spawn(0, game.RightMiddle, time.Second, 1100*ms)

	assert.Same(t, early, f.reg.FindBestMatch(game.LeftMiddle, 1050*ms, 220*ms))
	assert.Same(t, late, f.reg.FindBestMatch(game.LeftMiddle, 1150*ms, 220*ms))
	// Equidistant prefers the earlier target
	assert.Same(t, early, f.reg.FindBestMatch(game.LeftMiddle, 1100*ms, 220*ms))
	// Window is exclusive
	assert.Nil(t, f.reg.FindBestMatch(game.LeftMiddle, 1420*ms, 220*ms))
	assert.Nil(t, f.reg.FindBestMatch(game.RightRight, 1000*ms, 220*ms))
	assert.Nil(t, f.reg.FindBestMatch(game.Lane(7), 1000*ms, 220*ms))

	early.MarkJudged()
	assert.Same(t, late, f.reg.FindBestMatch(game.LeftMiddle, 1050*ms, 220*ms))
}

func TestPausePreservesExpiryBudget(t *testing.T) {
	f := newFixture(t)
	f.reg.Spawn(0, game.LeftLeft, time.Second, time.Second)

	// 1220ms budget, 500ms used before the pause
	f.reg.Pause(500 * ms)
	f.reg.Advance(10 * time.Second)
	assert.Empty(t, f.expired)

	f.reg.Resume(500 * ms)
	f.reg.Advance(1219 * ms)
	assert.Empty(t, f.expired)
	f.reg.Advance(1220 * ms)
	assert.Len(t, f.expired, 1)
}

func TestClearDoesNotJudge(t *testing.T) {
	f := newFixture(t)
	a := f.reg.Spawn(0, game.LeftLeft, time.Second, time.Second)
	b := f.reg.Spawn(0, game.RightRight, time.Second, time.Second)

	f.reg.Clear()
	f.reg.Advance(5 * time.Second)

	assert.Empty(t, f.expired)
	assert.False(t, a.Judged())
	assert.False(t, b.Judged())
	assert.Equal(t, 0, f.reg.Len())
	assert.Len(t, f.rec.Released, 2)
}

func TestLateSpawnExpiresAfterGrace(t *testing.T) {
	f := newFixture(t)
	f.reg.Advance(2 * time.Second)
	f.reg.Spawn(2*time.Second, game.LeftLeft, time.Second, 1950*ms)
	assert.Equal(t, time.Duration(0), f.rec.Spawned[0].Duration)

	f.reg.Advance(2219 * ms)
	assert.Empty(t, f.expired)
	f.reg.Advance(2220 * ms)
	assert.Len(t, f.expired, 1)
}

func TestActiveOrderedByTarget(t *testing.T) {
	f := newFixture(t)
	c := f.reg.Spawn(0, game.LeftLeft, time.Second, 3*time.Second)
	a := f.reg.Spawn(0, game.RightRight, time.Second, time.Second)
	b := f.reg.Spawn(0, game.LeftMiddle, time.Second, 2*time.Second)
	assert.Equal(t, []*ActiveNote{a, b, c}, f.reg.Active())
	assert.NotEqual(t, a.ID, b.ID)
}

func handles(hs []render.Handle) []uint64 {
	out := make([]uint64, len(hs))
	for i, h := range hs {
		out[i] = uint64(h)
	}
	return out
}
