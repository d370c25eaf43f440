package parser

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.lost.host/meutraa/notefall/internal/game"
)

func TestDecodeJSON(t *testing.T) {
	chart, err := (&DefaultParser{}).Decode([]byte(`{
		"title": "t", "artist": "a", "audio": "song.ogg",
		"noteSpeed": 2.0,
		"notes": [{"time": 1.0, "lane": "ll"}, {"time": 1.02, "lane": "rr"}]
	}`))
	require.NoError(t, err)
	assert.Equal(t, "t", chart.Title)
	assert.Equal(t, "a", chart.Artist)
	assert.Equal(t, "song.ogg", chart.Audio)
	assert.Equal(t, 2*time.Second, chart.NoteSpeed)
	assert.Equal(t, []game.ChartNote{
		{Time: time.Second, Lane: game.LeftLeft},
		{Time: 1020 * time.Millisecond, Lane: game.RightRight},
	}, chart.Notes)
}

func TestDecodeJSONRejectsMalformed(t *testing.T) {
	p := &DefaultParser{}
	_, err := p.Decode([]byte(`{"noteSpeed": 1, "notes": [{"time": 1, "lane": "up"}]}`))
	assert.ErrorIs(t, err, game.ErrUnknownLane)

	_, err = p.Decode([]byte(`{"noteSpeed": 1, "notes": [{"time": 1}]}`))
	assert.ErrorIs(t, err, game.ErrUnknownLane)

	_, err = p.Decode([]byte(`{"noteSpeed": 1, "notes": [{"time": 1, "lane": null}]}`))
	assert.ErrorIs(t, err, game.ErrUnknownLane)

	_, err = p.Decode([]byte(`{"noteSpeed": 1, "notes": [{"time": 1, "lanes": "rr"}]}`))
	assert.ErrorIs(t, err, game.ErrUnknownLane)

	_, err = p.Decode([]byte(`{"noteSpeed": 0, "notes": []}`))
	assert.ErrorIs(t, err, game.ErrNoteSpeed)

	_, err = p.Decode([]byte(`{"noteSpeed": 1, "notes": [{"time": 2, "lane": "ll"}, {"time": 1, "lane": "ll"}]}`))
	assert.ErrorIs(t, err, game.ErrUnordered)

	_, err = p.Decode([]byte(`{`))
	assert.Error(t, err)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "chart.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"noteSpeed": 1, "notes": [{"time": 1, "lane": "lm"}]}`), 0644))

	p, err := ForFile(file, time.Second)
	require.NoError(t, err)
	charts, err := p.Parse(file)
	require.NoError(t, err)
	require.Len(t, charts, 1)
	assert.Equal(t, game.LeftMiddle, charts[0].Notes[0].Lane)

	_, err = p.Parse(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	_, err = ForFile("chart.ssc", time.Second)
	assert.Error(t, err)
	p, err = ForFile("chart.SM", time.Second)
	require.NoError(t, err)
	assert.IsType(t, &SMParser{}, p)
}
