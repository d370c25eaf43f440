package parser

import (
	"encoding/json"
	"fmt"
	"os"

	"git.lost.host/meutraa/notefall/internal/game"
)

// DefaultParser reads JSON charts. Times are in seconds.
//
//	{"title": "", "artist": "", "audio": "song.ogg", "noteSpeed": 1.0,
//	 "notes": [{"time": 1.0, "lane": "ll"}]}
type DefaultParser struct{}

type jsonNote struct {
	Time float64    `json:"time"`
	Lane *game.Lane `json:"lane"`
}

type jsonChart struct {
	Title     string     `json:"title"`
	Artist    string     `json:"artist"`
	Audio     string     `json:"audio"`
	NoteSpeed float64    `json:"noteSpeed"`
	Notes     []jsonNote `json:"notes"`
}

func (p *DefaultParser) Parse(file string) ([]*game.Chart, error) {
	data, err := os.ReadFile(file)
	if nil != err {
		return nil, err
	}
	chart, err := p.Decode(data)
	if nil != err {
		return nil, fmt.Errorf("%v: %w", file, err)
	}
	return []*game.Chart{chart}, nil
}

// Decode converts a JSON chart and validates it.
func (p *DefaultParser) Decode(data []byte) (*game.Chart, error) {
	var jc jsonChart
	if err := json.Unmarshal(data, &jc); nil != err {
		return nil, err
	}
	chart := &game.Chart{
		Title:     jc.Title,
		Artist:    jc.Artist,
		Audio:     jc.Audio,
		NoteSpeed: round(jc.NoteSpeed),
		Notes:     make([]game.ChartNote, len(jc.Notes)),
	}
	for i, n := range jc.Notes {
		// A missing or null lane would otherwise read as the zero lane
		if nil == n.Lane {
			return nil, fmt.Errorf("note %v: %w", i, game.ErrUnknownLane)
		}
		chart.Notes[i] = game.ChartNote{Time: round(n.Time), Lane: *n.Lane}
	}
	if err := chart.Validate(); nil != err {
		return nil, err
	}
	return chart, nil
}
