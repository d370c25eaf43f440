// Package testdata holds a small chart for tests and demo runs.
package testdata

import (
	"git.lost.host/meutraa/notefall/internal/game"
	"git.lost.host/meutraa/notefall/internal/parser"
)

// Data is the six note warm up chart, one note per half second.
const Data = `{
  "title": "Break",
  "artist": "Unknown",
  "audio": "break.mp3",
  "noteSpeed": 1.0,
  "notes": [
    { "time": 1.0, "lane": "ll" },
    { "time": 1.5, "lane": "lm" },
    { "time": 2.0, "lane": "rm" },
    { "time": 2.5, "lane": "rr" },
    { "time": 3.0, "lane": "ll" },
    { "time": 3.5, "lane": "lm" }
  ]
}`

func GetChart() (*game.Chart, error) {
	return (&parser.DefaultParser{}).Decode([]byte(Data))
}
