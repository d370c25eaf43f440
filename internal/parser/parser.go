package parser

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"git.lost.host/meutraa/notefall/internal/game"
)

type Parser interface {
	// Parse returns every playable chart in the file
	Parse(file string) ([]*game.Chart, error)
}

// ForFile picks a parser by extension. noteSpeed is used for formats that do
// not carry their own.
func ForFile(file string, noteSpeed time.Duration) (Parser, error) {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".json":
		return &DefaultParser{}, nil
	case ".sm":
		return &SMParser{NoteSpeed: noteSpeed}, nil
	}
	return nil, fmt.Errorf("unsupported chart format %q", filepath.Ext(file))
}

// round converts seconds to a duration at microsecond precision, so that
// 1.02 is exactly 1020ms
func round(s float64) time.Duration {
	return time.Duration(math.Round(s*1e6)) * time.Microsecond
}
