package game

import (
	"time"
)

type ChartNote struct {
	Time time.Duration // The time the note should be hit, from track start
	Lane Lane
}
