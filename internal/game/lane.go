package game

import (
	"errors"
	"fmt"
)

var ErrUnknownLane = errors.New("unknown lane")

// Lane identifies one of the four playing columns, left to right.
type Lane uint8

const (
	LeftLeft Lane = iota
	LeftMiddle
	RightMiddle
	RightRight
)

// Lanes in column order
var Lanes = [...]Lane{LeftLeft, LeftMiddle, RightMiddle, RightRight}

var laneNames = [...]string{"ll", "lm", "rm", "rr"}

func ParseLane(s string) (Lane, error) {
	for i, name := range laneNames {
		if s == name {
			return Lane(i), nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownLane, s)
}

// LaneAt returns the lane for a zero based column index.
func LaneAt(index int) (Lane, error) {
	if index < 0 || index >= len(Lanes) {
		return 0, fmt.Errorf("%w: column %v", ErrUnknownLane, index)
	}
	return Lane(index), nil
}

func (l Lane) Index() int {
	return int(l)
}

func (l Lane) Valid() bool {
	return int(l) < len(laneNames)
}

func (l Lane) String() string {
	if !l.Valid() {
		return fmt.Sprintf("lane(%d)", uint8(l))
	}
	return laneNames[l]
}

func (l Lane) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLane, uint8(l))
	}
	return []byte(laneNames[l]), nil
}

func (l *Lane) UnmarshalText(text []byte) error {
	lane, err := ParseLane(string(text))
	if nil != err {
		return err
	}
	*l = lane
	return nil
}
