// Package input turns key presses into lane and transport events.
package input

import (
	"github.com/eiannone/keyboard"
	"go.uber.org/zap"

	"git.lost.host/meutraa/notefall/internal/game"
	"git.lost.host/meutraa/notefall/internal/logger"
)

type Kind uint8

const (
	None Kind = iota
	LanePress
	TogglePlay
	Reset
	Quit
)

type Event struct {
	Kind Kind
	Lane game.Lane // Set for LanePress
}

// KeyMap maps printable keys to lanes. Arrow keys always map to the right
// hand lanes.
type KeyMap map[rune]game.Lane

func DefaultKeyMap() KeyMap {
	return KeyMap{
		'z': game.LeftLeft,
		'c': game.LeftMiddle,
	}
}

func (m KeyMap) Translate(ev keyboard.KeyEvent) Event {
	switch ev.Key {
	case keyboard.KeyEsc, keyboard.KeyCtrlC:
		return Event{Kind: Quit}
	case keyboard.KeySpace:
		return Event{Kind: TogglePlay}
	case keyboard.KeyArrowLeft:
		return Event{Kind: LanePress, Lane: game.RightMiddle}
	case keyboard.KeyArrowRight:
		return Event{Kind: LanePress, Lane: game.RightRight}
	}
	if ev.Rune == 'q' {
		return Event{Kind: Reset}
	}
	if lane, ok := m[ev.Rune]; ok {
		return Event{Kind: LanePress, Lane: lane}
	}
	return Event{}
}

// Keyboard reads the terminal in raw mode. Close restores it.
type Keyboard struct {
	keys   <-chan keyboard.KeyEvent
	keyMap KeyMap
	logger *zap.Logger
}

func OpenKeyboard(keyMap KeyMap, log *zap.Logger) (*Keyboard, error) {
	keys, err := keyboard.GetKeys(128)
	if nil != err {
		return nil, err
	}
	return newKeyboard(keys, keyMap, log), nil
}

func newKeyboard(keys <-chan keyboard.KeyEvent, keyMap KeyMap, log *zap.Logger) *Keyboard {
	return &Keyboard{keys: keys, keyMap: keyMap, logger: logger.OrNop(log)}
}

// Drain returns the events that arrived since the last call without
// blocking.
func (k *Keyboard) Drain() []Event {
	var events []Event
	for {
		select {
		case ev, ok := <-k.keys:
			if !ok {
				return append(events, Event{Kind: Quit})
			}
			if nil != ev.Err {
				k.logger.Warn("unable to read key", zap.Error(ev.Err))
				continue
			}
			if e := k.keyMap.Translate(ev); e.Kind != None {
				events = append(events, e)
			}
		default:
			return events
		}
	}
}

func (k *Keyboard) Close() error {
	return keyboard.Close()
}
