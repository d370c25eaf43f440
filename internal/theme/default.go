package theme

import (
	"fmt"
	"image/color"

	"git.lost.host/meutraa/notefall/internal/game"
)

type DefaultTheme struct {
}

func (t *DefaultTheme) RenderNote(lane game.Lane) string {
	return paint(getLaneColor(lane), noteSym)
}

func (t *DefaultTheme) RenderHitField(lane game.Lane, pressed bool) string {
	if pressed {
		return paint(getLaneColor(lane), barPressedSym)
	}
	return barSym
}

func (t *DefaultTheme) RenderGrade(grade game.Grade) string {
	name := grade.String()
	c, ok := gradeColors[grade]
	if !ok {
		return name
	}
	return paint(c, name)
}

func paint(c color.RGBA, s string) string {
	return fmt.Sprintf("\033[38;2;%v;%v;%vm%v\033[0m", c.R, c.G, c.B, s)
}

const (
	noteSym       = "⬤"
	barSym        = "-"
	barPressedSym = "="
)

var (
	laneColors = map[game.Lane]color.RGBA{
		game.LeftLeft:    {236, 30, 0, 255},  // red
		game.LeftMiddle:  {0, 118, 236, 255}, // blue
		game.RightMiddle: {0, 236, 128, 255}, // green
		game.RightRight:  {236, 195, 0, 255}, // yellow
	}
	gradeColors = map[game.Grade]color.RGBA{
		game.Perfect: {173, 236, 236, 255},
		game.Ok:      {0, 236, 128, 255},
		game.Miss:    {236, 30, 0, 255},
	}
	white = color.RGBA{255, 255, 255, 255}
)

func getLaneColor(l game.Lane) color.RGBA {
	col, ok := laneColors[l]
	if !ok {
		return white
	}
	return col
}
