package theme

import "git.lost.host/meutraa/notefall/internal/game"

type Theme interface {
	RenderNote(lane game.Lane) string
	RenderHitField(lane game.Lane, pressed bool) string
	RenderGrade(grade game.Grade) string
}
