package render

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	"git.lost.host/meutraa/notefall/internal/clock"
	"git.lost.host/meutraa/notefall/internal/game"
	"git.lost.host/meutraa/notefall/internal/theme"
)

const (
	judgementFrames = 30
	columnSpacing   = 6
	barRowFromEnd   = 4
)

// DefaultRenderer draws the lanes on an ANSI terminal. Notes are positioned
// from the playback clock, so they freeze with it.
type DefaultRenderer struct {
	clock       clock.Clock
	theme       theme.Theme
	out         io.Writer
	framePeriod time.Duration

	buffer      strings.Builder
	rows, cols  int
	next        Handle
	sprites     map[Handle]*sprite
	decorations []*decoration
	status      []string
	pressed     [len(game.Lanes)]int // remaining frames the hit field is lit
}

type sprite struct {
	lane    game.Lane
	spawned time.Duration
	arrives time.Duration
	row     int // The row this note is rendered on, for clearing
}

type decoration struct {
	Row, Col int
	Content  string
	Frames   int // remaining frames until removed
}

func NewDefaultRenderer(clk clock.Clock, th theme.Theme, out io.Writer, framePeriod time.Duration) *DefaultRenderer {
	return &DefaultRenderer{
		clock:       clk,
		theme:       th,
		out:         out,
		framePeriod: framePeriod,
		rows:        24,
		cols:        80,
		sprites:     map[Handle]*sprite{},
	}
}

func (r *DefaultRenderer) Init() error {
	if f, ok := r.out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		cols, rows, err := term.GetSize(int(f.Fd()))
		if nil != err {
			return err
		}
		r.Resize(cols, rows)
	}
	r.buffer.WriteString("\033[?1049h") // Enable alternate buffer
	r.buffer.WriteString("\033[?25l")   // Make the cursor invisible
	r.buffer.WriteString("\033[2J")     // Clear the screen
	r.flush()
	return nil
}

func (r *DefaultRenderer) Deinit() error {
	r.buffer.WriteString("\033[?1049l") // Disable alternate buffer
	r.buffer.WriteString("\033[?25h")   // Make the cursor visible
	r.flush()
	return nil
}

func (r *DefaultRenderer) Resize(cols, rows int) {
	r.cols, r.rows = cols, rows
}

func (r *DefaultRenderer) hitRow() int {
	return r.rows - barRowFromEnd
}

func (r *DefaultRenderer) column(lane game.Lane) int {
	mc := r.cols >> 1
	return mc + (2*lane.Index()-3)*columnSpacing/2
}

func (r *DefaultRenderer) Spawn(lane game.Lane, duration time.Duration) Handle {
	now := r.clock.Now()
	r.next++
	r.sprites[r.next] = &sprite{lane: lane, spawned: now, arrives: now + duration, row: -1}
	return r.next
}

func (r *DefaultRenderer) Release(h Handle) {
	s, ok := r.sprites[h]
	if !ok {
		return
	}
	r.clearSprite(s)
	delete(r.sprites, h)
}

func (r *DefaultRenderer) ShowJudgment(grade game.Grade, h Handle) {
	s, ok := r.sprites[h]
	if !ok {
		return
	}
	col := r.column(s.lane)
	text := r.theme.RenderGrade(grade)
	r.AddDecoration(r.hitRow()+2, col-len(grade.String())/2, text, judgementFrames)
	if grade != game.Miss {
		r.pressed[s.lane] = judgementFrames / 3
	}
}

// Press lights a lane's hit field, hit or not.
func (r *DefaultRenderer) Press(lane game.Lane) {
	if lane.Valid() {
		r.pressed[lane] = judgementFrames / 3
	}
}

func (r *DefaultRenderer) Status(lines []string) {
	r.status = lines
}

func (r *DefaultRenderer) AddDecoration(row, col int, content string, frames int) {
	r.decorations = append(r.decorations, &decoration{
		Row:     row,
		Col:     col,
		Content: content,
		Frames:  frames,
	})
}

func (r *DefaultRenderer) tickDecorations() {
	nd := make([]*decoration, 0, len(r.decorations))
	for _, d := range r.decorations {
		if d.Frames == 0 {
			r.Fill(d.Row, d.Col, "       ")
			continue
		}
		r.Fill(d.Row, d.Col, d.Content)
		nd = append(nd, d)
		d.Frames--
	}
	r.decorations = nd
}

func (r *DefaultRenderer) clearSprite(s *sprite) {
	if s.row > 0 && s.row != r.hitRow() {
		r.Fill(s.row, r.column(s.lane), " ")
	}
}

// spriteRow interpolates between the top row and the hit bar.
func (r *DefaultRenderer) spriteRow(s *sprite, now time.Duration) int {
	hit := r.hitRow()
	total := s.arrives - s.spawned
	left := s.arrives - now
	if total <= 0 || left <= 0 {
		return hit
	}
	if left > total {
		left = total
	}
	return hit - int(float64(hit-1)*float64(left)/float64(total))
}

// Frame draws one frame into the buffer and writes it out.
func (r *DefaultRenderer) Frame() {
	now := r.clock.Now()

	// Render the hit bar
	for _, lane := range game.Lanes {
		pressed := r.pressed[lane] > 0
		if pressed {
			r.pressed[lane]--
		}
		r.Fill(r.hitRow(), r.column(lane), r.theme.RenderHitField(lane, pressed))
	}

	for _, s := range r.sprites {
		row := r.spriteRow(s, now)
		if row != s.row {
			r.clearSprite(s)
			s.row = row
		}
		r.Fill(s.row, r.column(s.lane), r.theme.RenderNote(s.lane))
	}

	r.tickDecorations()

	for i, line := range r.status {
		r.Fill(2+i, 2, line+"\033[K")
	}
	r.flush()
}

// RenderLoop calls frame, then draws, once per frame period until frame
// returns false. elapsed counts from the end of delay and is negative before.
func (r *DefaultRenderer) RenderLoop(delay time.Duration, frame func(elapsed time.Duration) bool) {
	startTime := time.Now().Add(delay)
	for {
		now := time.Now()
		deadline := now.Add(r.framePeriod)

		if !frame(now.Sub(startTime)) {
			return
		}
		r.Frame()

		time.Sleep(time.Until(deadline))
	}
}

func (r *DefaultRenderer) Fill(row, column int, message string) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.Itoa(row))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.Itoa(column))
	r.buffer.WriteString("H")
	r.buffer.WriteString(message)
}

func (r *DefaultRenderer) flush() {
	io.WriteString(r.out, r.buffer.String())
	r.buffer.Reset()
}
