package parser

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"git.lost.host/meutraa/notefall/internal/game"
)

var (
	ErrNoCharts = errors.New("no dance-single charts")
	ErrBPMs     = errors.New("bpms must start at beat 0")
)

// SMParser reads StepMania .sm files. Only four key charts map onto the
// lanes; the .sm format has no travel time so NoteSpeed is supplied.
type SMParser struct {
	NoteSpeed time.Duration
}

type bpm struct {
	StartingBeat float64
	Value        float64
}

type difficulty struct {
	Name    string
	Msd     string
	Section string
}

// Only dance-single has one column per lane
const chartType = "dance-single"

func (p *SMParser) getSecondsPerNote(rates []bpm, currentBeat float64, bpn float64) float64 {
	sel := 0.0
	for _, b := range rates {
		if currentBeat >= b.StartingBeat {
			sel = b.Value
		} else {
			break
		}
	}
	return bpn * 60.0 / sel
}

// 0 – No note
// 1 – Normal note
// 2 – Hold head
// 3 – Hold/Roll tail
// 4 – Roll head
// M – Mine (or other negative note)
// Holds and rolls are judged on their head only, mines are not notes.
func (p *SMParser) isNote(ch byte) bool {
	return ch == '1' || ch == '2' || ch == '4'
}

func (p *SMParser) Parse(file string) ([]*game.Chart, error) {
	data, err := os.ReadFile(file)
	if nil != err {
		return nil, err
	}
	charts, err := p.Decode(string(data))
	if nil != err {
		return nil, fmt.Errorf("%v: %w", file, err)
	}
	return charts, nil
}

func (p *SMParser) Decode(data string) ([]*game.Chart, error) {
	str := strings.ReplaceAll(data, "\r", "")
	sections := strings.Split(str, "#NOTES:")
	meta := sections[0]
	difficulties := []difficulty{}
	for _, section := range sections[1:] {
		lines := strings.SplitN(section, "\n", 7)
		if len(lines) < 7 {
			continue
		}
		if strings.TrimSuffix(strings.TrimSpace(lines[1]), ":") != chartType {
			continue
		}
		difficulties = append(difficulties, difficulty{
			Name:    strings.TrimSuffix(strings.TrimSpace(lines[3]), ":"),
			Msd:     strings.TrimSuffix(strings.TrimSpace(lines[4]), ":"),
			Section: lines[6],
		})
	}
	if len(difficulties) == 0 {
		return nil, ErrNoCharts
	}

	offset := 0.0
	bpms := []bpm{}
	var title, artist, music string

	value := func(mdl, key string) string {
		return strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(mdl, key), ";"))
	}
	for _, mdl := range strings.Split(meta, "\n#") {
		mdl = strings.TrimPrefix(strings.TrimSpace(mdl), "#")
		switch {
		case strings.HasPrefix(mdl, "TITLE:"):
			title = value(mdl, "TITLE:")
		case strings.HasPrefix(mdl, "ARTIST:"):
			artist = value(mdl, "ARTIST:")
		case strings.HasPrefix(mdl, "MUSIC:"):
			music = value(mdl, "MUSIC:")
		case strings.HasPrefix(mdl, "OFFSET:"):
			offs, err := strconv.ParseFloat(value(mdl, "OFFSET:"), 64)
			if nil != err {
				return nil, fmt.Errorf("bad offset: %w", err)
			}
			offset = -offs
		case strings.HasPrefix(mdl, "BPMS:"):
			mdl = strings.ReplaceAll(value(mdl, "BPMS:"), "\n", "")
			for _, b := range strings.Split(mdl, ",") {
				as := strings.Split(b, "=")
				if len(as) != 2 {
					return nil, fmt.Errorf("bad bpm %q", b)
				}
				sb, err := strconv.ParseFloat(strings.TrimSpace(as[0]), 64)
				if nil != err {
					return nil, err
				}
				v, err := strconv.ParseFloat(strings.TrimSpace(as[1]), 64)
				if nil != err {
					return nil, err
				}
				if v <= 0 {
					return nil, fmt.Errorf("bad bpm %q", b)
				}
				bpms = append(bpms, bpm{StartingBeat: sb, Value: v})
			}
		}
	}
	if len(bpms) == 0 {
		return nil, fmt.Errorf("%w: no bpms", ErrBPMs)
	}
	sort.SliceStable(bpms, func(i, j int) bool {
		return bpms[i].StartingBeat < bpms[j].StartingBeat
	})
	if bpms[0].StartingBeat > 0 {
		return nil, fmt.Errorf("%w: first change at beat %v", ErrBPMs, bpms[0].StartingBeat)
	}

	charts := []*game.Chart{}
	for _, d := range difficulties {
		// Start time of first note
		seconds := offset
		currentBeat := 0.0
		notes := []game.ChartNote{}

		for _, block := range strings.Split(d.Section, "\n,") {
			lines := []string{}
			for _, l := range strings.Split(block, "\n") {
				if strings.HasPrefix(l, " ") || strings.Contains(l, "-") {
					continue
				}
				l = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(l), ";"))
				if len(l) == len(game.Lanes) {
					lines = append(lines, l)
				}
			}
			if len(lines) == 0 {
				continue
			}

			// Beat count is 4 per block
			beatsPerNote := 4.0 / float64(len(lines)) // 1/4, 1/8, 1/16, 1/24 etc

			for _, line := range lines {
				for i := 0; i < len(line); i++ {
					if !p.isNote(line[i]) || seconds < 0 {
						continue
					}
					notes = append(notes, game.ChartNote{
						Time: round(seconds),
						Lane: game.Lanes[i],
					})
				}
				seconds += p.getSecondsPerNote(bpms, currentBeat, beatsPerNote)
				currentBeat += beatsPerNote
			}
		}

		chart := &game.Chart{
			Title:      title,
			Artist:     artist,
			Audio:      music,
			Difficulty: strings.TrimSpace(d.Name + " " + d.Msd),
			NoteSpeed:  p.NoteSpeed,
			Notes:      notes,
		}
		if err := chart.Validate(); nil != err {
			return nil, fmt.Errorf("%v chart: %w", d.Name, err)
		}
		charts = append(charts, chart)
	}
	return charts, nil
}
