package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-arp/theme"
)

// RenderSteps renders one symbol per step: hits, empty steps and the
// playhead at cursor (-1 for none).
func RenderSteps(th *theme.Theme, pattern []bool, cursor int) string {
	hit := lipgloss.NewStyle().Foreground(th.Accent())
	empty := lipgloss.NewStyle().Foreground(th.Muted())
	head := lipgloss.NewStyle().Foreground(th.Success())

	var out strings.Builder
	for i, on := range pattern {
		if i > 0 {
			out.WriteString(" ")
		}
		switch {
		case i == cursor:
			out.WriteString(head.Render(string(th.Symbols.StepPlayhead)))
		case on:
			out.WriteString(hit.Render(string(th.Symbols.StepActive)))
		default:
			out.WriteString(empty.Render(string(th.Symbols.StepEmpty)))
		}
	}
	return out.String()
}

// RenderNotes renders pitches as note names, highlighting the one at
// cursor. Negative pitches are rests.
func RenderNotes(th *theme.Theme, pitches []int, cursor int) string {
	if len(pitches) == 0 {
		return lipgloss.NewStyle().Foreground(th.Muted()).Render("(empty)")
	}
	normal := lipgloss.NewStyle().Foreground(th.FG())
	current := lipgloss.NewStyle().Foreground(th.Success()).Bold(true)
	rest := lipgloss.NewStyle().Foreground(th.Muted())

	cells := make([]string, len(pitches))
	for i, p := range pitches {
		switch {
		case p < 0:
			cells[i] = rest.Render(fmt.Sprintf("%-4c", th.Symbols.StepRest))
		case i == cursor:
			cells[i] = current.Render(fmt.Sprintf("%-4s", NoteName(p)))
		default:
			cells[i] = normal.Render(fmt.Sprintf("%-4s", NoteName(p)))
		}
	}
	return strings.Join(cells, "")
}

// RenderParamBars renders one labelled horizontal bar per value, colored by
// value. highlight marks parameters the next randomize would touch.
func RenderParamBars(th *theme.Theme, names []string, values []int, highlight func(i int) bool) string {
	const width = 16
	var lines []string
	for i, v := range values {
		n := v * width / 128
		bar := lipgloss.NewStyle().Foreground(th.Color(float64(v) / 127)).
			Render(strings.Repeat(string(th.Symbols.Bar), n))
		label := lipgloss.NewStyle().Foreground(th.Muted())
		if highlight != nil && highlight(i) {
			label = label.Foreground(th.Accent())
		}
		lines = append(lines, fmt.Sprintf("%s %3d %s", label.Render(fmt.Sprintf("%-4s", names[i])), v, bar))
	}
	return strings.Join(lines, "\n")
}

// Columns joins blocks side by side with a gap.
func Columns(blocks ...string) string {
	spaced := make([]string, 0, 2*len(blocks))
	for i, b := range blocks {
		if i > 0 {
			spaced = append(spaced, "    ")
		}
		spaced = append(spaced, b)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, spaced...)
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName returns the name of a MIDI pitch, middle C being C4.
func NoteName(pitch int) string {
	if pitch < 0 || pitch > 127 {
		return "?"
	}
	return fmt.Sprintf("%s%d", noteNames[pitch%12], pitch/12-1)
}
