package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// DefaultPalette is the built-in palette used when none is configured.
const DefaultPalette = "plasma"

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	StepEmpty    rune // · no hit
	StepActive   rune // ● hit
	StepPlayhead rune // ▶ current step
	StepRest     rune // - empty phrase slot

	Held rune // ■ held key
	Bar  rune // █ parameter bar
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			StepEmpty:    '·',
			StepActive:   '●',
			StepPlayhead: '▶',
			StepRest:     '-',

			Held: '■',
			Bar:  '█',
		},
	}
}

// Load builds a theme from a palette name or path, falling back to the
// built-in palette.
func Load(palette string) (*Theme, error) {
	if palette == "" {
		palette = DefaultPalette
	}
	p, err := LoadGPL(palette)
	if err != nil {
		return nil, err
	}
	return New(p), nil
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0 // deep purple
	RoleMuted   = 0.2 // purple-magenta
	RoleFG      = 0.4 // pink-purple (readable)
	RoleAccent  = 0.5 // vivid magenta
	RoleActive  = 0.7 // orange
	RoleWarning = 0.8 // amber
	RoleSuccess = 1.0 // bright yellow
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
