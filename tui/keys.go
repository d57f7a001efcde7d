package tui

import "github.com/charmbracelet/bubbles/key"

func Key(help string, keyboardKey ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keyboardKey...), key.WithHelp(keyboardKey[0], help))
}

type keyMap struct {
	Style      key.Binding
	StyleBack  key.Binding
	Faster     key.Binding
	Slower     key.Binding
	OctaveUp   key.Binding
	OctaveDown key.Binding
	TimesUp    key.Binding
	TimesDown  key.Binding
	Retrigger  key.Binding
	Pulses     key.Binding
	PulsesDown key.Binding
	Steps      key.Binding
	StepsDown  key.Binding
	Rotate     key.Binding
	Scale      key.Binding
	Redraw     key.Binding
	Mute       key.Binding
	Randomize  key.Binding
	Category   key.Binding
	AmountUp   key.Binding
	AmountDown key.Binding
	Undo       key.Binding
	TrackNext  key.Binding
	TrackPrev  key.Binding
	Arm        key.Binding
	Play       key.Binding
	StopPhrase key.Binding
	TempoUp    key.Binding
	TempoDown  key.Binding
	Release    key.Binding
	Help       key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Style:      Key("next style", "s"),
	StyleBack:  Key("prev style", "S"),
	Faster:     Key("faster", "]"),
	Slower:     Key("slower", "["),
	OctaveUp:   Key("octaves+", "o"),
	OctaveDown: Key("octaves-", "O"),
	TimesUp:    Key("repeats+", "t"),
	TimesDown:  Key("repeats-", "T"),
	Retrigger:  Key("retrigger", "r"),
	Pulses:     Key("pulses+", "e"),
	PulsesDown: Key("pulses-", "E"),
	Steps:      Key("steps+", "w"),
	StepsDown:  Key("steps-", "W"),
	Rotate:     Key("rotate", "z"),
	Scale:      Key("scale", "c"),
	Redraw:     Key("new pitches", "n"),
	Mute:       Key("mute pitches", "m"),
	Randomize:  Key("randomize", "x"),
	Category:   Key("category", "k"),
	AmountUp:   Key("amount+", "}"),
	AmountDown: Key("amount-", "{"),
	Undo:       Key("undo", "u"),
	TrackNext:  Key("track+", "."),
	TrackPrev:  Key("track-", ","),
	Arm:        Key("rec phrase", "a"),
	Play:       Key("play phrase", "p"),
	StopPhrase: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "stop phrase")),
	TempoUp:    Key("tempo+", "+", "="),
	TempoDown:  Key("tempo-", "-", "_"),
	Release:    Key("release notes", "backspace"),
	Help:       Key("help", "?"),
	Quit:       Key("quit", "q", "ctrl+c"),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Style, k.Faster, k.Slower, k.Randomize, k.Undo, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Style, k.StyleBack, k.Faster, k.Slower, k.OctaveUp, k.OctaveDown, k.TimesUp, k.TimesDown, k.Retrigger, k.Release},
		{k.Pulses, k.PulsesDown, k.Steps, k.StepsDown, k.Rotate, k.Scale, k.Redraw, k.Mute},
		{k.Randomize, k.Category, k.AmountUp, k.AmountDown, k.Undo, k.TrackNext, k.TrackPrev},
		{k.Arm, k.Play, k.StopPhrase, k.TempoUp, k.TempoDown, k.Help, k.Quit},
	}
}
