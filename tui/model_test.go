package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"go-arp/clock"
	"go-arp/midi"
	"go-arp/sequencer"
	"go-arp/theme"
)

type nullOut struct{}

func (nullOut) NoteOn(channel, note, velocity uint8)    {}
func (nullOut) NoteOff(channel, note uint8)             {}
func (nullOut) SetTrackParam(track, param, value uint8) {}

func newTestModel(t *testing.T) Model {
	t.Helper()
	th, err := theme.Load("")
	if err != nil {
		t.Fatal(err)
	}
	eng := sequencer.NewEngine(nullOut{}, sequencer.Options{UndoDepth: 1, Seed: 3})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		eng.Run(ctx, make(chan clock.Tick))
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return NewModel(eng, nil, clock.NewInternal(120), th)
}

func press(m Model, k string) Model {
	var msg tea.KeyMsg
	switch k {
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestStyleKeyCycles(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "s")
	if got := m.Engine.Snapshot().Arp.Style; got != "DOWN" {
		t.Errorf("style = %s, want DOWN", got)
	}
	m = press(m, "S")
	m = press(m, "S")
	if got := m.Engine.Snapshot().Arp.Style; got != "ORDER" {
		t.Errorf("style = %s, want ORDER", got)
	}
}

func TestRandomizeAndUndoKeys(t *testing.T) {
	m := newTestModel(t)
	before := m.Engine.Snapshot().Params
	m = press(m, "x")
	if m.Engine.Snapshot().Params == before {
		t.Fatal("randomize key changed nothing")
	}
	m = press(m, "u")
	if m.Engine.Snapshot().Params != before {
		t.Error("undo key did not restore params")
	}
	m = press(m, "u")
	if m.status != "nothing to undo" {
		t.Errorf("status = %q", m.status)
	}
}

func TestUndoKeyWithStalledEngine(t *testing.T) {
	th, err := theme.Load("")
	if err != nil {
		t.Fatal(err)
	}
	// never run, so queued actions time out
	eng := sequencer.NewEngine(nullOut{}, sequencer.Options{UndoDepth: 1, Seed: 3})
	m := NewModel(eng, nil, nil, th)

	m = press(m, "u")
	if m.status != "engine busy" {
		t.Errorf("status = %q, want engine busy", m.status)
	}
}

func TestTempoKeys(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "+")
	if got := m.Tempo.BPM(); got != 125 {
		t.Errorf("bpm = %d, want 125", got)
	}
}

func TestViewShowsState(t *testing.T) {
	m := newTestModel(t)
	m.apply(func() {
		m.Engine.HandleNote(midi.NoteEvent{Note: 60, Velocity: 100})
	})
	out := m.View()
	for _, want := range []string{"ARPEGGIATOR", "EUCLID", "PHRASE", "RANDOMIZER", "C4", "120bpm"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
