// Package app wires configuration, MIDI ports, the clock and the engine
// together for the command line front end.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Southclaws/fault"

	"go-arp/clock"
	"go-arp/config"
	"go-arp/debug"
	"go-arp/midi"
	"go-arp/sequencer"
)

// NewEngine builds an engine emitting to out and applies cfg to it. A zero
// seed in cfg seeds from the wall clock.
func NewEngine(out sequencer.Output, cfg *config.Config) (*sequencer.Engine, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	eng := sequencer.NewEngine(out, sequencer.Options{
		ArpChannel:    config.MIDIChannel(cfg.Output.ArpChannel),
		PitchChannel:  config.MIDIChannel(cfg.Output.PitchChannel),
		PhraseChannel: config.MIDIChannel(cfg.Output.PhraseChannel),
		ParamChannel:  config.MIDIChannel(cfg.Output.ParamChannel),
		UndoDepth:     cfg.Randomizer.UndoDepth,
		Seed:          seed,
	})
	if err := Configure(eng, cfg); err != nil {
		return nil, err
	}
	eng.Publish()
	return eng, nil
}

// Configure applies the arpeggiator, euclid and randomizer settings. It must
// run before Engine.Run or inside Engine.Do.
func Configure(eng *sequencer.Engine, cfg *config.Config) error {
	style, ok := sequencer.ParseStyle(cfg.Arp.Style)
	if !ok {
		return fault.New(fmt.Sprintf("unknown arp style %q", cfg.Arp.Style))
	}
	retrig, ok := sequencer.ParseRetrigger(cfg.Arp.Retrigger)
	if !ok {
		return fault.New(fmt.Sprintf("unknown retrigger mode %q", cfg.Arp.Retrigger))
	}
	if _, ok := sequencer.ParseSelect(cfg.Randomizer.Select); !ok {
		return fault.New(fmt.Sprintf("unknown randomizer selection %q", cfg.Randomizer.Select))
	}

	eng.Arp.SetStyle(style)
	eng.Arp.SetSpeed(cfg.Arp.Speed)
	eng.Arp.SetOctaves(cfg.Arp.Octaves)
	eng.Arp.SetTimes(cfg.Arp.Times)
	eng.Arp.SetRetrigger(retrig, cfg.Arp.RetrigSpeed)
	eng.Arp.SetVelocity(cfg.Arp.Velocity)

	e := cfg.Euclid
	eng.Pitch.Euclid.Set(e.Pulses, e.Steps, e.Rotation)
	eng.Pitch.SetScale(e.Scale)
	eng.Pitch.SetOctaves(e.Octaves)
	eng.Pitch.SetPitchLength(e.PitchLength)
	eng.Pitch.SetNoteLength(e.NoteLength)
	eng.Pitch.SetBasePitch(e.BasePitch)
	eng.Pitch.SetMuted(e.Muted)

	eng.Random.SetTrack(cfg.Randomizer.Track)
	return nil
}

// Randomizer returns the configured randomize amount and selection index.
func Randomizer(cfg *config.Config) (amount, sel int) {
	sel, ok := sequencer.ParseSelect(cfg.Randomizer.Select)
	if !ok {
		sel = sequencer.SelectAll
	}
	return cfg.Randomizer.Amount, sel
}

// Render runs the engine offline for ticks 16th notes with notes held from
// the start and returns everything it emitted. Notes still sounding at the
// end are released on the final tick.
func Render(cfg *config.Config, ticks int, notes []uint8) ([]midi.Event, error) {
	capture := midi.NewCapture(config.MIDIChannel(cfg.Output.ParamChannel))
	eng, err := NewEngine(capture, cfg)
	if err != nil {
		return nil, err
	}
	for _, n := range notes {
		eng.HandleNote(midi.NoteEvent{Note: n & 0x7F, Velocity: 100})
	}

	for i := 0; i < ticks; i++ {
		capture.Stamp(int64(eng.Counter()))
		eng.Tick(clock.Tick{Reset: i == 0})
	}
	capture.Stamp(int64(ticks))
	eng.Silence()

	debug.Log("render", "%d ticks, %d events", ticks, len(capture.Events()))
	return capture.Events(), nil
}

// RenderFile renders to a Standard MIDI File at path.
func RenderFile(cfg *config.Config, ticks int, notes []uint8, path string) error {
	events, err := Render(cfg, ticks, notes)
	if err != nil {
		return err
	}
	return midi.WriteSMF(path, events, float64(clock.ClampBPM(cfg.Tempo)))
}

// Route forwards events from every input the device manager connects to the
// engine, and clock messages to clockOut when it is non-nil. It returns when
// ctx is done or the device manager stops.
func Route(ctx context.Context, events <-chan midi.DeviceEvent, eng *sequencer.Engine, clockOut chan<- midi.ClockEvent) {
	cancels := make(map[string]context.CancelFunc)
	defer func() {
		for _, cancel := range cancels {
			cancel()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Type {
			case midi.DeviceConnected:
				if cancel, ok := cancels[ev.ID]; ok {
					cancel()
				}
				inCtx, cancel := context.WithCancel(ctx)
				cancels[ev.ID] = cancel
				go forward(inCtx, ev.Input, eng, clockOut)
			case midi.DeviceDisconnected:
				if cancel, ok := cancels[ev.ID]; ok {
					cancel()
					delete(cancels, ev.ID)
				}
			}
		}
	}
}

func forward(ctx context.Context, in *midi.Input, eng *sequencer.Engine, clockOut chan<- midi.ClockEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-in.NoteEvents():
			eng.SendNote(ev)
		case ev := <-in.ControlEvents():
			eng.SendControl(ev)
		case ev := <-in.ClockEvents():
			if clockOut == nil {
				continue
			}
			select {
			case clockOut <- ev:
			default:
				debug.LogEvery(100, "route", "clock event dropped from %s", in.ID())
			}
		}
	}
}
