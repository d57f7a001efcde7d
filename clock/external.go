package clock

import (
	"context"

	"go-arp/debug"
	"go-arp/midi"
)

// PulsesPerTick is the number of 24 PPQN timing clock pulses per 16th note.
const PulsesPerTick = 6

// Divider turns MIDI real-time clock messages into 16th-note ticks.
type Divider struct {
	pulses  int
	running bool
	reset   bool
}

// NewDivider creates a divider that is already running, so a slave clock
// that never sends Start still ticks.
func NewDivider() *Divider {
	return &Divider{running: true, reset: true}
}

// Feed consumes one clock event and reports whether it completes a tick.
// Start rewinds to the beginning of a tick, Stop pauses, Continue resumes
// where it stopped.
func (d *Divider) Feed(ev midi.ClockEvent) (Tick, bool) {
	switch ev {
	case midi.ClockStart:
		d.pulses = 0
		d.running = true
		d.reset = true
	case midi.ClockContinue:
		d.running = true
	case midi.ClockStop:
		d.running = false
	case midi.ClockPulse:
		if !d.running {
			return Tick{}, false
		}
		d.pulses++
		if d.pulses == 1 {
			t := Tick{Reset: d.reset}
			d.reset = false
			return t, true
		}
		if d.pulses == PulsesPerTick {
			d.pulses = 0
		}
	}
	return Tick{}, false
}

// External follows a MIDI clock stream.
type External struct {
	div   *Divider
	in    <-chan midi.ClockEvent
	ticks chan Tick
}

// NewExternal creates a clock driven by in.
func NewExternal(in <-chan midi.ClockEvent) *External {
	return &External{
		div:   NewDivider(),
		in:    in,
		ticks: make(chan Tick, 4),
	}
}

// Ticks returns the tick channel.
func (c *External) Ticks() <-chan Tick {
	return c.ticks
}

// Run forwards divided ticks until ctx is done or the input closes.
func (c *External) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-c.in:
			if !ok {
				return
			}
			t, ok := c.div.Feed(ev)
			if !ok {
				continue
			}
			select {
			case c.ticks <- t:
			default:
				debug.LogEvery(100, "clock", "external tick dropped")
			}
		}
	}
}
