package midi

import (
	"bytes"
	"os"
	"sync"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Capture records every message it is asked to send, stamped with the tick
// set by Stamp. It stands in for an Output in offline renders and tests.
type Capture struct {
	mu          sync.Mutex
	tick        int64
	events      []Event
	baseChannel uint8
}

// NewCapture creates an empty capture. baseChannel is the Machinedrum base
// channel used for parameter CCs.
func NewCapture(baseChannel uint8) *Capture {
	return &Capture{baseChannel: baseChannel & 0x0F}
}

// Stamp sets the tick recorded on subsequent events.
func (c *Capture) Stamp(tick int64) {
	c.mu.Lock()
	c.tick = tick
	c.mu.Unlock()
}

func (c *Capture) NoteOn(channel, note, velocity uint8) {
	c.add(Event{Type: NoteOn, Channel: channel, Note: note, Velocity: velocity})
}

func (c *Capture) NoteOff(channel, note uint8) {
	c.add(Event{Type: NoteOff, Channel: channel, Note: note})
}

func (c *Capture) SetTrackParam(track, param, value uint8) {
	off, cc := ParamCC(track&0x0F, param)
	c.add(Event{Type: CC, Channel: (c.baseChannel + off) & 0x0F, Note: cc, Velocity: value})
}

func (c *Capture) add(e Event) {
	c.mu.Lock()
	e.Tick = c.tick
	c.events = append(c.events, e)
	c.mu.Unlock()
}

// Events returns a copy of everything captured so far.
func (c *Capture) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Reset drops all captured events.
func (c *Capture) Reset() {
	c.mu.Lock()
	c.events = nil
	c.mu.Unlock()
}

// SMF resolution: 96 ticks per quarter, so one 16th-note tick is 24.
const (
	smfResolution   = 96
	smfTicksPer16th = smfResolution / 4
)

// EncodeSMF renders events as a single-track Standard MIDI File at the given
// tempo. Events must be in tick order, as Capture produces them.
func EncodeSMF(events []Event, bpm float64) ([]byte, error) {
	if bpm <= 0 {
		bpm = 120
	}
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(smfResolution)

	var track smf.Track
	usPerBeat := uint32(60000000.0 / bpm)
	track.Add(0, smf.Message([]byte{
		0xFF, 0x51, 0x03,
		byte(usPerBeat >> 16),
		byte(usPerBeat >> 8),
		byte(usPerBeat),
	}))
	track.Add(0, smf.Message([]byte{0xFF, 0x58, 0x04, 0x04, 0x02, 0x18, 0x08}))

	var last int64
	for _, e := range events {
		at := e.Tick * smfTicksPer16th
		delta := uint32(0)
		if at > last {
			delta = uint32(at - last)
			last = at
		}
		switch e.Type {
		case NoteOn:
			track.Add(delta, gomidi.NoteOn(e.Channel, e.Note, e.Velocity))
		case NoteOff:
			track.Add(delta, gomidi.NoteOff(e.Channel, e.Note))
		case CC:
			track.Add(delta, gomidi.ControlChange(e.Channel, e.Note, e.Velocity))
		}
	}
	track.Close(smfTicksPer16th)

	if err := s.Add(track); err != nil {
		return nil, fault.Wrap(err, fmsg.With("add track"))
	}
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fault.Wrap(err, fmsg.With("encode smf"))
	}
	return buf.Bytes(), nil
}

// WriteSMF encodes events and writes them to path.
func WriteSMF(path string, events []Event, bpm float64) error {
	data, err := EncodeSMF(events, bpm)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fault.Wrap(err, fmsg.With("write "+path))
	}
	return nil
}
