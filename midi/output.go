package midi

import (
	"strings"
	"sync"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-arp/debug"
)

// Machinedrum parameter CC bases for the four tracks sharing a channel.
var mdParamCCBase = [4]uint8{16, 40, 72, 96}

// ParamCC maps a Machinedrum track (0-15) and parameter (0-23) to the channel
// offset from the base channel and the controller number.
func ParamCC(track, param uint8) (channelOffset, cc uint8) {
	return track / 4, mdParamCCBase[track%4] + param
}

// TrackParamFromCC reverses ParamCC. ok is false for controllers outside the
// parameter ranges.
func TrackParamFromCC(channelOffset, cc uint8) (track, param uint8, ok bool) {
	if channelOffset > 3 {
		return 0, 0, false
	}
	for i, base := range mdParamCCBase {
		if cc >= base && cc < base+24 {
			return channelOffset*4 + uint8(i), cc - base, true
		}
	}
	return 0, 0, false
}

// Output sends engine output to a MIDI port. Sends are fire-and-forget:
// failures are logged, never returned to the tick path.
type Output struct {
	name        string
	send        func(gomidi.Message) error
	baseChannel uint8 // Machinedrum base channel (0-15)

	mu sync.Mutex
}

// NewOutput wraps an already opened send function.
func NewOutput(name string, send func(gomidi.Message) error, baseChannel uint8) *Output {
	return &Output{
		name:        name,
		send:        send,
		baseChannel: baseChannel & 0x0F,
	}
}

// OpenOutput finds an output port by name (exact match first, then
// case-insensitive substring) and opens it.
func OpenOutput(portName string, baseChannel uint8) (*Output, error) {
	port, err := findOutPort(portName)
	if err != nil {
		return nil, err
	}
	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("open output port "+port.String()))
	}
	debug.Log("midi", "opened output %q", port.String())
	return NewOutput(port.String(), send, baseChannel), nil
}

func findOutPort(portName string) (drivers.Out, error) {
	outs := gomidi.GetOutPorts()
	for _, p := range outs {
		if p.String() == portName {
			return p, nil
		}
	}
	want := strings.ToLower(portName)
	for _, p := range outs {
		if strings.Contains(strings.ToLower(p.String()), want) {
			return p, nil
		}
	}
	return nil, fault.New("output port not found", fmsg.WithDesc(portName, "No MIDI output port matches "+portName))
}

// Name returns the port name.
func (o *Output) Name() string {
	return o.name
}

// NoteOn sends a note-on on the given channel.
func (o *Output) NoteOn(channel, note, velocity uint8) {
	o.write(gomidi.NoteOn(channel&0x0F, note&0x7F, velocity&0x7F))
}

// NoteOff sends a note-off (velocity 0) on the given channel.
func (o *Output) NoteOff(channel, note uint8) {
	o.write(gomidi.NoteOff(channel&0x0F, note&0x7F))
}

// SetTrackParam sends a Machinedrum track parameter as a control change.
func (o *Output) SetTrackParam(track, param, value uint8) {
	off, cc := ParamCC(track&0x0F, param)
	o.write(gomidi.ControlChange((o.baseChannel+off)&0x0F, cc, value&0x7F))
}

func (o *Output) write(msg gomidi.Message) {
	if o.send == nil {
		return
	}
	o.mu.Lock()
	err := o.send(msg)
	o.mu.Unlock()
	if err != nil {
		debug.LogEvery(64, "midi", "send to %s failed: %v", o.name, err)
	}
}

// ListPorts returns the names of all input and output ports.
func ListPorts() (ins, outs []string) {
	for _, p := range gomidi.GetInPorts() {
		ins = append(ins, p.String())
	}
	for _, p := range gomidi.GetOutPorts() {
		outs = append(outs, p.String())
	}
	return ins, outs
}

// CloseDriver releases the MIDI driver.
func CloseDriver() {
	gomidi.CloseDriver()
}
