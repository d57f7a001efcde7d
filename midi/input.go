package midi

import (
	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// AnyChannel disables input channel filtering.
const AnyChannel = -1

// Input decodes a MIDI input port into note, control and clock events.
// Events are dropped when the consumer falls behind; the decoder never blocks.
type Input struct {
	id       string
	inPort   drivers.In
	channel  int
	stopFunc func()

	noteChan  chan NoteEvent
	ccChan    chan ControlEvent
	clockChan chan ClockEvent
}

// NewInput creates an input. channel filters note and CC messages (0-15), or
// AnyChannel. A nil port yields an input that never produces events.
func NewInput(id string, inPort drivers.In, channel int) (*Input, error) {
	in := &Input{
		id:        id,
		inPort:    inPort,
		channel:   channel,
		noteChan:  make(chan NoteEvent, 32),
		ccChan:    make(chan ControlEvent, 64),
		clockChan: make(chan ClockEvent, 96),
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			in.Decode(msg)
		}, gomidi.UseTimeCode())
		if err != nil {
			return nil, fault.Wrap(err, fmsg.With("open input "+id))
		}
		in.stopFunc = stop
	}

	return in, nil
}

// Decode routes one message to the matching event channel.
func (in *Input) Decode(msg gomidi.Message) {
	var channel, note, velocity, cc, value uint8

	switch {
	case msg.Is(gomidi.TimingClockMsg):
		in.pushClock(ClockPulse)
	case msg.Is(gomidi.StartMsg):
		in.pushClock(ClockStart)
	case msg.Is(gomidi.ContinueMsg):
		in.pushClock(ClockContinue)
	case msg.Is(gomidi.StopMsg):
		in.pushClock(ClockStop)
	case msg.GetNoteStart(&channel, &note, &velocity):
		if in.accepts(channel) {
			select {
			case in.noteChan <- NoteEvent{Note: note, Velocity: velocity, Channel: channel}:
			default:
			}
		}
	case msg.GetNoteEnd(&channel, &note):
		if in.accepts(channel) {
			select {
			case in.noteChan <- NoteEvent{Note: note, Velocity: 0, Channel: channel}:
			default:
			}
		}
	case msg.GetControlChange(&channel, &cc, &value):
		select {
		case in.ccChan <- ControlEvent{Channel: channel, Controller: cc, Value: value}:
		default:
		}
	}
}

func (in *Input) accepts(channel uint8) bool {
	return in.channel == AnyChannel || int(channel) == in.channel
}

func (in *Input) pushClock(e ClockEvent) {
	select {
	case in.clockChan <- e:
	default:
	}
}

func (in *Input) ID() string {
	return in.id
}

func (in *Input) NoteEvents() <-chan NoteEvent {
	return in.noteChan
}

func (in *Input) ControlEvents() <-chan ControlEvent {
	return in.ccChan
}

func (in *Input) ClockEvents() <-chan ClockEvent {
	return in.clockChan
}

// Close stops listening. Event channels are left open so consumers selecting
// on them do not spin on a closed channel.
func (in *Input) Close() error {
	if in.stopFunc != nil {
		in.stopFunc()
		in.stopFunc = nil
	}
	return nil
}
