package midi

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
	CC      uint8 = 0xB0
)

// Event is one outbound message as emitted by the engine, stamped with the
// 16th-note tick it was produced on.
type Event struct {
	Tick     int64
	Type     uint8 // NoteOn, NoteOff, CC
	Channel  uint8 // 0-15
	Note     uint8 // note number, or controller number for CC
	Velocity uint8 // velocity, or controller value for CC
}

// NoteEvent is a decoded note from an input port. Velocity 0 means release.
type NoteEvent struct {
	Note     uint8
	Velocity uint8
	Channel  uint8
}

// ControlEvent is a decoded control change from an input port.
type ControlEvent struct {
	Channel    uint8
	Controller uint8
	Value      uint8
}

// ClockEvent is a decoded realtime message from an input port.
type ClockEvent int

const (
	ClockPulse ClockEvent = iota // 24 PPQN timing clock
	ClockStart
	ClockContinue
	ClockStop
)
