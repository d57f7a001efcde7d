package sequencer

// NoteSender transmits notes. Channel is the MIDI channel (0-15) of the
// owning track. Sends are fire-and-forget.
type NoteSender interface {
	NoteOn(channel, note, velocity uint8)
	NoteOff(channel, note uint8)
}

// ParamSender transmits a single synth parameter of a track.
type ParamSender interface {
	SetTrackParam(track, param, value uint8)
}

// Device is a clock-driven note source. OnTick must complete without
// blocking; it runs once per 16th-note tick on the engine goroutine.
type Device interface {
	OnTick(counter uint32)
	// Silence releases any sounding note immediately.
	Silence()
}

// velocity used by generated notes that carry no input velocity
const defaultVelocity = 100
