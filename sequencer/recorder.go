package sequencer

// Phrase recorder modes
const (
	PhraseIdle = iota
	PhraseRecording
	PhrasePlaying
)

const (
	DefaultPhraseLength = 32
	restPitch           = 0xFF
)

// PhraseRecorder captures the arpeggiator output into a fixed-length phrase
// of 16th-note slots and can loop it back on its own channel.
type PhraseRecorder struct {
	out NoteSender

	pitches    [MaxArpLen]uint8
	velocities [MaxArpLen]uint8
	length     int
	start      uint32
	mode       int
	channel    uint8
	sounding   int
}

// NewPhraseRecorder creates an idle recorder with a 32-step phrase.
func NewPhraseRecorder(out NoteSender) *PhraseRecorder {
	r := &PhraseRecorder{
		out:      out,
		length:   DefaultPhraseLength,
		sounding: noPitch,
	}
	r.Clear()
	return r
}

// Arm starts recording at counter. Recording stops by itself after one
// phrase length.
func (r *PhraseRecorder) Arm(counter uint32) {
	r.Silence()
	r.Clear()
	r.start = counter
	r.mode = PhraseRecording
}

// Play loops the recorded phrase starting at counter.
func (r *PhraseRecorder) Play(counter uint32) {
	r.start = counter
	r.mode = PhrasePlaying
}

// Stop returns to idle and releases any sounding note.
func (r *PhraseRecorder) Stop() {
	r.Silence()
	r.mode = PhraseIdle
}

// Restart re-anchors recording or playback at counter, which becomes slot
// 0. The engine calls it when the tick counter is reset.
func (r *PhraseRecorder) Restart(counter uint32) {
	r.start = counter
}

// Clear empties every slot.
func (r *PhraseRecorder) Clear() {
	for i := range r.pitches {
		r.pitches[i] = restPitch
		r.velocities[i] = 0
	}
}

// SetLength sets the phrase length in steps (1..MaxArpLen).
func (r *PhraseRecorder) SetLength(n int) {
	r.length = clampInt(n, 1, MaxArpLen)
}

// SetChannel sets the playback channel.
func (r *PhraseRecorder) SetChannel(ch uint8) {
	r.Silence()
	r.channel = ch & 0x0F
}

func (r *PhraseRecorder) position(counter uint32) (int, bool) {
	elapsed := counter - r.start
	return int(elapsed % uint32(r.length)), elapsed >= uint32(r.length)
}

// Record stores a fired step at its slot while recording.
func (r *PhraseRecorder) Record(counter uint32, channel uint8, step ArpStep) {
	if r.mode != PhraseRecording {
		return
	}
	pos, done := r.position(counter)
	if done {
		r.mode = PhraseIdle
		return
	}
	r.pitches[pos] = step.Pitch
	r.velocities[pos] = step.Velocity
}

// OnTick ends a finished recording and plays slots back while playing.
func (r *PhraseRecorder) OnTick(counter uint32) {
	pos, done := r.position(counter)
	switch r.mode {
	case PhraseRecording:
		if done {
			r.mode = PhraseIdle
		}
	case PhrasePlaying:
		if r.pitches[pos] == restPitch {
			return
		}
		r.Silence()
		r.out.NoteOn(r.channel, r.pitches[pos], r.velocities[pos])
		r.sounding = int(r.pitches[pos])
	}
}

// Silence releases the sounding playback note, if any.
func (r *PhraseRecorder) Silence() {
	if r.sounding != noPitch {
		r.out.NoteOff(r.channel, uint8(r.sounding))
		r.sounding = noPitch
	}
}

// PhraseState is a read-only view of the recorder. Rests are -1.
type PhraseState struct {
	Mode    string `json:"mode"`
	Length  int    `json:"length"`
	Channel uint8  `json:"channel"`
	Pitches []int  `json:"pitches"`
}

var phraseModeNames = [...]string{"IDLE", "REC", "PLAY"}

// State returns a copy of the phrase.
func (r *PhraseRecorder) State() PhraseState {
	pitches := make([]int, r.length)
	for i := range pitches {
		if r.pitches[i] == restPitch {
			pitches[i] = -1
		} else {
			pitches[i] = int(r.pitches[i])
		}
	}
	return PhraseState{
		Mode:    phraseModeNames[r.mode],
		Length:  r.length,
		Channel: r.channel,
		Pitches: pitches,
	}
}
