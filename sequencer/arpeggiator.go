package sequencer

import (
	"math/rand"

	"go-arp/debug"
)

// Arpeggiator limits
const (
	MaxArpOctaves = 4
	MaxArpTimes   = 8
	MaxArpSpeed   = 32
)

// Recorder receives every note the arpeggiator fires. Attaching one is
// optional; the arpeggiator works the same without it.
type Recorder interface {
	Record(counter uint32, channel uint8, step ArpStep)
}

// Arpeggiator turns held notes into a clocked note stream. The playback
// buffer is rebuilt only when notes or settings change; ticks just walk it.
type Arpeggiator struct {
	pool     NotePool
	ordered  [MaxHeldNotes]HeldNote
	pattern  Pattern
	player   *Player
	recorder Recorder
	rng      *rand.Rand

	channel  uint8
	style    Style
	octaves  int
	times    int
	velocity int // fixed output velocity, 0 keeps input velocity
}

// NewArpeggiator creates an idle arpeggiator: style UP, one step per tick,
// one octave, each note once.
func NewArpeggiator(out NoteSender, rng *rand.Rand) *Arpeggiator {
	return &Arpeggiator{
		player: NewPlayer(out),
		rng:    rng,
		style:  StyleUp,
		times:  1,
	}
}

// AddNote holds a note. Duplicates and notes beyond capacity are ignored.
func (a *Arpeggiator) AddNote(pitch, velocity uint8) {
	if a.velocity > 0 {
		velocity = uint8(a.velocity)
	}
	if a.pool.Add(pitch, velocity) {
		a.regenerate()
	}
}

// RemoveNote releases a held note.
func (a *Arpeggiator) RemoveNote(pitch uint8) {
	if a.pool.Remove(pitch) {
		a.regenerate()
	}
}

// ReleaseAll drops every held note and silences the output.
func (a *Arpeggiator) ReleaseAll() {
	a.pool.Clear()
	a.regenerate()
}

// OnTick advances playback by one 16th note.
func (a *Arpeggiator) OnTick(counter uint32) {
	pass := a.player.Cursor().Pass
	step, fired := a.player.Tick(&a.pattern)
	if !fired {
		return
	}
	if a.recorder != nil {
		a.recorder.Record(counter, a.channel, step)
	}
	// RANDOM draws fresh notes on every pass
	if a.style == StyleRandom && a.player.Cursor().Pass != pass {
		a.build()
	}
}

// Silence releases the sounding note without touching held notes.
func (a *Arpeggiator) Silence() {
	a.player.Silence()
}

// SetRecorder attaches a recorder, or detaches it when r is nil.
func (a *Arpeggiator) SetRecorder(r Recorder) {
	a.recorder = r
}

// SetStyle selects the traversal style. Unknown styles select UP.
func (a *Arpeggiator) SetStyle(s Style) {
	if !s.Valid() {
		s = StyleUp
	}
	a.style = s
	a.regenerate()
}

// SetSpeed sets the ticks per step.
func (a *Arpeggiator) SetSpeed(ticks int) {
	if ticks > MaxArpSpeed {
		ticks = MaxArpSpeed
	}
	a.player.setSpeed(ticks)
}

// SetOctaves sets how many octaves above the held notes are appended.
func (a *Arpeggiator) SetOctaves(n int) {
	a.octaves = clampInt(n, 0, MaxArpOctaves)
	a.regenerate()
}

// SetTimes sets how often each step repeats before the next.
func (a *Arpeggiator) SetTimes(n int) {
	a.times = clampInt(n, 1, MaxArpTimes)
	a.regenerate()
}

// SetRetrigger sets the retrigger policy; every is the beat length in steps
// for RetrigBeat.
func (a *Arpeggiator) SetRetrigger(r Retrigger, every int) {
	a.player.setRetrigger(r, every)
}

// SetChannel sets the output channel.
func (a *Arpeggiator) SetChannel(ch uint8) {
	a.channel = ch & 0x0F
	a.player.setChannel(ch)
}

// SetVelocity fixes the velocity of newly held notes (1-127), or keeps the
// played velocity when v is 0.
func (a *Arpeggiator) SetVelocity(v int) {
	a.velocity = clampInt(v, 0, 127)
}

func (a *Arpeggiator) regenerate() {
	a.build()
	a.player.Reset(&a.pattern)
	if debug.Enabled() {
		debug.Log("arp", "%s notes=%d oct=%d times=%d len=%d", a.style, a.pool.Len(), a.octaves, a.times, a.pattern.Len())
	}
}

func (a *Arpeggiator) build() {
	n := a.pool.Ordered(a.style, &a.ordered)
	a.pattern.Build(a.style, a.ordered[:n], a.octaves, a.times, a.rng)
}

// ArpState is a read-only view of the arpeggiator.
type ArpState struct {
	Style       string     `json:"style"`
	Speed       int        `json:"speed"`
	Octaves     int        `json:"octaves"`
	Times       int        `json:"times"`
	Retrigger   string     `json:"retrigger"`
	RetrigSpeed int        `json:"retrigSpeed"`
	Channel     uint8      `json:"channel"`
	Velocity    int        `json:"velocity"`
	Playing     bool       `json:"playing"`
	Held        []HeldNote `json:"held"`
	Buffer      []int      `json:"buffer"`
	Cursor      Cursor     `json:"cursor"`
	Sounding    int        `json:"sounding"`
}

// State returns a copy of the arpeggiator settings and buffer.
func (a *Arpeggiator) State() ArpState {
	held := append([]HeldNote(nil), a.pool.Notes()...)
	return ArpState{
		Style:       a.style.String(),
		Speed:       a.player.speed,
		Octaves:     a.octaves,
		Times:       a.times,
		Retrigger:   a.player.retrig.String(),
		RetrigSpeed: a.player.retrigSpeed,
		Channel:     a.channel,
		Velocity:    a.velocity,
		Playing:     a.player.Playing(&a.pattern),
		Held:        held,
		Buffer:      a.bufferPitches(),
		Cursor:      a.player.Cursor(),
		Sounding:    a.player.Sounding(),
	}
}

func (a *Arpeggiator) bufferPitches() []int {
	out := make([]int, a.pattern.Len())
	for i, s := range a.pattern.Steps() {
		out[i] = int(s.Pitch)
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
