package sequencer

import (
	"math/rand"

	"go-arp/debug"
)

// MaxPitchLength is the capacity of the pitch sequence.
const MaxPitchLength = 16

// MaxPitchOctaves bounds the random octave span of the pitch sequence.
const MaxPitchOctaves = 4

const noPitch = -1

// PitchEuclid plays a looping sequence of random scale pitches on the hits
// of a euclidean rhythm. It is monophonic: a new note always releases the
// previous one first.
type PitchEuclid struct {
	Euclid Euclid

	out NoteSender
	rng *rand.Rand

	channel    uint8
	basePitch  int
	scale      int
	octaves    int
	noteLength int // ticks; 0 disables the sequencer
	muted      bool

	pitches [MaxPitchLength]uint8
	length  int
	cursor  int

	lastPitch  int // sounding pitch or noPitch
	lastLength int // ticks until lastPitch is released
}

// NewPitchEuclid creates a sequencer on a 3-in-8 rhythm with four random
// pitches of the first scale.
func NewPitchEuclid(out NoteSender, rng *rand.Rand) *PitchEuclid {
	p := &PitchEuclid{
		Euclid:     NewEuclid(3, 8, 0),
		out:        out,
		rng:        rng,
		basePitch:  48,
		noteLength: 1,
		lastPitch:  noPitch,
	}
	p.SetPitchLength(4)
	return p
}

// OnTick advances the sequencer by one 16th note.
func (p *PitchEuclid) OnTick(counter uint32) {
	if p.lastLength > 0 {
		p.lastLength--
	}
	if p.lastPitch != noPitch && (p.noteLength == 0 || p.lastLength == 0) {
		p.release()
	}

	if p.noteLength == 0 {
		return
	}

	if !p.Euclid.IsHit(counter) {
		return
	}

	pitch := p.basePitch + int(p.pitches[p.cursor])
	if p.lastPitch != noPitch {
		p.release()
	}
	if pitch <= 127 && !p.muted {
		p.out.NoteOn(p.channel, uint8(pitch), defaultVelocity)
		p.lastPitch = pitch
		p.lastLength = p.noteLength
	}
	p.cursor = (p.cursor + 1) % p.length
}

// Silence releases the sounding note, if any.
func (p *PitchEuclid) Silence() {
	if p.lastPitch != noPitch {
		p.release()
	}
	p.lastLength = 0
}

func (p *PitchEuclid) release() {
	p.out.NoteOff(p.channel, uint8(p.lastPitch))
	p.lastPitch = noPitch
}

// SetPitchLength sets the sequence length (1..MaxPitchLength) and draws new pitches.
func (p *PitchEuclid) SetPitchLength(n int) {
	if n < 1 {
		n = 1
	}
	if n > MaxPitchLength {
		n = MaxPitchLength
	}
	p.length = n
	p.cursor = 0
	p.Randomize()
}

// SetScale selects a scale by catalog index and draws new pitches. Unknown
// indices select the first scale.
func (p *PitchEuclid) SetScale(i int) {
	if i < 0 || i >= NumScales {
		i = 0
	}
	p.scale = i
	p.Randomize()
}

// SetOctaves sets the random octave span and draws new pitches.
func (p *PitchEuclid) SetOctaves(n int) {
	if n < 0 {
		n = 0
	}
	if n > MaxPitchOctaves {
		n = MaxPitchOctaves
	}
	p.octaves = n
	p.Randomize()
}

// Randomize redraws every pitch of the sequence.
func (p *PitchEuclid) Randomize() {
	s := ScaleAt(p.scale)
	for i := 0; i < p.length; i++ {
		p.pitches[i] = RandomScalePitch(p.rng, s, p.octaves)
	}
	debug.Log("euclid", "pitches %v scale=%s", p.pitches[:p.length], s.Name)
}

// SetNoteLength sets the gate in ticks. 0 disables note output.
func (p *PitchEuclid) SetNoteLength(ticks int) {
	if ticks < 0 {
		ticks = 0
	}
	p.noteLength = ticks
}

// SetBasePitch sets the pitch added to every sequence value.
func (p *PitchEuclid) SetBasePitch(pitch int) {
	if pitch < 0 {
		pitch = 0
	}
	if pitch > 127 {
		pitch = 127
	}
	p.basePitch = pitch
}

// SetChannel sets the output channel, releasing any note on the old one.
func (p *PitchEuclid) SetChannel(ch uint8) {
	p.Silence()
	p.channel = ch & 0x0F
}

// SetMuted suppresses note-ons; the sequence keeps advancing.
func (p *PitchEuclid) SetMuted(m bool) {
	p.muted = m
}

// PitchState is a read-only view of the sequencer.
type PitchState struct {
	Pulses     int    `json:"pulses"`
	Steps      int    `json:"steps"`
	Rotation   int    `json:"rotation"`
	Pattern    []bool `json:"pattern"`
	Scale      string `json:"scale"`
	ScaleIndex int    `json:"scaleIndex"`
	Octaves    int    `json:"octaves"`
	NoteLength int    `json:"noteLength"`
	BasePitch  int    `json:"basePitch"`
	Channel    uint8  `json:"channel"`
	Muted      bool   `json:"muted"`
	Pitches    []int  `json:"pitches"`
	Cursor     int    `json:"cursor"`
}

// State returns a copy of the sequencer settings and pitches.
func (p *PitchEuclid) State() PitchState {
	pitches := make([]int, p.length)
	for i := range pitches {
		pitches[i] = int(p.pitches[i])
	}
	return PitchState{
		Pulses:     p.Euclid.Pulses,
		Steps:      p.Euclid.Steps,
		Rotation:   p.Euclid.Rotation,
		Pattern:    p.Euclid.Pattern(),
		Scale:      ScaleAt(p.scale).Name,
		ScaleIndex: p.scale,
		Octaves:    p.octaves,
		NoteLength: p.noteLength,
		BasePitch:  p.basePitch,
		Channel:    p.channel,
		Muted:      p.muted,
		Pitches:    pitches,
		Cursor:     p.cursor,
	}
}
