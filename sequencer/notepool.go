package sequencer

import (
	"cmp"
	"slices"
)

// MaxHeldNotes is the capacity of the note pool.
const MaxHeldNotes = 8

// HeldNote is a key currently held down.
type HeldNote struct {
	Pitch    uint8
	Velocity uint8
}

// NotePool tracks held notes in insertion order. It never grows: note-ons
// beyond capacity are dropped.
type NotePool struct {
	notes [MaxHeldNotes]HeldNote
	n     int
}

// Add inserts a note unless the pool is full, the pitch is already held or
// it is not a MIDI note number.
// It reports whether the pool changed.
func (p *NotePool) Add(pitch, velocity uint8) bool {
	if pitch > 127 || p.n >= MaxHeldNotes || p.index(pitch) >= 0 {
		return false
	}
	p.notes[p.n] = HeldNote{Pitch: pitch, Velocity: velocity & 0x7F}
	p.n++
	return true
}

// Remove deletes the note with the given pitch, keeping the order of the
// rest. It reports whether the pool changed.
func (p *NotePool) Remove(pitch uint8) bool {
	i := p.index(pitch)
	if i < 0 {
		return false
	}
	copy(p.notes[i:p.n-1], p.notes[i+1:p.n])
	p.n--
	p.notes[p.n] = HeldNote{}
	return true
}

// Clear releases every note.
func (p *NotePool) Clear() {
	p.n = 0
}

// Len returns the number of held notes.
func (p *NotePool) Len() int {
	return p.n
}

// Notes returns the held notes in insertion order.
func (p *NotePool) Notes() []HeldNote {
	return p.notes[:p.n]
}

func (p *NotePool) index(pitch uint8) int {
	for i := 0; i < p.n; i++ {
		if p.notes[i].Pitch == pitch {
			return i
		}
	}
	return -1
}

// Ordered writes the held notes into dst in the order the style traverses
// them and returns the count: ascending pitch for the up family, descending
// for the down family, insertion order otherwise. Equal pitches cannot occur,
// but the sort is stable regardless.
func (p *NotePool) Ordered(style Style, dst *[MaxHeldNotes]HeldNote) int {
	n := copy(dst[:], p.notes[:p.n])
	switch {
	case style == StyleOrder:
	case style.descending():
		slices.SortStableFunc(dst[:n], func(a, b HeldNote) int { return cmp.Compare(b.Pitch, a.Pitch) })
	default:
		slices.SortStableFunc(dst[:n], func(a, b HeldNote) int { return cmp.Compare(a.Pitch, b.Pitch) })
	}
	return n
}
