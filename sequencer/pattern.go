package sequencer

import (
	"math/rand"
	"strings"
)

// MaxArpLen is the capacity of the playback buffer.
const MaxArpLen = 64

// Style is an arpeggio traversal order.
type Style int

const (
	StyleUp Style = iota
	StyleDown
	StyleUpDown
	StyleDownUp
	StyleUpAndDown
	StyleDownAndUp
	StyleConverge
	StyleDiverge
	StyleConAndDiverge
	StylePinkyUp
	StylePinkyUpDown
	StyleThumbUp
	StyleThumbUpDown
	StyleRandom
	StyleRandomOnce
	StyleOrder
	NumStyles
)

var styleNames = [NumStyles]string{
	"UP", "DOWN", "UPDOWN", "DOWNUP", "UP&DOWN", "DOWN&UP",
	"CONV", "DIV", "CON&DIV",
	"PINKYUP", "PINKYUD", "THUMBUP", "THUMBUD",
	"RANDOM", "RANDOM1", "ORDER",
}

func (s Style) String() string {
	if !s.Valid() {
		return styleNames[StyleUp]
	}
	return styleNames[s]
}

// Valid reports whether s names one of the styles.
func (s Style) Valid() bool {
	return s >= 0 && s < NumStyles
}

func (s Style) descending() bool {
	return s == StyleDown || s == StyleDownUp || s == StyleDownAndUp
}

// ParseStyle looks a style up by name, case-insensitively.
func ParseStyle(name string) (Style, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for i, n := range styleNames {
		if n == name {
			return Style(i), true
		}
	}
	return StyleUp, false
}

// StyleNames lists all styles in enum order.
func StyleNames() []string {
	return append([]string(nil), styleNames[:]...)
}

// ArpStep is one entry of the playback buffer.
type ArpStep struct {
	Pitch    uint8
	Velocity uint8
}

// longest traversal: pinky/thumb up-down over 8 notes
const maxTraversal = 4 * MaxHeldNotes

// traversal is a fixed-capacity list of indices into the ordered notes.
type traversal struct {
	idx [maxTraversal]uint8
	n   int
}

func (t *traversal) push(i int) {
	if t.n < maxTraversal {
		t.idx[t.n] = uint8(i)
		t.n++
	}
}

// bounce appends lo..hi-1 then back down, without repeating either end.
func (t *traversal) bounce(lo, hi int) {
	for i := lo; i < hi; i++ {
		t.push(i)
	}
	for i := hi - 2; i > lo; i-- {
		t.push(i)
	}
}

// converge appends outer notes first: lo, hi-1, lo+1, hi-2, ...
func (t *traversal) converge(n int) {
	for lo, hi := 0, n-1; lo <= hi; lo, hi = lo+1, hi-1 {
		t.push(lo)
		if lo != hi {
			t.push(hi)
		}
	}
}

// diverge is converge reversed: the middle first, the outer notes last.
func (t *traversal) diverge(n int) {
	var c traversal
	c.converge(n)
	for i := c.n - 1; i >= 0; i-- {
		t.push(int(c.idx[i]))
	}
}

// interleave appends the bounce over lo..hi-1, putting fixed after (pinky)
// or before (thumb) every step.
func (t *traversal) interleave(lo, hi, fixed int, before bool) {
	var b traversal
	b.bounce(lo, hi)
	for _, i := range b.idx[:b.n] {
		if before {
			t.push(fixed)
		}
		t.push(int(i))
		if !before {
			t.push(fixed)
		}
	}
}

// traverse fills t with the visiting order of n ordered notes for style.
func (t *traversal) traverse(style Style, n int, rng *rand.Rand) {
	t.n = 0
	if n == 0 {
		return
	}
	if n == 1 {
		t.push(0)
		return
	}

	switch style {
	case StyleUpDown, StyleDownUp:
		t.bounce(0, n)
	case StyleUpAndDown, StyleDownAndUp:
		for i := 0; i < n; i++ {
			t.push(i)
		}
		for i := n - 1; i >= 0; i-- {
			t.push(i)
		}
	case StyleConverge:
		t.converge(n)
	case StyleDiverge:
		t.diverge(n)
	case StyleConAndDiverge:
		t.converge(n)
		var d traversal
		d.diverge(n)
		for _, i := range d.idx[1:d.n] {
			t.push(int(i))
		}
	case StylePinkyUp:
		for i := 0; i < n-1; i++ {
			t.push(i)
			t.push(n - 1)
		}
	case StylePinkyUpDown:
		t.interleave(0, n-1, n-1, false)
	case StyleThumbUp:
		for i := 1; i < n; i++ {
			t.push(0)
			t.push(i)
		}
	case StyleThumbUpDown:
		t.interleave(1, n, 0, true)
	case StyleRandom:
		for i := 0; i < n; i++ {
			t.push(rng.Intn(n))
		}
	case StyleRandomOnce:
		for i := 0; i < n; i++ {
			t.push(i)
		}
		for i := n - 1; i > 0; i-- {
			j := rng.Intn(i + 1)
			t.idx[i], t.idx[j] = t.idx[j], t.idx[i]
		}
	default: // up, down, order
		for i := 0; i < n; i++ {
			t.push(i)
		}
	}
}

// Pattern is the fixed-capacity playback buffer.
type Pattern struct {
	steps [MaxArpLen]ArpStep
	n     int
	trav  traversal
}

// Build expands the ordered notes into the buffer: the style traversal with
// every step repeated times, appended once per octave 0..octaves. Steps that
// transpose above 127 are skipped; anything past MaxArpLen is dropped.
func (p *Pattern) Build(style Style, ordered []HeldNote, octaves, times int, rng *rand.Rand) {
	p.n = 0
	if times < 1 {
		times = 1
	}
	p.trav.traverse(style, len(ordered), rng)

	for oct := 0; oct <= octaves; oct++ {
		for _, i := range p.trav.idx[:p.trav.n] {
			note := ordered[i]
			pitch := int(note.Pitch) + 12*oct
			if pitch > 127 {
				continue
			}
			for r := 0; r < times; r++ {
				if p.n == MaxArpLen {
					return
				}
				p.steps[p.n] = ArpStep{Pitch: uint8(pitch), Velocity: note.Velocity}
				p.n++
			}
		}
	}
}

// Len returns the number of steps.
func (p *Pattern) Len() int {
	return p.n
}

// Step returns step i. i must be below Len.
func (p *Pattern) Step(i int) ArpStep {
	return p.steps[i]
}

// Steps returns the buffer contents.
func (p *Pattern) Steps() []ArpStep {
	return p.steps[:p.n]
}

// Pitches copies the buffer pitches into a new slice.
func (p *Pattern) Pitches() []uint8 {
	out := make([]uint8, p.n)
	for i := range out {
		out[i] = p.steps[i].Pitch
	}
	return out
}
