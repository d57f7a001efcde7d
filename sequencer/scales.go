package sequencer

import "math/rand"

// Scale is a named interval set, semitones from the root.
type Scale struct {
	Name      string
	Intervals []uint8
}

// Scale catalog. Index 0 is the fallback for unknown selections.
var scales = [...]Scale{
	{"Ionian", []uint8{0, 2, 4, 5, 7, 9, 11}},
	{"Aeolian", []uint8{0, 2, 3, 5, 7, 8, 10}},

	{"Harm Min", []uint8{0, 2, 3, 5, 7, 8, 11}},
	{"Mel Min", []uint8{0, 2, 3, 5, 7, 9, 11}},
	{"Lyd Dom", []uint8{0, 2, 4, 6, 7, 9, 10}},

	{"Whole Tone", []uint8{0, 2, 4, 6, 8, 10}},
	{"Dim W-H", []uint8{0, 2, 3, 5, 6, 8, 9, 11}},
	{"Dim H-W", []uint8{0, 1, 3, 4, 6, 7, 9, 10}},

	{"Blues", []uint8{0, 3, 5, 6, 7, 10}},
	{"Maj Penta", []uint8{0, 2, 4, 7, 9}},
	{"Min Penta", []uint8{0, 3, 5, 7, 10}},
	{"Sus Penta", []uint8{0, 2, 5, 7, 10}},
	{"In Sen", []uint8{0, 1, 5, 7, 10}},

	{"Maj Bebop", []uint8{0, 2, 4, 5, 7, 8, 9, 11}},
	{"Dom Bebop", []uint8{0, 2, 4, 5, 7, 9, 10, 11}},
	{"Min Bebop", []uint8{0, 2, 3, 5, 7, 8, 9, 10}},

	{"Maj Arp", []uint8{0, 4, 7}},
	{"Min Arp", []uint8{0, 3, 7}},
	{"Maj7 Arp", []uint8{0, 4, 7, 11}},
	{"Dom7 Arp", []uint8{0, 4, 7, 10}},
	{"Min7 Arp", []uint8{0, 3, 7, 10}},
}

// NumScales is the size of the scale catalog.
const NumScales = len(scales)

// ScaleAt returns the scale at index i, or the first scale when i is out of range.
func ScaleAt(i int) Scale {
	if i < 0 || i >= NumScales {
		return scales[0]
	}
	return scales[i]
}

// ScaleNames lists the catalog in index order.
func ScaleNames() []string {
	names := make([]string, NumScales)
	for i, s := range scales {
		names[i] = s.Name
	}
	return names
}

// RandomScalePitch picks a random interval of s shifted by a random whole
// number of octaves in 0..octaves.
func RandomScalePitch(rng *rand.Rand, s Scale, octaves int) uint8 {
	if len(s.Intervals) == 0 {
		return 0
	}
	if octaves < 0 {
		octaves = 0
	}
	interval := s.Intervals[rng.Intn(len(s.Intervals))]
	octave := rng.Intn(octaves + 1)
	return uint8(octave*12) + interval
}
