package sequencer

import (
	"fmt"
	"math/rand"
)

type sent struct {
	tick     uint32
	on       bool
	channel  uint8
	note     uint8
	velocity uint8
}

func (s sent) String() string {
	kind := "off"
	if s.on {
		kind = "on"
	}
	return fmt.Sprintf("%d:%s(%d)", s.tick, kind, s.note)
}

// fakeOut records notes and params in send order.
type fakeOut struct {
	tick   uint32
	notes  []sent
	params []paramSent
}

type paramSent struct {
	track, param, value uint8
}

func (f *fakeOut) NoteOn(channel, note, velocity uint8) {
	f.notes = append(f.notes, sent{tick: f.tick, on: true, channel: channel, note: note, velocity: velocity})
}

func (f *fakeOut) NoteOff(channel, note uint8) {
	f.notes = append(f.notes, sent{tick: f.tick, channel: channel, note: note})
}

func (f *fakeOut) SetTrackParam(track, param, value uint8) {
	f.params = append(f.params, paramSent{track, param, value})
}

func (f *fakeOut) noteOns() []uint8 {
	var out []uint8
	for _, n := range f.notes {
		if n.on {
			out = append(out, n.note)
		}
	}
	return out
}

// checkMonophonic fails when two note-ons are not separated by a note-off of
// the first, or a note-off names a pitch that is not sounding.
func checkMonophonic(notes []sent) error {
	sounding := -1
	for i, n := range notes {
		if n.on {
			if sounding != -1 {
				return fmt.Errorf("event %d %v: note-on while %d still sounds", i, n, sounding)
			}
			sounding = int(n.note)
			continue
		}
		if int(n.note) != sounding {
			return fmt.Errorf("event %d %v: note-off for %d, sounding %d", i, n, n.note, sounding)
		}
		sounding = -1
	}
	return nil
}

func testRand() *rand.Rand {
	return rand.New(rand.NewSource(1))
}
