package sequencer

import (
	"slices"
	"testing"
)

func recordPhrase(t *testing.T, speed int) (*PhraseRecorder, *fakeOut) {
	t.Helper()
	arpOut, recOut := &fakeOut{}, &fakeOut{}
	a := NewArpeggiator(arpOut, testRand())
	r := NewPhraseRecorder(recOut)
	r.SetLength(4)
	a.SetRecorder(r)
	a.SetSpeed(speed)
	a.AddNote(60, 100)
	a.AddNote(64, 100)

	r.Arm(0)
	for c := uint32(0); c < 6; c++ {
		a.OnTick(c)
		r.OnTick(c)
	}
	return r, recOut
}

func TestPhraseRecordsArpOutput(t *testing.T) {
	r, _ := recordPhrase(t, 1)
	s := r.State()
	if s.Mode != "IDLE" {
		t.Errorf("mode = %s, want IDLE after one phrase", s.Mode)
	}
	if want := []int{60, 64, 60, 64}; !slices.Equal(s.Pitches, want) {
		t.Errorf("phrase = %v, want %v", s.Pitches, want)
	}
}

func TestPhraseKeepsRests(t *testing.T) {
	r, _ := recordPhrase(t, 2)
	if want := []int{60, -1, 64, -1}; !slices.Equal(r.State().Pitches, want) {
		t.Errorf("phrase = %v, want %v", r.State().Pitches, want)
	}
}

func TestPhrasePlayback(t *testing.T) {
	r, out := recordPhrase(t, 1)
	r.SetChannel(5)
	r.Play(10)
	for c := uint32(10); c < 18; c++ {
		out.tick = c
		r.OnTick(c)
	}
	r.Stop()

	if got, want := out.noteOns(), []uint8{60, 64, 60, 64, 60, 64, 60, 64}; !slices.Equal(got, want) {
		t.Errorf("playback = %v, want %v", got, want)
	}
	if err := checkMonophonic(out.notes); err != nil {
		t.Error(err)
	}
	for _, n := range out.notes {
		if n.channel != 5 {
			t.Fatalf("event %v on channel %d", n, n.channel)
		}
	}
}

func TestPhraseIgnoresRecordWhenIdle(t *testing.T) {
	r := NewPhraseRecorder(&fakeOut{})
	r.Record(0, 0, ArpStep{Pitch: 60, Velocity: 100})
	for _, p := range r.State().Pitches {
		if p != -1 {
			t.Fatalf("idle recorder stored %v", r.State().Pitches)
		}
	}
	if r.State().Length != DefaultPhraseLength {
		t.Errorf("length = %d", r.State().Length)
	}
}
