package sequencer

import "testing"

func runPitch(p *PitchEuclid, out *fakeOut, ticks int) {
	for i := 0; i < ticks; i++ {
		out.tick = uint32(i)
		p.OnTick(uint32(i))
	}
}

func TestPitchEuclidPlaysOnHits(t *testing.T) {
	out := &fakeOut{}
	p := NewPitchEuclid(out, testRand())
	runPitch(p, out, 16)

	var onTicks []uint32
	for _, n := range out.notes {
		if n.on {
			onTicks = append(onTicks, n.tick)
		}
	}
	want := []uint32{0, 3, 6, 8, 11, 14}
	if len(onTicks) != len(want) {
		t.Fatalf("note-on ticks = %v, want %v", onTicks, want)
	}
	for i := range want {
		if onTicks[i] != want[i] {
			t.Fatalf("note-on ticks = %v, want %v", onTicks, want)
		}
	}
}

func TestPitchEuclidNoteLengthReleases(t *testing.T) {
	out := &fakeOut{}
	p := NewPitchEuclid(out, testRand())
	p.SetNoteLength(2)
	runPitch(p, out, 3)

	// on at 0, off two ticks later
	if len(out.notes) != 2 || !out.notes[0].on || out.notes[1].on || out.notes[1].tick != 2 {
		t.Fatalf("notes = %v", out.notes)
	}
}

func TestPitchEuclidDisabledNeverPlays(t *testing.T) {
	out := &fakeOut{}
	p := NewPitchEuclid(out, testRand())
	p.Euclid.Set(8, 8, 0)
	p.SetNoteLength(0)
	runPitch(p, out, 64)

	if len(out.notes) != 0 {
		t.Errorf("disabled sequencer sent %v", out.notes)
	}
}

func TestPitchEuclidDisableReleasesSoundingNote(t *testing.T) {
	out := &fakeOut{}
	p := NewPitchEuclid(out, testRand())
	p.SetNoteLength(8)
	runPitch(p, out, 1)
	p.SetNoteLength(0)
	out.tick = 1
	p.OnTick(1)

	if len(out.notes) != 2 || out.notes[1].on {
		t.Fatalf("notes = %v", out.notes)
	}
}

func TestPitchEuclidMonophonic(t *testing.T) {
	out := &fakeOut{}
	p := NewPitchEuclid(out, testRand())
	p.Euclid.Set(8, 8, 0)
	p.SetNoteLength(4)
	runPitch(p, out, 64)

	if err := checkMonophonic(out.notes); err != nil {
		t.Fatal(err)
	}
	if len(out.noteOns()) != 64 {
		t.Errorf("note-ons = %d, want 64", len(out.noteOns()))
	}
}

func TestPitchEuclidMutedAdvancesSilently(t *testing.T) {
	out := &fakeOut{}
	p := NewPitchEuclid(out, testRand())
	p.SetMuted(true)
	runPitch(p, out, 8)

	if len(out.notes) != 0 {
		t.Errorf("muted sequencer sent %v", out.notes)
	}
	if p.State().Cursor != 3 {
		t.Errorf("cursor = %d, want 3", p.State().Cursor)
	}
}

func TestPitchEuclidPitchesStayInScale(t *testing.T) {
	out := &fakeOut{}
	p := NewPitchEuclid(out, testRand())
	p.SetScale(16) // major triad
	p.SetOctaves(2)
	p.SetPitchLength(MaxPitchLength)

	allowed := map[int]bool{}
	for oct := 0; oct <= 2; oct++ {
		for _, iv := range ScaleAt(16).Intervals {
			allowed[oct*12+int(iv)] = true
		}
	}
	for _, v := range p.State().Pitches {
		if !allowed[v] {
			t.Errorf("pitch offset %d not in major triad over 3 octaves", v)
		}
	}
}

func TestPitchEuclidSequenceFixedAcrossTicks(t *testing.T) {
	out := &fakeOut{}
	p := NewPitchEuclid(out, testRand())
	before := p.State().Pitches
	runPitch(p, out, 100)
	after := p.State().Pitches
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("sequence changed during playback: %v -> %v", before, after)
		}
	}
}

func TestPitchEuclidUnknownScaleFallsBack(t *testing.T) {
	p := NewPitchEuclid(&fakeOut{}, testRand())
	p.SetScale(NumScales + 3)
	if p.State().ScaleIndex != 0 {
		t.Errorf("scale index = %d, want 0", p.State().ScaleIndex)
	}
}

func TestPitchEuclidOutOfRangeSkipped(t *testing.T) {
	out := &fakeOut{}
	p := NewPitchEuclid(out, testRand())
	p.SetBasePitch(127)
	p.SetScale(16)
	p.SetOctaves(1) // every offset is > 0 except the root
	runPitch(p, out, 32)

	for _, n := range out.notes {
		if n.on && n.note != 127 {
			t.Fatalf("sent pitch %d, only the root fits below 128", n.note)
		}
	}
}
