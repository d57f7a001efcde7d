package sequencer

import "testing"

func newTestRandomizer(depth int) (*Randomizer, *fakeOut) {
	out := &fakeOut{}
	return NewRandomizer(NewKit("test"), out, testRand(), depth), out
}

func TestRandomizeZeroAmountIsNoop(t *testing.T) {
	r, out := newTestRandomizer(1)
	before := r.Params()
	if r.Randomize(0, SelectAll) {
		t.Error("amount 0 reported a change")
	}
	if r.Params() != before || len(out.params) != 0 || r.UndoLen() != 0 {
		t.Error("amount 0 changed state")
	}
}

func TestRandomizeUnknownSelectionIsNoop(t *testing.T) {
	r, out := newTestRandomizer(1)
	for _, sel := range []int{-1, NumSelects, 99} {
		if r.Randomize(20, sel) {
			t.Errorf("selection %d reported a change", sel)
		}
	}
	if len(out.params) != 0 || r.UndoLen() != 0 {
		t.Error("unknown selection changed state")
	}
}

func TestRandomizeOnlyTouchesMask(t *testing.T) {
	r, out := newTestRandomizer(1)
	r.SetTrack(5)
	if !r.Randomize(10, SelectFilter) {
		t.Fatal("randomize reported no change")
	}
	p := r.Params()
	mask, _ := SelectMask(SelectFilter)
	for i, v := range p {
		if !mask.Has(i) {
			if v != 64 {
				t.Errorf("%s changed to %d", ParamName(i), v)
			}
			continue
		}
		if v < 54 || v > 74 {
			t.Errorf("%s = %d, outside 64±10", ParamName(i), v)
		}
	}
	if len(out.params) != 3 {
		t.Fatalf("sent %d params, want 3", len(out.params))
	}
	for _, s := range out.params {
		if s.track != 5 || !mask.Has(int(s.param)) || s.value != p[s.param] {
			t.Errorf("unexpected send %+v", s)
		}
	}
}

func TestRandomizeClamps(t *testing.T) {
	r, _ := newTestRandomizer(1)
	for i := 0; i < NumParams; i++ {
		r.SetParam(0, i, 125)
	}
	for n := 0; n < 20; n++ {
		r.Randomize(-127, SelectAll)
		for i, v := range r.Params() {
			if v > 127 {
				t.Fatalf("%s = %d after randomize", ParamName(i), v)
			}
		}
	}
}

func TestUndoRestores(t *testing.T) {
	r, out := newTestRandomizer(1)
	r.SetParam(0, ParamVOL, 100)
	before := r.Params()
	r.Randomize(127, SelectAll)
	if r.Params() == before {
		t.Fatal("randomize left every parameter unchanged")
	}
	out.params = nil

	if !r.Undo() {
		t.Fatal("undo reported nothing to undo")
	}
	if r.Params() != before {
		t.Errorf("params after undo = %v, want %v", r.Params(), before)
	}
	if len(out.params) != NumParams {
		t.Errorf("undo sent %d params, want %d", len(out.params), NumParams)
	}
	if r.Undo() {
		t.Error("second undo with depth 1 succeeded")
	}
}

func TestUndoEmpty(t *testing.T) {
	r, out := newTestRandomizer(1)
	if r.Undo() {
		t.Error("undo on fresh randomizer succeeded")
	}
	if len(out.params) != 0 {
		t.Error("empty undo sent params")
	}
}

func TestUndoDepthOneKeepsLatest(t *testing.T) {
	r, _ := newTestRandomizer(1)
	r.Randomize(30, SelectSyn)
	mid := r.Params()
	r.Randomize(30, SelectSyn)
	r.Undo()
	if r.Params() != mid {
		t.Errorf("undo restored %v, want %v", r.Params(), mid)
	}
}

func TestSetTrackClearsUndo(t *testing.T) {
	r, _ := newTestRandomizer(4)
	r.Randomize(30, SelectLFO)
	r.SetTrack(3)
	if r.UndoLen() != 0 || r.Undo() {
		t.Error("undo survived track change")
	}
	r.SetTrack(NumTracks)
	if r.Track() != 3 {
		t.Errorf("invalid track selected: %d", r.Track())
	}
}

func TestUndoStackDropsOldest(t *testing.T) {
	u := NewUndoStack(2)
	for i := uint8(1); i <= 3; i++ {
		u.Push(&Params{i})
	}
	var p Params
	for _, want := range []uint8{3, 2} {
		if !u.Pop(&p) || p[0] != want {
			t.Fatalf("pop = %d, want %d", p[0], want)
		}
	}
	if u.Pop(&p) {
		t.Error("pop beyond depth succeeded")
	}
}

func TestSelectMasks(t *testing.T) {
	all, _ := SelectMask(SelectAll)
	for i := 0; i < NumParams; i++ {
		if !all.Has(i) {
			t.Errorf("ALL misses %s", ParamName(i))
		}
	}
	fx, _ := SelectMask(SelectEffect)
	syn, _ := SelectMask(SelectSyn)
	fxsyn, _ := SelectMask(SelectFXSyn)
	if fxsyn != fx|syn {
		t.Errorf("FXSYN = %b, want %b", fxsyn, fx|syn)
	}
	if syn.Has(ParamP1) {
		t.Error("SYN includes P1")
	}
	if i, ok := ParseSelect("fxlow"); !ok || i != SelectFXLowSyn {
		t.Errorf("ParseSelect(fxlow) = %d, %v", i, ok)
	}
}
