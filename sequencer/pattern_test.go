package sequencer

import (
	"slices"
	"testing"
)

func buildPitches(style Style, pitches []uint8, octaves, times int) []uint8 {
	var pool NotePool
	for _, p := range pitches {
		pool.Add(p, 100)
	}
	var ordered [MaxHeldNotes]HeldNote
	n := pool.Ordered(style, &ordered)
	var pat Pattern
	pat.Build(style, ordered[:n], octaves, times, testRand())
	return pat.Pitches()
}

func TestPatternStyles(t *testing.T) {
	ceg := []uint8{60, 64, 67}
	tests := []struct {
		style Style
		want  []uint8
	}{
		{StyleUp, []uint8{60, 64, 67}},
		{StyleDown, []uint8{67, 64, 60}},
		{StyleUpDown, []uint8{60, 64, 67, 64}},
		{StyleDownUp, []uint8{67, 64, 60, 64}},
		{StyleUpAndDown, []uint8{60, 64, 67, 67, 64, 60}},
		{StyleDownAndUp, []uint8{67, 64, 60, 60, 64, 67}},
		{StyleConverge, []uint8{60, 67, 64}},
		{StyleDiverge, []uint8{64, 67, 60}},
		{StyleConAndDiverge, []uint8{60, 67, 64, 67, 60}},
		{StylePinkyUp, []uint8{60, 67, 64, 67}},
		{StylePinkyUpDown, []uint8{60, 67, 64, 67}},
		{StyleThumbUp, []uint8{60, 64, 60, 67}},
		{StyleThumbUpDown, []uint8{60, 64, 60, 67}},
		{StyleOrder, []uint8{60, 64, 67}},
	}
	for _, tt := range tests {
		t.Run(tt.style.String(), func(t *testing.T) {
			if got := buildPitches(tt.style, ceg, 0, 1); !slices.Equal(got, tt.want) {
				t.Errorf("buffer = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPatternFourNoteBounces(t *testing.T) {
	cegb := []uint8{60, 64, 67, 71}
	tests := []struct {
		style Style
		want  []uint8
	}{
		{StylePinkyUpDown, []uint8{60, 71, 64, 71, 67, 71, 64, 71}},
		{StyleThumbUpDown, []uint8{60, 64, 60, 67, 60, 71, 60, 67}},
		{StyleConAndDiverge, []uint8{60, 71, 64, 67, 64, 71, 60}},
	}
	for _, tt := range tests {
		if got := buildPitches(tt.style, cegb, 0, 1); !slices.Equal(got, tt.want) {
			t.Errorf("%s: buffer = %v, want %v", tt.style, got, tt.want)
		}
	}
}

// styleLen is the traversal length of n ordered notes.
func styleLen(style Style, n int) int {
	bounce := func(m int) int {
		if m < 2 {
			return m
		}
		return 2*m - 2
	}
	if n <= 1 {
		return n
	}
	switch style {
	case StyleUpDown, StyleDownUp:
		return bounce(n)
	case StyleUpAndDown, StyleDownAndUp:
		return 2 * n
	case StyleConAndDiverge:
		return 2*n - 1
	case StylePinkyUp, StyleThumbUp:
		return 2 * (n - 1)
	case StylePinkyUpDown, StyleThumbUpDown:
		return 2 * bounce(n-1)
	}
	return n
}

func TestPatternLengths(t *testing.T) {
	notes := []uint8{40, 45, 50, 55, 60, 65, 70, 75}
	for n := 1; n <= MaxHeldNotes; n++ {
		for style := Style(0); style < NumStyles; style++ {
			for octaves := 0; octaves <= MaxArpOctaves; octaves++ {
				for times := 1; times <= MaxArpTimes; times++ {
					want := min(MaxArpLen, styleLen(style, n)*(octaves+1)*times)
					if got := len(buildPitches(style, notes[:n], octaves, times)); got != want {
						t.Errorf("%s n=%d octaves=%d times=%d: len = %d, want %d",
							style, n, octaves, times, got, want)
					}
				}
			}
		}
	}
}

func TestPatternSingleNote(t *testing.T) {
	for s := Style(0); s < NumStyles; s++ {
		if got := buildPitches(s, []uint8{60}, 0, 1); !slices.Equal(got, []uint8{60}) {
			t.Errorf("%s: buffer = %v, want [60]", s, got)
		}
	}
}

func TestPatternEmpty(t *testing.T) {
	for s := Style(0); s < NumStyles; s++ {
		if got := buildPitches(s, nil, 2, 2); len(got) != 0 {
			t.Errorf("%s: buffer = %v, want empty", s, got)
		}
	}
}

func TestPatternOctavesAndTimes(t *testing.T) {
	if got, want := buildPitches(StyleUp, []uint8{60, 64, 67}, 1, 1), []uint8{60, 64, 67, 72, 76, 79}; !slices.Equal(got, want) {
		t.Errorf("octaves: buffer = %v, want %v", got, want)
	}
	if got, want := buildPitches(StyleUp, []uint8{60, 64}, 0, 3), []uint8{60, 60, 60, 64, 64, 64}; !slices.Equal(got, want) {
		t.Errorf("times: buffer = %v, want %v", got, want)
	}
}

func TestPatternTruncates(t *testing.T) {
	notes := []uint8{30, 32, 34, 36, 38, 40, 42, 44}
	got := buildPitches(StyleUpAndDown, notes, MaxArpOctaves, MaxArpTimes)
	if len(got) != MaxArpLen {
		t.Fatalf("len = %d, want %d", len(got), MaxArpLen)
	}
	// 8 repeats of each note in the first pass fill the whole buffer
	if got[0] != 30 || got[MaxArpLen-1] != 44 {
		t.Errorf("buffer starts %d ends %d", got[0], got[MaxArpLen-1])
	}
}

func TestPatternSkipsOutOfRange(t *testing.T) {
	got := buildPitches(StyleUp, []uint8{110, 120}, 2, 1)
	want := []uint8{110, 120, 122}
	if !slices.Equal(got, want) {
		t.Errorf("buffer = %v, want %v", got, want)
	}
}

func TestPatternRandomUsesHeldNotes(t *testing.T) {
	held := []uint8{60, 64, 67, 71}
	for _, s := range []Style{StyleRandom, StyleRandomOnce} {
		got := buildPitches(s, held, 0, 1)
		for _, p := range got {
			if !slices.Contains(held, p) {
				t.Errorf("%s: pitch %d not held", s, p)
			}
		}
		if s == StyleRandomOnce {
			sorted := slices.Clone(got)
			slices.Sort(sorted)
			if !slices.Equal(sorted, held) {
				t.Errorf("RANDOM1 is not a permutation: %v", got)
			}
		}
	}
}

func TestParseStyle(t *testing.T) {
	s, ok := ParseStyle(" pinkyud ")
	if !ok || s != StylePinkyUpDown {
		t.Errorf("ParseStyle = %v, %v", s, ok)
	}
	if _, ok := ParseStyle("sideways"); ok {
		t.Error("unknown style parsed")
	}
	if Style(99).String() != "UP" {
		t.Errorf("invalid style prints %q", Style(99).String())
	}
}
