package sequencer

import "testing"

func TestEuclidHits(t *testing.T) {
	tests := []struct {
		name                    string
		pulses, steps, rotation int
		want                    []uint32
	}{
		{"3 of 8", 3, 8, 0, []uint32{0, 3, 6}},
		{"4 of 4", 4, 4, 0, []uint32{0, 1, 2, 3}},
		{"0 of 8", 0, 8, 0, nil},
		{"1 of 4", 1, 4, 0, []uint32{0}},
		{"3 of 8 rotated", 3, 8, 1, []uint32{2, 5, 7}},
		{"5 of 8", 5, 8, 0, []uint32{0, 2, 4, 5, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEuclid(tt.pulses, tt.steps, tt.rotation)
			var got []uint32
			for tick := uint32(0); tick < uint32(tt.steps); tick++ {
				if e.IsHit(tick) {
					got = append(got, tick)
				}
			}
			if len(got) != len(tt.want) {
				t.Fatalf("hits = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("hits = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestEuclidRepeatsEveryCycle(t *testing.T) {
	e := NewEuclid(3, 8, 0)
	for tick := uint32(0); tick < 8; tick++ {
		for _, cycle := range []uint32{1, 7, 1000, 1 << 28} {
			if e.IsHit(tick) != e.IsHit(tick+cycle*8) {
				t.Fatalf("tick %d and tick %d disagree", tick, tick+cycle*8)
			}
		}
	}
}

func TestEuclidHitCountMatchesPulses(t *testing.T) {
	for n := 1; n <= MaxEuclidSteps; n++ {
		for k := 0; k <= n; k++ {
			e := NewEuclid(k, n, 0)
			count := 0
			for _, hit := range e.Pattern() {
				if hit {
					count++
				}
			}
			if count != k {
				t.Fatalf("(%d,%d): %d hits", k, n, count)
			}
		}
	}
}

func TestEuclidClamp(t *testing.T) {
	e := NewEuclid(12, 8, -1)
	if e.Pulses != 8 || e.Steps != 8 || e.Rotation != 7 {
		t.Errorf("clamped = %+v", e)
	}
	e.Set(3, 500, 0)
	if e.Steps != MaxEuclidSteps {
		t.Errorf("steps = %d, want %d", e.Steps, MaxEuclidSteps)
	}
}
