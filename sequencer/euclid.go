package sequencer

// MaxEuclidSteps bounds the pattern length.
const MaxEuclidSteps = 64

// Euclid distributes Pulses hits as evenly as possible over Steps ticks,
// shifted by Rotation. It holds no playback state: a hit is a pure function of
// the tick counter.
type Euclid struct {
	Pulses   int
	Steps    int
	Rotation int
}

// NewEuclid creates a pattern with clamped parameters.
func NewEuclid(pulses, steps, rotation int) Euclid {
	var e Euclid
	e.Set(pulses, steps, rotation)
	return e
}

// Set clamps steps to 1..MaxEuclidSteps, pulses to 0..steps and wraps the
// rotation into 0..steps-1.
func (e *Euclid) Set(pulses, steps, rotation int) {
	if steps < 1 {
		steps = 1
	}
	if steps > MaxEuclidSteps {
		steps = MaxEuclidSteps
	}
	if pulses < 0 {
		pulses = 0
	}
	if pulses > steps {
		pulses = steps
	}
	rotation %= steps
	if rotation < 0 {
		rotation += steps
	}
	e.Pulses, e.Steps, e.Rotation = pulses, steps, rotation
}

// IsHit reports whether tick lands on a hit: ((tick + r) * k) mod n < k.
func (e Euclid) IsHit(tick uint32) bool {
	n := uint64(e.Steps)
	k := uint64(e.Pulses)
	if n == 0 || k == 0 {
		return false
	}
	pos := (uint64(tick)%n + uint64(e.Rotation)%n) % n
	return (pos*k)%n < k
}

// Pattern returns the hit mask for one cycle starting at tick 0.
func (e Euclid) Pattern() []bool {
	out := make([]bool, e.Steps)
	for i := range out {
		out[i] = e.IsHit(uint32(i))
	}
	return out
}
