package clock

import (
	"context"
	"sync"
	"time"

	"go-arp/debug"
)

// Tempo limits in BPM
const (
	MinBPM     = 20
	MaxBPM     = 300
	DefaultBPM = 120
)

// TicksPerBeat is the tick resolution: one tick per 16th note.
const TicksPerBeat = 4

// ClampBPM limits bpm to MinBPM..MaxBPM.
func ClampBPM(bpm int) int {
	if bpm < MinBPM {
		return MinBPM
	}
	if bpm > MaxBPM {
		return MaxBPM
	}
	return bpm
}

// TickInterval returns the duration of one 16th note at bpm.
func TickInterval(bpm int) time.Duration {
	return time.Minute / time.Duration(ClampBPM(bpm)*TicksPerBeat)
}

// Tick marks one 16th note. Reset is set on the first tick after a (re)start.
type Tick struct {
	Reset bool
}

// Internal is a free-running tempo clock.
type Internal struct {
	mu      sync.Mutex
	bpm     int
	changed chan struct{}
	ticks   chan Tick
}

// NewInternal creates a clock at bpm.
func NewInternal(bpm int) *Internal {
	return &Internal{
		bpm:     ClampBPM(bpm),
		changed: make(chan struct{}, 1),
		ticks:   make(chan Tick, 4),
	}
}

// Ticks returns the tick channel. Ticks are dropped when the reader lags.
func (c *Internal) Ticks() <-chan Tick {
	return c.ticks
}

// BPM returns the current tempo.
func (c *Internal) BPM() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bpm
}

// SetBPM changes the tempo; a running clock picks it up on its next tick.
func (c *Internal) SetBPM(bpm int) {
	c.mu.Lock()
	c.bpm = ClampBPM(bpm)
	c.mu.Unlock()
	select {
	case c.changed <- struct{}{}:
	default:
	}
}

// Run ticks until ctx is done.
func (c *Internal) Run(ctx context.Context) {
	interval := TickInterval(c.BPM())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.send(Tick{Reset: true})
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.changed:
			interval = TickInterval(c.BPM())
			ticker.Reset(interval)
			debug.Log("clock", "tempo %d bpm, tick %v", c.BPM(), interval)
		case <-ticker.C:
			c.send(Tick{})
		}
	}
}

func (c *Internal) send(t Tick) {
	select {
	case c.ticks <- t:
	default:
		debug.LogEvery(100, "clock", "tick dropped")
	}
}
