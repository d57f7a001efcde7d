package sequencer

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go-arp/clock"
	"go-arp/debug"
	"go-arp/midi"
)

// Output is everything the engine emits to.
type Output interface {
	NoteSender
	ParamSender
}

// Options configures a new Engine.
type Options struct {
	ArpChannel    uint8
	PitchChannel  uint8
	PhraseChannel uint8
	ParamChannel  uint8 // Machinedrum base channel for incoming parameter CCs
	UndoDepth     int
	Seed          int64
}

// UI refresh rate for published snapshots
const snapshotFPS = 30

// Engine owns the arpeggiator, pitch sequencer, phrase recorder and
// randomizer. Once Run is called every mutation happens on the Run
// goroutine; other goroutines feed it through channels and Do.
type Engine struct {
	Arp    *Arpeggiator
	Pitch  *PitchEuclid
	Phrase *PhraseRecorder
	Random *Randomizer
	Kit    *Kit

	dispatch     clock.Dispatcher
	devices      []Device
	paramChannel uint8

	notes    chan midi.NoteEvent
	controls chan midi.ControlEvent
	funcs    chan func()

	mu       sync.RWMutex
	snapshot EngineState
	dirty    bool

	// Notify UI of updates
	UpdateChan chan struct{}
}

// NewEngine wires the components to out. Tick handlers run in the order
// pitch sequencer, arpeggiator, phrase recorder.
func NewEngine(out Output, opts Options) *Engine {
	rng := rand.New(rand.NewSource(opts.Seed))
	kit := NewKit("default")

	e := &Engine{
		Arp:          NewArpeggiator(out, rng),
		Pitch:        NewPitchEuclid(out, rng),
		Phrase:       NewPhraseRecorder(out),
		Random:       NewRandomizer(kit, out, rng, opts.UndoDepth),
		Kit:          kit,
		paramChannel: opts.ParamChannel & 0x0F,
		notes:        make(chan midi.NoteEvent, 32),
		controls:     make(chan midi.ControlEvent, 64),
		funcs:        make(chan func(), 16),
		UpdateChan:   make(chan struct{}, 1),
	}
	e.Arp.SetChannel(opts.ArpChannel)
	e.Arp.SetRecorder(e.Phrase)
	e.Pitch.SetChannel(opts.PitchChannel)
	e.Phrase.SetChannel(opts.PhraseChannel)

	e.attach("pitch", e.Pitch)
	e.attach("arp", e.Arp)
	e.attach("phrase", e.Phrase)

	e.snapshot = e.State()
	return e
}

func (e *Engine) attach(name string, d Device) {
	e.devices = append(e.devices, d)
	e.dispatch.Subscribe(name, d.OnTick)
}

// SendNote queues a note event for the engine. It never blocks: events are
// dropped while the queue is full.
func (e *Engine) SendNote(ev midi.NoteEvent) {
	select {
	case e.notes <- ev:
	default:
		debug.LogEvery(50, "engine", "note event dropped")
	}
}

// SendControl queues a control change. It never blocks.
func (e *Engine) SendControl(ev midi.ControlEvent) {
	select {
	case e.controls <- ev:
	default:
		debug.LogEvery(50, "engine", "control event dropped")
	}
}

// Do runs fn on the engine goroutine and waits for it to finish. It returns
// ctx.Err() if ctx ends first.
func (e *Engine) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	select {
	case e.funcs <- func() { fn(); close(done) }:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes ticks and events until ctx is done, then silences all
// output.
func (e *Engine) Run(ctx context.Context, ticks <-chan clock.Tick) {
	ui := time.NewTicker(time.Second / snapshotFPS)
	defer ui.Stop()
	defer e.Silence()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticks:
			e.Tick(t)
		case ev := <-e.notes:
			e.HandleNote(ev)
		case ev := <-e.controls:
			e.HandleControl(ev)
		case fn := <-e.funcs:
			fn()
			e.dirty = true
		case <-ui.C:
			if e.dirty {
				e.publish()
			}
		}
	}
}

// Tick applies every queued note event, then runs the tick handlers.
func (e *Engine) Tick(t clock.Tick) {
	e.drainNotes()
	if t.Reset {
		e.dispatch.Reset()
		e.Phrase.Restart(0)
	}
	e.dispatch.Dispatch()
	e.dirty = true
}

func (e *Engine) drainNotes() {
	for {
		select {
		case ev := <-e.notes:
			e.HandleNote(ev)
		default:
			return
		}
	}
}

// Counter returns the counter the next tick will carry.
func (e *Engine) Counter() uint32 {
	return e.dispatch.Counter()
}

// HandleNote applies a held-note change. Velocity 0 releases.
func (e *Engine) HandleNote(ev midi.NoteEvent) {
	if ev.Velocity == 0 {
		e.Arp.RemoveNote(ev.Note)
	} else {
		e.Arp.AddNote(ev.Note, ev.Velocity)
	}
	e.dirty = true
}

// HandleControl stores Machinedrum parameter changes reported by the
// instrument. Other controllers are ignored.
func (e *Engine) HandleControl(ev midi.ControlEvent) {
	off := (ev.Channel - e.paramChannel) & 0x0F
	track, param, ok := midi.TrackParamFromCC(off, ev.Controller)
	if !ok {
		return
	}
	e.Random.SetParam(int(track), int(param), ev.Value)
	e.dirty = true
}

// Silence releases every sounding note.
func (e *Engine) Silence() {
	for _, d := range e.devices {
		d.Silence()
	}
}

// EngineState is a read-only view of the whole engine.
type EngineState struct {
	Counter uint32         `json:"counter"`
	Arp     ArpState       `json:"arp"`
	Pitch   PitchState     `json:"pitch"`
	Phrase  PhraseState    `json:"phrase"`
	Track   int            `json:"track"`
	Params  [NumParams]int `json:"params"`
	Undo    int            `json:"undo"`
}

// State builds a fresh view. It must run on the engine goroutine (or before
// Run starts); other goroutines use Snapshot.
func (e *Engine) State() EngineState {
	s := EngineState{
		Counter: e.dispatch.Counter(),
		Arp:     e.Arp.State(),
		Pitch:   e.Pitch.State(),
		Phrase:  e.Phrase.State(),
		Track:   e.Random.Track(),
		Undo:    e.Random.UndoLen(),
	}
	for i, v := range e.Random.Params() {
		s.Params[i] = int(v)
	}
	return s
}

// Snapshot returns the most recently published view. It is safe to call
// from any goroutine.
func (e *Engine) Snapshot() EngineState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot
}

func (e *Engine) publish() {
	s := e.State()
	e.mu.Lock()
	e.snapshot = s
	e.mu.Unlock()
	e.dirty = false

	select {
	case e.UpdateChan <- struct{}{}:
	default:
	}
}

// Publish refreshes the snapshot immediately.
func (e *Engine) Publish() {
	e.publish()
}
