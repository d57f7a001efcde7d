package sequencer

import "strings"

// Retrigger is the policy for re-striking notes across steps.
type Retrigger int

const (
	RetrigOff Retrigger = iota
	RetrigNote
	RetrigBeat
	NumRetrigs
)

var retrigNames = [NumRetrigs]string{"OFF", "NOTE", "BEAT"}

func (r Retrigger) String() string {
	if r < 0 || r >= NumRetrigs {
		return retrigNames[RetrigOff]
	}
	return retrigNames[r]
}

// ParseRetrigger looks a retrigger mode up by name, case-insensitively.
func ParseRetrigger(name string) (Retrigger, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for i, n := range retrigNames {
		if n == name {
			return Retrigger(i), true
		}
	}
	return RetrigOff, false
}

// Cursor is the playback position within the buffer.
type Cursor struct {
	Step      int // next step to play
	Pass      int // completed passes over the buffer
	Countdown int // ticks until the next step fires
}

// Player walks a Pattern one step every speed ticks. It keeps at most one
// note sounding and always sends the note-off before the next note-on.
type Player struct {
	out     NoteSender
	channel uint8

	speed       int
	retrig      Retrigger
	retrigSpeed int

	cursor   Cursor
	sounding int // pitch or noPitch
}

// NewPlayer creates an idle player stepping every 16th note.
func NewPlayer(out NoteSender) *Player {
	return &Player{
		out:         out,
		speed:       1,
		retrig:      RetrigNote,
		retrigSpeed: 4,
		sounding:    noPitch,
	}
}

// Reset rewinds the cursor so step 0 fires on the next tick. An empty
// pattern makes the player idle and releases the sounding note.
func (pl *Player) Reset(pat *Pattern) {
	pl.cursor = Cursor{Countdown: 1}
	if pat.Len() == 0 {
		pl.Silence()
	}
}

// Playing reports whether the pattern has anything to play.
func (pl *Player) Playing(pat *Pattern) bool {
	return pat.Len() > 0
}

// Tick advances the countdown and fires the next step when it expires. It
// returns the fired step and true, or false when no step fired.
func (pl *Player) Tick(pat *Pattern) (ArpStep, bool) {
	n := pat.Len()
	if n == 0 {
		return ArpStep{}, false
	}
	pl.cursor.Countdown--
	if pl.cursor.Countdown > 0 {
		return ArpStep{}, false
	}

	if pl.cursor.Step >= n {
		pl.cursor.Step = 0
	}
	step := pat.Step(pl.cursor.Step)
	pl.fire(step, pl.cursor.Step)

	pl.cursor.Step++
	if pl.cursor.Step == n {
		pl.cursor.Step = 0
		pl.cursor.Pass++
	}
	pl.cursor.Countdown = pl.speed
	return step, true
}

func (pl *Player) fire(step ArpStep, index int) {
	pitch := int(step.Pitch)
	strike := true
	switch pl.retrig {
	case RetrigOff:
		strike = pitch != pl.sounding
	case RetrigBeat:
		strike = pitch != pl.sounding || index%pl.retrigSpeed == 0
	}
	if !strike {
		return
	}
	pl.Silence()
	pl.out.NoteOn(pl.channel, step.Pitch, step.Velocity)
	pl.sounding = pitch
}

// Silence releases the sounding note, if any.
func (pl *Player) Silence() {
	if pl.sounding != noPitch {
		pl.out.NoteOff(pl.channel, uint8(pl.sounding))
		pl.sounding = noPitch
	}
}

// Sounding returns the sounding pitch, or -1.
func (pl *Player) Sounding() int {
	return pl.sounding
}

// Cursor returns the playback position.
func (pl *Player) Cursor() Cursor {
	return pl.cursor
}

func (pl *Player) setSpeed(ticks int) {
	if ticks < 1 {
		ticks = 1
	}
	pl.speed = ticks
	if pl.cursor.Countdown > ticks {
		pl.cursor.Countdown = ticks
	}
}

func (pl *Player) setRetrigger(r Retrigger, every int) {
	if r < 0 || r >= NumRetrigs {
		r = RetrigOff
	}
	if every < 1 {
		every = 1
	}
	pl.retrig = r
	pl.retrigSpeed = every
}

func (pl *Player) setChannel(ch uint8) {
	pl.Silence()
	pl.channel = ch & 0x0F
}
