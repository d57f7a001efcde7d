package sequencer

import (
	"math/rand"

	"go-arp/debug"
)

// Randomizer perturbs the parameters of one kit track and can undo the
// last perturbations. Switching track forgets the history.
type Randomizer struct {
	kit  *Kit
	out  ParamSender
	rng  *rand.Rand
	undo *UndoStack

	track int
}

// NewRandomizer creates a randomizer on track 0 with an undo history of
// depth snapshots.
func NewRandomizer(kit *Kit, out ParamSender, rng *rand.Rand, depth int) *Randomizer {
	return &Randomizer{
		kit:  kit,
		out:  out,
		rng:  rng,
		undo: NewUndoStack(depth),
	}
}

// SetTrack selects the track to randomize and clears the undo history.
// Tracks outside 0..15 are ignored.
func (r *Randomizer) SetTrack(track int) {
	if track < 0 || track >= NumTracks {
		return
	}
	r.track = track
	r.undo.Reset()
}

// Track returns the selected track.
func (r *Randomizer) Track() int {
	return r.track
}

// Randomize adds a uniform offset in [-amount, amount] to every parameter of
// category sel, clamped to 0..127, and sends each changed slot. amount 0 or
// an unknown category leaves everything, including the undo history, as is.
func (r *Randomizer) Randomize(amount, sel int) bool {
	if amount < 0 {
		amount = -amount
	}
	if amount > 127 {
		amount = 127
	}
	mask, ok := SelectMask(sel)
	if amount == 0 || !ok {
		return false
	}

	params := &r.kit.Tracks[r.track]
	r.undo.Push(params)

	for i := 0; i < NumParams; i++ {
		if !mask.Has(i) {
			continue
		}
		v := int(params[i]) + r.rng.Intn(2*amount+1) - amount
		params[i] = uint8(clampInt(v, 0, 127))
		r.out.SetTrackParam(uint8(r.track), uint8(i), params[i])
	}
	debug.Log("random", "track=%d amount=%d sel=%s", r.track, amount, SelectName(sel))
	return true
}

// Undo restores the most recent snapshot and resends all parameters. It
// returns false when there is nothing to undo.
func (r *Randomizer) Undo() bool {
	params := &r.kit.Tracks[r.track]
	if !r.undo.Pop(params) {
		debug.Log("random", "undo: nothing to undo")
		return false
	}
	for i := 0; i < NumParams; i++ {
		r.out.SetTrackParam(uint8(r.track), uint8(i), params[i])
	}
	return true
}

// UndoLen returns the number of undoable steps.
func (r *Randomizer) UndoLen() int {
	return r.undo.Len()
}

// SetParam stores a value reported by the instrument (for example from an
// incoming control change) without sending it back.
func (r *Randomizer) SetParam(track, param int, value uint8) {
	if track < 0 || track >= NumTracks || param < 0 || param >= NumParams {
		return
	}
	r.kit.Tracks[track][param] = value & 0x7F
}

// Params returns a copy of the selected track's parameters.
func (r *Randomizer) Params() Params {
	return r.kit.Tracks[r.track]
}
