package sequencer

// MaxUndoDepth bounds the undo history.
const MaxUndoDepth = 8

// UndoStack keeps the most recent parameter snapshots. Pushing onto a full
// stack discards the oldest snapshot.
type UndoStack struct {
	snaps [MaxUndoDepth]Params
	depth int
	top   int // index of the next free slot
	n     int
}

// NewUndoStack creates a stack holding up to depth snapshots (1..MaxUndoDepth).
func NewUndoStack(depth int) *UndoStack {
	return &UndoStack{depth: clampInt(depth, 1, MaxUndoDepth)}
}

// Push stores a copy of p.
func (u *UndoStack) Push(p *Params) {
	u.snaps[u.top] = *p
	u.top = (u.top + 1) % u.depth
	if u.n < u.depth {
		u.n++
	}
}

// Pop copies the most recent snapshot into p. It returns false, leaving p
// untouched, when the stack is empty.
func (u *UndoStack) Pop(p *Params) bool {
	if u.n == 0 {
		return false
	}
	u.top = (u.top + u.depth - 1) % u.depth
	*p = u.snaps[u.top]
	u.n--
	return true
}

// Reset empties the stack.
func (u *UndoStack) Reset() {
	u.top = 0
	u.n = 0
}

// Len returns the number of stored snapshots.
func (u *UndoStack) Len() int {
	return u.n
}
