package clock

import "context"

// Source produces 16th-note ticks.
type Source interface {
	Ticks() <-chan Tick
	Run(ctx context.Context)
}

var (
	_ Source = (*Internal)(nil)
	_ Source = (*External)(nil)
)
