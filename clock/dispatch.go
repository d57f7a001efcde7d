package clock

// Handler is called once per tick with the tick counter.
type Handler func(counter uint32)

type subscription struct {
	name string
	fn   Handler
}

// Dispatcher calls its handlers in subscription order on every tick and
// keeps the monotonically increasing tick counter.
type Dispatcher struct {
	subs    []subscription
	counter uint32
}

// Subscribe appends a handler. Handlers run in the order they subscribed.
func (d *Dispatcher) Subscribe(name string, fn Handler) {
	d.subs = append(d.subs, subscription{name: name, fn: fn})
}

// Dispatch delivers the current counter to every handler, then advances it.
// It returns the counter that was delivered.
func (d *Dispatcher) Dispatch() uint32 {
	c := d.counter
	for _, s := range d.subs {
		s.fn(c)
	}
	d.counter++
	return c
}

// Counter returns the counter the next Dispatch will deliver.
func (d *Dispatcher) Counter() uint32 {
	return d.counter
}

// Reset rewinds the counter to zero.
func (d *Dispatcher) Reset() {
	d.counter = 0
}

// Names lists the subscribers in dispatch order.
func (d *Dispatcher) Names() []string {
	names := make([]string, len(d.subs))
	for i, s := range d.subs {
		names[i] = s.name
	}
	return names
}
