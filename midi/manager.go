package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-arp/debug"
)

// DeviceEvent is emitted when inputs connect/disconnect
type DeviceEvent struct {
	Type  DeviceEventType
	Input *Input
	ID    string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// DeviceManager handles hot-plug detection of the configured MIDI inputs
type DeviceManager struct {
	match    []string // lower-case substrings; empty matches nothing
	channel  int
	inputs   map[string]*Input
	mu       sync.RWMutex
	events   chan DeviceEvent
	pollRate time.Duration
}

// NewDeviceManager creates a device manager that opens every input port whose
// name contains one of match (case-insensitive).
func NewDeviceManager(match []string, channel int) *DeviceManager {
	lower := make([]string, 0, len(match))
	for _, m := range match {
		if m = strings.TrimSpace(m); m != "" {
			lower = append(lower, strings.ToLower(m))
		}
	}
	return &DeviceManager{
		match:    lower,
		channel:  channel,
		inputs:   make(map[string]*Input),
		events:   make(chan DeviceEvent, 16),
		pollRate: time.Second,
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Inputs returns a snapshot of connected inputs
func (dm *DeviceManager) Inputs() map[string]*Input {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	out := make(map[string]*Input, len(dm.inputs))
	for k, v := range dm.inputs {
		out[k] = v
	}
	return out
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

// Matches reports whether a port name is one of the configured inputs.
func (dm *DeviceManager) Matches(name string) bool {
	name = strings.ToLower(name)
	for _, m := range dm.match {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

func (dm *DeviceManager) scan() {
	// Port enumeration can hang on some hosts; bound it
	ch := make(chan []drivers.In, 1)
	go func() {
		ch <- gomidi.GetInPorts()
	}()

	var inPorts []drivers.In
	select {
	case inPorts = <-ch:
	case <-time.After(3 * time.Second):
		debug.Log("midi", "port scan timed out")
		return
	}

	seenIDs := make(map[string]bool)

	for _, inPort := range inPorts {
		id := inPort.String()
		if !dm.Matches(id) {
			continue
		}
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.inputs[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		in, err := NewInput(id, inPort, dm.channel)
		if err != nil {
			debug.Log("midi", "open input %q: %v", id, err)
			continue
		}

		dm.mu.Lock()
		dm.inputs[id] = in
		dm.mu.Unlock()

		debug.Log("midi", "input connected %q", id)
		dm.events <- DeviceEvent{Type: DeviceConnected, Input: in, ID: id}
	}

	// Check for disconnects
	dm.mu.Lock()
	var toRemove []string
	for id := range dm.inputs {
		if !seenIDs[id] {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		dm.inputs[id].Close()
		delete(dm.inputs, id)
		debug.Log("midi", "input disconnected %q", id)
		dm.events <- DeviceEvent{Type: DeviceDisconnected, ID: id}
	}
	dm.mu.Unlock()
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, in := range dm.inputs {
		in.Close()
	}
	dm.inputs = make(map[string]*Input)
}
