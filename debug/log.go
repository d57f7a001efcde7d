package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
)

var (
	out     io.Writer
	closer  io.Closer
	mu      sync.Mutex
	enabled bool
)

// DefaultPath returns ~/.config/go-arp/debug.log
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "go-arp", "debug.log")
}

// Enable starts debug logging to path (DefaultPath when empty). The file is
// truncated on every start.
func Enable(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fault.Wrap(err, fmsg.With("create debug log directory"))
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fault.Wrap(err, fmsg.With("open debug log "+path))
	}
	EnableWriter(f)

	mu.Lock()
	closer = f
	mu.Unlock()
	return nil
}

// EnableWriter starts debug logging to w.
func EnableWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	if closer != nil {
		closer.Close()
		closer = nil
	}
	out = w
	enabled = true

	// Write directly (can't call Log - we hold the mutex)
	write("debug", "=== Debug logging started ===")
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if closer != nil {
		closer.Close()
		closer = nil
	}
	out = nil
	enabled = false
}

// Enabled reports whether logging is on. Hot paths check this before
// formatting arguments.
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Log writes a message to the debug log
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled || out == nil {
		return
	}
	write(category, fmt.Sprintf(format, args...))
}

func write(category, msg string) {
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(out, "[%s] %-10s %s\n", ts, category, msg)
	if f, ok := out.(*os.File); ok {
		f.Sync() // flush immediately so we see logs even on crash
	}
}

// LogEvery logs only every N calls (use for high-frequency events)
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	if !enabled {
		mu.Unlock()
		return
	}
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
