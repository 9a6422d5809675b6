package watchjob

import "time"

// Debouncer suppresses repeat observations of the same path within a
// configured window. It is owned exclusively by one Worker — no lock is
// needed because only the Worker's own event loop ever calls Accept
// (spec.md §5).
type Debouncer struct {
	window   time.Duration
	lastSeen map[string]time.Time
}

// NewDebouncer returns a Debouncer with the given window. A window of 0
// admits every observation.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window:   window,
		lastSeen: make(map[string]time.Time),
	}
}

// Accept reports whether an observation of path at now should proceed,
// and if so records now as the path's most recent accepted time. The
// first observation of any path is always accepted.
func (d *Debouncer) Accept(path string, now time.Time) bool {
	if d.window <= 0 {
		d.lastSeen[path] = now
		return true
	}

	prev, ok := d.lastSeen[path]
	if ok && now.Sub(prev) < d.window {
		return false
	}
	d.lastSeen[path] = now
	return true
}
