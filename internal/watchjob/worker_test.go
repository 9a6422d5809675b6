package watchjob

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/integritywatch/internal/baseline"
	"github.com/ppiankov/integritywatch/internal/config"
	"github.com/ppiankov/integritywatch/internal/digest"
)

func digestOf(t *testing.T, s string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scratch")
	if err := os.WriteFile(path, []byte(s), 0o644); err != nil {
		t.Fatal(err)
	}
	sum, err := digest.Digest(path)
	if err != nil {
		t.Fatal(err)
	}
	return sum
}

func collectingLogf(mu *sync.Mutex, lines *[]string) func(string, ...any) {
	return func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		*lines = append(*lines, format)
	}
}

// TestWorkerEventModeSingleEdit mirrors spec scenario 1: after one
// divergent write under event mode the baseline holds the new digest.
func TestWorkerEventModeSingleEdit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a")
	if err := os.WriteFile(path, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}

	bl := baseline.Baseline{path: digestOf(t, "one")}
	cfg := config.JobConfig{
		WatchPaths: []string{path},
		Watcher:    config.WatcherConfig{Mode: config.ModeEvent},
	}

	w := NewWorker("etc", cfg, bl, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("two"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)

	w.Stop()

	want := digestOf(t, "two")
	if got := w.Baseline()[path]; got != want {
		t.Errorf("baseline[%s] = %s, want %s", path, got, want)
	}
}

// TestWorkerPollModeUnknownPathIgnored mirrors spec scenario 3: an
// observation for a path absent from the baseline never alerts and
// never appears in it afterward.
func TestWorkerPollModeUnknownPathIgnored(t *testing.T) {
	dir := t.TempDir()
	known := filepath.Join(dir, "a")
	unknown := filepath.Join(dir, "b")
	if err := os.WriteFile(known, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(unknown, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}

	bl := baseline.Baseline{known: digestOf(t, "one")}
	cfg := config.JobConfig{
		WatchPaths: []string{known},
		Watcher: config.WatcherConfig{
			Mode: config.ModePoll,
		},
	}

	w := NewWorker("etc", cfg, bl, nil)
	w.observe(unknown, time.Now())

	if _, present := w.Baseline()[unknown]; present {
		t.Errorf("unknown path %s must never be added to the baseline", unknown)
	}
	if len(w.Baseline()) != 1 {
		t.Errorf("baseline should still hold exactly the known path, got %v", w.Baseline())
	}
}

// TestWorkerDebounceCoalescesRapidWrites mirrors spec scenario 2: two
// writes within the debounce window collapse into a single accepted
// observation; the first observation is accepted and the later one,
// including the Worker's own observe call, is suppressed.
func TestWorkerDebounceCoalescesRapidWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a")
	if err := os.WriteFile(path, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}

	bl := baseline.Baseline{path: digestOf(t, "one")}
	debounceMS := 500
	cfg := config.JobConfig{
		WatchPaths: []string{path},
		Watcher: config.WatcherConfig{
			Mode:       config.ModePoll,
			DebounceMS: &debounceMS,
		},
	}

	var mu sync.Mutex
	var accepted int
	w := NewWorker("etc", cfg, bl, nil)

	base := time.Now()
	if w.debounce.Accept(path, base) {
		mu.Lock()
		accepted++
		mu.Unlock()
	}
	if err := os.WriteFile(path, []byte("two"), 0o644); err != nil {
		t.Fatal(err)
	}
	if w.debounce.Accept(path, base.Add(100*time.Millisecond)) {
		mu.Lock()
		accepted++
		mu.Unlock()
	}
	if err := os.WriteFile(path, []byte("three"), 0o644); err != nil {
		t.Fatal(err)
	}
	w.observe(path, base.Add(100*time.Millisecond))

	if accepted != 1 {
		t.Errorf("expected exactly one accepted observation within the debounce window, got %d", accepted)
	}
}

func TestWorkerUnknownModeExitsImmediately(t *testing.T) {
	var mu sync.Mutex
	var lines []string

	cfg := config.JobConfig{Watcher: config.WatcherConfig{Mode: "nonsense"}}
	w := NewWorker("bad", cfg, baseline.Baseline{}, collectingLogf(&mu, &lines))

	done := make(chan struct{})
	go func() {
		w.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker with unknown mode should exit immediately")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(lines) == 0 {
		t.Error("expected a log line for the unknown mode")
	}
}

func TestWorkerStopAfterStopNoFurtherObservations(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a")
	if err := os.WriteFile(path, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}

	bl := baseline.Baseline{path: digestOf(t, "one")}
	interval := 1
	cfg := config.JobConfig{
		WatchPaths: []string{path},
		Watcher: config.WatcherConfig{
			Mode:         config.ModePoll,
			PollInterval: &interval,
		},
	}

	w := NewWorker("etc", cfg, bl, nil)
	go w.Run(context.Background())
	time.Sleep(20 * time.Millisecond)
	w.Stop()

	if err := os.WriteFile(path, []byte("two"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(1200 * time.Millisecond)

	if got := w.Baseline()[path]; got != digestOf(t, "one") {
		t.Errorf("worker kept observing after Stop returned: baseline = %s", got)
	}
}
