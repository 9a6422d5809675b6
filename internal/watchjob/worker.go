// Package watchjob implements the per-job Worker and its Debouncer: the
// state machine that observes a job's watch paths, either event-driven
// via fsnotify or by polling, and raises alerts on content divergence
// from the job's Baseline (spec.md §4.3, §4.4).
package watchjob

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ppiankov/integritywatch/internal/alertfanout"
	"github.com/ppiankov/integritywatch/internal/baseline"
	"github.com/ppiankov/integritywatch/internal/config"
	"github.com/ppiankov/integritywatch/internal/digest"
)

// minPollInterval is the floor applied to a configured poll interval of
// zero, documented per spec.md §8 ("implementations may floor to a
// minimum interval but must document it").
const minPollInterval = 1 * time.Second

// Worker owns one job's Baseline and Debouncer exclusively; nothing else
// reads or mutates them while the Worker is running (spec.md §5).
type Worker struct {
	jobName  string
	cfg      config.JobConfig
	baseline baseline.Baseline
	debounce *Debouncer
	logf     alertfanout.Logf

	stop chan struct{}
	done chan struct{}
}

// NewWorker constructs a Worker for jobName. baseline is the job's
// resolved Baseline (already loaded or generated by the caller); the
// Worker mutates it in place for the rest of its lifetime.
func NewWorker(jobName string, cfg config.JobConfig, bl baseline.Baseline, logf alertfanout.Logf) *Worker {
	if logf == nil {
		logf = defaultLogf
	}
	return &Worker{
		jobName:  jobName,
		cfg:      cfg,
		baseline: bl,
		debounce: NewDebouncer(time.Duration(cfg.DebounceMSOrDefault()) * time.Millisecond),
		logf:     logf,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Baseline returns the Worker's current in-memory baseline. Safe to call
// only after Stop has returned — while running, the Worker is the sole
// owner.
func (w *Worker) Baseline() baseline.Baseline {
	return w.baseline
}

// Stop signals the Worker to exit and blocks until it has. After Stop
// returns, no further alert is produced for this job (spec.md §5).
func (w *Worker) Stop() {
	close(w.stop)
	<-w.done
}

// Run starts the Worker's event or poll loop. It returns once the loop
// exits, either because Stop was called or because the configured mode
// is unrecognized (in which case it returns immediately, logging first).
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	switch w.cfg.Watcher.Mode {
	case config.ModeEvent:
		w.runEvent(ctx)
	case config.ModePoll:
		w.runPoll(ctx)
	default:
		w.logf("job %q: unknown watcher mode %q, not starting", w.jobName, w.cfg.Watcher.Mode)
	}
}

// runEvent registers every watch path recursively with fsnotify and then
// loops on events, errors, and the stop signal from a single goroutine —
// the Worker's own — so the Baseline and Debouncer are never touched
// concurrently (spec.md's "single owner" design note, §9).
func (w *Worker) runEvent(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logf("job %q: create watcher: %v", w.jobName, err)
		return
	}
	defer func() { _ = watcher.Close() }()

	for _, path := range w.cfg.WatchPaths {
		err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if p == path || d.IsDir() {
				return watcher.Add(p)
			}
			return nil
		})
		if err != nil {
			w.logf("job %q: watch %s: %v", w.jobName, path, err)
		}
	}

	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			w.observe(event.Name, time.Now())
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logf("job %q: watcher error: %v", w.jobName, err)
		}
	}
}

// runPoll iterates the configured watch path list every poll interval,
// in list order, checking the stop channel non-blockingly between
// iterations.
func (w *Worker) runPoll(ctx context.Context) {
	interval := time.Duration(w.cfg.PollIntervalOrDefault()) * time.Second
	if interval <= 0 {
		interval = minPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			for _, path := range w.cfg.WatchPaths {
				select {
				case <-w.stop:
					return
				default:
				}
				w.observe(path, now)
			}
		}
	}
}

// observe runs the five-step comparison from spec.md §4.3 for one
// path/timestamp pair: debounce, digest, closed-world baseline lookup,
// alert-and-update on mismatch.
func (w *Worker) observe(path string, now time.Time) {
	if !w.debounce.Accept(path, now) {
		return
	}

	newSum, err := digest.Digest(path)
	if err != nil {
		w.logf("job %q: digest %s: %v", w.jobName, path, err)
		return
	}

	oldSum, known := w.baseline[path]
	if !known {
		return
	}
	if oldSum == newSum {
		return
	}

	alertfanout.Dispatch(context.Background(), w.cfg.Alerts, path, oldSum, newSum, w.logf)
	w.baseline[path] = newSum

	if w.cfg.BaselineOptions.WriteThrough {
		if err := baseline.Save(w.jobName, w.baseline); err != nil {
			w.logf("job %q: write-through save: %v", w.jobName, err)
		}
	}
}

// defaultLogf is the teacher's own plain-stderr logging idiom, used
// where a caller doesn't supply its own job-scoped logf.
func defaultLogf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
