// Package supervisor owns the set of running watchjob.Worker handles and
// keeps it in agreement with config.yaml on disk (spec.md §4.6).
package supervisor

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/ppiankov/integritywatch/internal/alertfanout"
	"github.com/ppiankov/integritywatch/internal/baseline"
	"github.com/ppiankov/integritywatch/internal/config"
	"github.com/ppiankov/integritywatch/internal/watchjob"
)

// reconcileInterval is how often the daemon loop restats the config
// file, matching the original's 2-second poll (original_source/src/
// watcher/mod.rs start()).
const reconcileInterval = 2 * time.Second

// handle is the Supervisor's record of one running job.
type handle struct {
	cfg    config.JobConfig
	worker *watchjob.Worker
	cancel context.CancelFunc
}

// Supervisor owns job workers and reconciles them against config.yaml.
type Supervisor struct {
	configPath string
	logf       alertfanout.Logf

	jobs         map[string]handle
	lastModified time.Time
}

// New returns a Supervisor reading configPath. logf defaults to plain
// stderr logging (the teacher's own idiom) when nil.
func New(configPath string, logf alertfanout.Logf) *Supervisor {
	if logf == nil {
		logf = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}
	}
	return &Supervisor{
		configPath: configPath,
		logf:       logf,
		jobs:       make(map[string]handle),
	}
}

// Start reads the config once and spawns one Worker per configured job.
// It does not block; callers that also want the reconciliation loop
// call Run afterward.
func (s *Supervisor) Start() error {
	info, err := os.Stat(s.configPath)
	if err != nil {
		return fmt.Errorf("stat config %s: %w", s.configPath, err)
	}
	s.lastModified = info.ModTime()

	cfg, hash, err := config.LoadWithHash(s.configPath)
	if err != nil {
		return fmt.Errorf("load initial config: %w", err)
	}
	s.logf("Loaded config %s (hash %s)", s.configPath, hash)

	for name, jobCfg := range cfg.Jobs {
		s.spawn(name, jobCfg)
	}
	return nil
}

// Run executes the daemon reconciliation loop, restating the config
// file every reconcileInterval until ctx is cancelled. Per-job failures
// during reconciliation are logged and never stop the loop (spec.md §7).
func (s *Supervisor) Run(ctx context.Context) {
	ticker := time.NewTicker(reconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.stopAll()
			return
		case <-ticker.C:
			s.reconcileOnce()
		}
	}
}

// reconcileOnce restats the config file and, if it has changed,
// reconciles running jobs against the freshly parsed snapshot in the
// three fixed phases: remove, restart, add.
func (s *Supervisor) reconcileOnce() {
	info, err := os.Stat(s.configPath)
	if err != nil {
		s.logf("supervisor: stat config: %v", err)
		return
	}
	if !info.ModTime().After(s.lastModified) {
		return
	}
	s.lastModified = info.ModTime()

	cfg, hash, err := config.LoadWithHash(s.configPath)
	if err != nil {
		s.logf("supervisor: reload config: %v", err)
		return
	}

	for name := range s.jobs {
		if _, ok := cfg.Jobs[name]; !ok {
			s.remove(name)
		}
	}

	for name, h := range s.jobs {
		newCfg, ok := cfg.Jobs[name]
		if !ok {
			continue
		}
		if !reflect.DeepEqual(h.cfg, newCfg) {
			s.remove(name)
			s.spawn(name, newCfg)
			s.logf("Reloaded job %q due to config change", name)
		}
	}

	for name, jobCfg := range cfg.Jobs {
		if _, exists := s.jobs[name]; !exists {
			s.spawn(name, jobCfg)
			s.logf("Started job %q", name)
		}
	}

	s.logf("Reconciled config %s (hash %s)", s.configPath, hash)
}

// spawn obtains the job's Baseline, starts its Worker in a background
// goroutine, and records the handle. A failure here is logged and the
// job is simply not added — never fatal to the Supervisor.
func (s *Supervisor) spawn(name string, jobCfg config.JobConfig) {
	bl, err := baseline.LoadOrGenerate(name, jobCfg.WatchPaths)
	if err != nil {
		s.logf("supervisor: job %q: %v", name, err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := watchjob.NewWorker(name, jobCfg, bl, s.logf)
	go w.Run(ctx)

	s.jobs[name] = handle{cfg: jobCfg, worker: w, cancel: cancel}
}

// remove stops and removes the named job's Worker, if present.
func (s *Supervisor) remove(name string) {
	h, ok := s.jobs[name]
	if !ok {
		return
	}
	h.cancel()
	h.worker.Stop()
	delete(s.jobs, name)
	s.logf("Stopped job %q", name)
}

// stopAll stops every running Worker, used when Run's context is
// cancelled.
func (s *Supervisor) stopAll() {
	for name := range s.jobs {
		s.remove(name)
	}
}
