// Package config parses the watcher engine's YAML configuration file.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default tuning values, applied when a job config leaves them unset.
const (
	DefaultPollInterval = 5   // seconds
	DefaultDebounceMS   = 500 // milliseconds
)

const (
	ModeEvent = "inotify"
	ModePoll  = "poll"
)

// Config is the top-level config.yaml document.
type Config struct {
	Jobs              map[string]JobConfig `yaml:"jobs"`
	SelfIntegrityPath string               `yaml:"self_integrity_path"`
}

// JobConfig is one named job's configuration.
type JobConfig struct {
	WatchPaths      []string        `yaml:"watch_paths"`
	IgnorePatterns  []string        `yaml:"ignore_patterns"` // reserved, not consumed by the core
	Watcher         WatcherConfig   `yaml:"watcher"`
	Alerts          AlertsConfig    `yaml:"alerts"`
	BaselineOptions BaselineOptions `yaml:"baseline"`
}

// WatcherConfig selects and tunes the watch strategy for a job.
// PollInterval and DebounceMS are pointers so that an explicit 0 in the
// YAML (e.g. "debounce_ms: 0", admitting every observation per spec) is
// distinguishable from an absent key (which falls back to the default).
type WatcherConfig struct {
	Mode         string `yaml:"mode"`
	PollInterval *int   `yaml:"poll_interval"`
	DebounceMS   *int   `yaml:"debounce_ms"`
}

// AlertsConfig describes which sinks are enabled for a job and how to
// render their payload. All fields are opaque to the core beyond their
// enablement: a non-empty URL/path enables the corresponding sink.
type AlertsConfig struct {
	UseSyslog       bool   `yaml:"use_syslog"`
	WebhookURL      string `yaml:"webhook_url"`
	ScriptPath      string `yaml:"script_path"`
	PluginPath      string `yaml:"plugin_path"`
	PayloadTemplate string `yaml:"payload_template"`
}

// BaselineOptions controls baseline persistence beyond the spec default.
type BaselineOptions struct {
	// WriteThrough persists the baseline to disk after every accepted
	// change, instead of only at job creation. Default false preserves
	// the documented "re-alert after restart" behavior.
	WriteThrough bool `yaml:"write_through"`
}

// PollIntervalOrDefault returns the job's poll interval in seconds,
// defaulting to DefaultPollInterval when unset. A poll interval of 0
// degenerates to a tight loop; Worker floors it at 1 second (documented
// at the call site).
func (j JobConfig) PollIntervalOrDefault() int {
	if j.Watcher.PollInterval == nil {
		return DefaultPollInterval
	}
	return *j.Watcher.PollInterval
}

// DebounceMSOrDefault returns the job's debounce window in milliseconds,
// defaulting to DefaultDebounceMS when unset. An explicit 0 is honored —
// every observation is admitted.
func (j JobConfig) DebounceMSOrDefault() int {
	if j.Watcher.DebounceMS == nil {
		return DefaultDebounceMS
	}
	return *j.Watcher.DebounceMS
}

// Load reads and parses path as a Config. A missing file is fatal (the
// caller decides whether that's tolerable); a malformed file returns a
// wrapped parse error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Jobs == nil {
		cfg.Jobs = map[string]JobConfig{}
	}
	return &cfg, nil
}

// LoadWithHash behaves like Load but also returns the SHA-256 hex digest
// of the raw file bytes, so callers can log which on-disk revision a
// reconciliation pass was driven by without building a full audit trail.
func LoadWithHash(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, "", fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Jobs == nil {
		cfg.Jobs = map[string]JobConfig{}
	}

	sum := sha256.Sum256(data)
	return &cfg, hex.EncodeToString(sum[:]), nil
}
