package alertfanout

// AlertSinkPlugin is the interface a native alert-sink plugin implements.
// It replaces the original implementation's dlopen'd C-ABI "run_alert"
// entry point (original_source/src/alerts/plugin.rs) with a stable,
// process-isolated interface per spec.md §9: a plugin failure can no
// longer crash the watcher, and the loader only runs behind the `plugin`
// build tag.
type AlertSinkPlugin interface {
	// Deliver receives the rendered payload and returns an error on
	// failure. A non-zero exit from the plugin subprocess is surfaced
	// here as an error, mirroring the original's non-zero-return check.
	Deliver(payload []byte) error
}
