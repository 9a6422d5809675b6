// Package alertfanout renders an integrity-change payload and delivers it
// to every enabled alert sink, independently and without short-circuiting
// on a single sink's failure (spec.md §4.5).
package alertfanout

import (
	"context"
	"fmt"

	"github.com/ppiankov/integritywatch/internal/config"
)

// Sink is one alert destination. Deliver returns an error describing why
// delivery failed; it must never panic on a bad payload or unreachable
// destination.
type Sink interface {
	Deliver(ctx context.Context, payload []byte) error
	Name() string
}

// Logf is the logging hook Dispatch uses for template fallbacks and
// per-sink failures. Callers typically pass a job-scoped wrapper around
// fmt.Fprintf(os.Stderr, ...), matching the teacher's plain stderr logging.
type Logf func(format string, args ...any)

// Dispatch renders the alert payload for (path, old, new) and delivers it
// to every sink enabled in cfg. Sinks run in the order syslog, webhook,
// script, plugin; a failure in one is logged via logf and does not
// prevent the rest from being attempted.
func Dispatch(ctx context.Context, cfg config.AlertsConfig, path, old, new string, logf Logf) {
	p := Payload{Path: path, Old: old, New: new}

	body, err := renderPayload(cfg.PayloadTemplate, p)
	if err != nil {
		logf("alert: %v", err)
	}

	DeliverAll(ctx, enabledSinks(cfg), body, logf)
}

// DeliverAll delivers payload to every sink in sinks independently: a
// failure in one is logged via logf and never prevents the rest from
// being attempted. This is the partial-failure loop Dispatch itself runs
// on the sinks it builds from a job's config.AlertsConfig; it is exported
// so other callers that assemble their own Sink list outside a job's
// config — internal/integrity's tamper-event reporting, which must stay
// reportable even when the watcher engine's own config can't be trusted —
// get the same independent-delivery guarantee without going through
// config.AlertsConfig at all.
func DeliverAll(ctx context.Context, sinks []Sink, payload []byte, logf Logf) {
	for _, sink := range sinks {
		if err := sink.Deliver(ctx, payload); err != nil {
			logf("alert: %s sink failed: %v", sink.Name(), err)
		}
	}
}

func enabledSinks(cfg config.AlertsConfig) []Sink {
	var sinks []Sink
	if cfg.UseSyslog {
		sinks = append(sinks, newSyslogSink())
	}
	if cfg.WebhookURL != "" {
		sinks = append(sinks, newWebhookSink(cfg.WebhookURL))
	}
	if cfg.ScriptPath != "" {
		sinks = append(sinks, newScriptSink(cfg.ScriptPath))
	}
	if cfg.PluginPath != "" {
		sinks = append(sinks, newPluginSink(cfg.PluginPath))
	}
	return sinks
}

// errDeliver wraps a sink-specific failure with the sink's identity, used
// by sinks that don't otherwise name themselves in their error text.
func errDeliver(name string, err error) error {
	return fmt.Errorf("%s: %w", name, err)
}
