package alertfanout

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"
)

// webhookTimeout bounds a single delivery attempt, matching the teacher's
// internal/alert/webhook.go request timeout.
const webhookTimeout = 5 * time.Second

var webhookClient = &http.Client{Timeout: webhookTimeout}

type webhookSink struct {
	url     string
	headers map[string]string
}

func newWebhookSink(url string) *webhookSink {
	return &webhookSink{url: url}
}

// NewWebhookSink builds a webhook Sink for callers outside this package.
// headers, if non-nil, are set on every request in addition to
// Content-Type — internal/integrity's tamper-event reporting uses this to
// carry the extra headers configured in its own alerts.yaml.
func NewWebhookSink(url string, headers map[string]string) Sink {
	return &webhookSink{url: url, headers: headers}
}

func (w *webhookSink) Name() string { return "webhook" }

// Deliver POSTs payload as application/json. Connection errors and 4xx/5xx
// responses are both failures, per spec.md §4.5.
func (w *webhookSink) Deliver(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return errDeliver(w.Name(), fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := webhookClient.Do(req)
	if err != nil {
		return errDeliver(w.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return errDeliver(w.Name(), fmt.Errorf("HTTP %d", resp.StatusCode))
	}
	return nil
}
