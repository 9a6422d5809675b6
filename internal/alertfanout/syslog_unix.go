//go:build unix

package alertfanout

import (
	"context"
	"fmt"
	"log/syslog"
)

type syslogSink struct{}

func newSyslogSink() *syslogSink { return &syslogSink{} }

func (s *syslogSink) Name() string { return "syslog" }

// Deliver writes one info-priority line to the local syslog, per
// spec.md §4.5: "Integrity change: <payload>".
func (s *syslogSink) Deliver(ctx context.Context, payload []byte) error {
	w, err := syslog.New(syslog.LOG_INFO|syslog.LOG_USER, "integritywatch")
	if err != nil {
		return errDeliver(s.Name(), err)
	}
	defer w.Close()

	if err := w.Info(fmt.Sprintf("Integrity change: %s", payload)); err != nil {
		return errDeliver(s.Name(), err)
	}
	return nil
}
