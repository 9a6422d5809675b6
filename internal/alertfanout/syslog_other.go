//go:build !unix

package alertfanout

import (
	"context"
	"errors"
)

// syslogSink is a no-op stub on non-unix platforms, where log/syslog is
// unavailable. use_syslog is still parsed from config; it simply always
// fails delivery there, which Dispatch logs like any other sink failure.
type syslogSink struct{}

func newSyslogSink() *syslogSink { return &syslogSink{} }

func (s *syslogSink) Name() string { return "syslog" }

func (s *syslogSink) Deliver(ctx context.Context, payload []byte) error {
	return errDeliver(s.Name(), errors.New("syslog is not supported on this platform"))
}
