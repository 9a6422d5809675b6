package alertfanout

import (
	"context"
	"os/exec"
)

type scriptSink struct {
	path string
}

func newScriptSink(path string) *scriptSink {
	return &scriptSink{path: path}
}

func (s *scriptSink) Name() string { return "script" }

// Deliver executes the configured file with no arguments. A non-zero exit
// is a failure; the payload is not passed as an argument or on stdin —
// the script is expected to re-derive context itself (e.g. from the
// syslog or webhook sink fired alongside it).
func (s *scriptSink) Deliver(ctx context.Context, payload []byte) error {
	cmd := exec.CommandContext(ctx, s.path)
	if err := cmd.Run(); err != nil {
		return errDeliver(s.Name(), err)
	}
	return nil
}
