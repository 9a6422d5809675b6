//go:build plugin

package alertfanout

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/hashicorp/go-plugin"
)

type pluginSink struct {
	path string
}

func newPluginSink(path string) *pluginSink {
	return &pluginSink{path: path}
}

func (s *pluginSink) Name() string { return "plugin" }

// Deliver launches the plugin binary at s.path as a subprocess, dispenses
// its AlertSinkPlugin implementation over the go-plugin RPC transport,
// and invokes Deliver with the rendered payload. The client (and the
// subprocess) are torn down immediately after — plugins are not kept
// warm between alerts, matching the original's load-execute-drop cycle.
func (s *pluginSink) Deliver(ctx context.Context, payload []byte) error {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig: handshakeConfig,
		Plugins: map[string]plugin.Plugin{
			"alert_sink": &alertSinkPluginDef{},
		},
		Cmd: exec.CommandContext(ctx, s.path),
	})
	defer client.Kill()

	rpcClient, err := client.Client()
	if err != nil {
		return errDeliver(s.Name(), fmt.Errorf("connect to plugin %s: %w", s.path, err))
	}

	raw, err := rpcClient.Dispense("alert_sink")
	if err != nil {
		return errDeliver(s.Name(), fmt.Errorf("dispense plugin %s: %w", s.path, err))
	}

	sink, ok := raw.(AlertSinkPlugin)
	if !ok {
		return errDeliver(s.Name(), fmt.Errorf("plugin %s does not implement AlertSinkPlugin", s.path))
	}

	if err := sink.Deliver(payload); err != nil {
		return errDeliver(s.Name(), err)
	}
	return nil
}
