//go:build !plugin

package alertfanout

import (
	"context"
	"fmt"
)

// pluginSink is a stub when the binary is built without -tags plugin.
// It exists so that configuring alerts.plugin_path doesn't change
// compilation requirements for everyone — only operators who actually
// use the plugin sink need to opt in.
type pluginSink struct {
	path string
}

func newPluginSink(path string) *pluginSink {
	return &pluginSink{path: path}
}

func (s *pluginSink) Name() string { return "plugin" }

func (s *pluginSink) Deliver(ctx context.Context, payload []byte) error {
	return errDeliver(s.Name(), fmt.Errorf("plugin sink disabled: rebuild with -tags plugin (path=%s)", s.path))
}
