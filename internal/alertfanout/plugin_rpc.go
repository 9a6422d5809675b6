//go:build plugin

package alertfanout

import (
	"net/rpc"

	"github.com/hashicorp/go-plugin"
)

// handshakeConfig is shared between host and plugin so a mismatched
// build never talks across versions by accident.
var handshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "INTEGRITYWATCH_ALERT_SINK",
	MagicCookieValue: "integrity-change",
}

// alertSinkRPCClient is the host-side stub used by the plugin.Client.
type alertSinkRPCClient struct{ client *rpc.Client }

func (c *alertSinkRPCClient) Deliver(payload []byte) error {
	var resp struct{}
	return c.client.Call("Plugin.Deliver", payload, &resp)
}

// alertSinkRPCServer runs inside the plugin subprocess and forwards RPC
// calls to the real implementation. Only relevant to plugin authors.
type alertSinkRPCServer struct{ Impl AlertSinkPlugin }

func (s *alertSinkRPCServer) Deliver(payload []byte, resp *struct{}) error {
	return s.Impl.Deliver(payload)
}

// alertSinkPluginDef wires AlertSinkPlugin into go-plugin's net/rpc
// transport, following the library's documented KV-plugin pattern.
type alertSinkPluginDef struct {
	Impl AlertSinkPlugin
}

func (p *alertSinkPluginDef) Server(*plugin.MuxBroker) (interface{}, error) {
	return &alertSinkRPCServer{Impl: p.Impl}, nil
}

func (p *alertSinkPluginDef) Client(b *plugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &alertSinkRPCClient{client: c}, nil
}
