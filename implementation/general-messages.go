package implementation

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const serverName = "lspytype"

// Version is reported to the client in the initialize result.
var Version = "dev"

// protocol.InitializeFunc signature
func Initialize(context *glsp.Context, params *protocol.InitializeParams) (any, error) {
	createWidget(context.Notify)

	capabilities := Handler.CreateServerCapabilities()

	version := Version
	return &protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

// protocol.InitializedFunc signature
func Initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	log.Infof("client initialized")
	return nil
}

// protocol.ShutdownFunc signature
func Shutdown(context *glsp.Context) error {
	disposeWidget()
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

// protocol.ExitFunc signature
func Exit(context *glsp.Context) error {
	disposeWidget()
	return nil
}

// protocol.SetTraceFunc signature
func SetTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}
