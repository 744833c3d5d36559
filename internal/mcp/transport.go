package mcp

import (
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// HTTPHandlerOptions configures the Streamable HTTP transport.
type HTTPHandlerOptions struct {
	// Stateless serves every request without a session. Tools here never
	// call back into the client, so either mode works.
	Stateless bool
	Logger    *slog.Logger
}

// NewHTTPHandler serves server over Streamable HTTP. Mount it at /mcp.
func NewHTTPHandler(server *Server, opts *HTTPHandlerOptions) http.Handler {
	if opts == nil {
		opts = &HTTPHandlerOptions{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server.MCPServer()
	}, &mcp.StreamableHTTPOptions{Stateless: opts.Stateless})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("MCP request", "method", r.Method, "session", r.Header.Get("Mcp-Session-Id"))
		handler.ServeHTTP(w, r)
	})
}
