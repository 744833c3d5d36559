package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with its service.
type Server struct {
	server *mcp.Server
	svc    Service
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(svc Service, version string) *Server {
	if version == "" {
		version = "v0.1.0"
	}
	impl := &mcp.Implementation{
		Name:    "repo-rag",
		Version: version,
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ingest_repository",
		Description: "Clone a git repository, analyze and summarize every text file with an LLM, and index the results for question answering. Returns the repository summary.",
	}, makeIngestHandler(svc))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_index",
		Description: "Answer a question from the indexed repositories and documents. Returns the answer and the excerpts it was based on.",
	}, makeQueryHandler(svc))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "store_document",
		Description: "Split a text or markdown document into chunks and index them.",
	}, makeStoreHandler(svc))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_collection",
		Description: "Delete the vector collection and everything indexed in it.",
	}, makeDeleteHandler(svc))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_index_status",
		Description: "Get the vector store health and the collection's dimension and point count.",
	}, makeStatusHandler(svc))

	return &Server{
		server: server,
		svc:    svc,
	}
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance.
// Used by transport handlers that need to wrap the server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
