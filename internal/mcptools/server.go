package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewAnalysisMCPServer creates an MCP server with all 5 analysis tools
// registered.
func NewAnalysisMCPServer(svc *AnalysisService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "gatomia-wiki",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_repo",
		Description: "Analyze a repository: parse source files with tree-sitter, build the component dependency graph, compute the leaf-first processing order, and cluster components into modules. Writes JSON artifacts to the working directory.",
	}, svc.AnalyzeRepo)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_module_tree",
		Description: "Return the clustered module tree of an analysis run. Each module groups leaf components by directory structure.",
	}, svc.GetModuleTree)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_processing_order",
		Description: "Return the leaf-first processing order of an analysis run: level 0 holds components with no dependencies, each later level depends only on earlier ones.",
	}, svc.GetProcessingOrder)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_components",
		Description: "Search for components (functions, methods, classes, types, etc.) by id or name substring match. Optionally filter by component kind and limit results.",
	}, svc.QueryComponents)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_dependencies",
		Description: "Traverse the component dependency graph upstream or downstream from a component id, up to the specified depth.",
	}, svc.GetDependencies)

	return server
}

// RunStdioServer serves the analysis MCP tools over stdio until the
// context is cancelled.
func RunStdioServer(ctx context.Context, svc *AnalysisService) error {
	server := NewAnalysisMCPServer(svc)
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTPServer starts an HTTP server exposing the analysis MCP tools.
func RunHTTPServer(ctx context.Context, svc *AnalysisService, addr string) error {
	server := NewAnalysisMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
