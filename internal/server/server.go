package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/standardbeagle/configtpl"
	"github.com/standardbeagle/configtpl/internal/logging"
)

const serverName = "configtpl"

// Server exposes configuration builds as MCP tools.
type Server struct {
	mcpServer *mcp.Server
	builder   *configtpl.Builder
	logger    logging.Logger
}

// New creates a Server that builds with builder. A nil builder gets the
// default configuration.
func New(builder *configtpl.Builder, version string) *Server {
	logger := logging.Default()
	if builder == nil {
		builder = configtpl.New(configtpl.WithLogger(logger))
	}

	s := &Server{
		builder: builder,
		logger:  logger,
	}

	s.mcpServer = mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: version,
		},
		&mcp.ServerOptions{
			Capabilities: &mcp.ServerCapabilities{
				Tools: &mcp.ToolCapabilities{},
			},
		},
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcpServer
}

// RunStdio runs the server using stdio transport.
func (s *Server) RunStdio(ctx context.Context) error {
	s.logger.Info("configtpl server running", "transport", "stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP runs the server using HTTP/SSE transport until ctx is done.
func (s *Server) RunHTTP(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)

	sseHandler := mcp.NewSSEHandler(func(r *http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/", sseHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	s.logger.Info("configtpl server running", "transport", "sse", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return ctx.Err()
}

// CallTool calls a tool directly (for testing purposes).
func (s *Server) CallTool(ctx context.Context, toolName string, args map[string]any) (any, error) {
	switch toolName {
	case "build_config":
		input := BuildConfigInput{
			Paths:        getStringSliceArg(args, "paths"),
			Defaults:     getMapArg(args, "defaults"),
			Overrides:    getMapArg(args, "overrides"),
			Context:      getMapArg(args, "context"),
			DirectiveKey: getStringArg(args, "directive_key"),
			NoDirectives: getBoolArg(args, "no_directives"),
		}
		_, result, err := s.handleBuildConfig(ctx, nil, input)
		return result, err

	case "build_config_string":
		input := BuildConfigStringInput{
			Input:     getStringArg(args, "input"),
			Format:    getStringArg(args, "format"),
			WorkDir:   getStringArg(args, "work_dir"),
			Defaults:  getMapArg(args, "defaults"),
			Overrides: getMapArg(args, "overrides"),
			Context:   getMapArg(args, "context"),
		}
		_, result, err := s.handleBuildConfigString(ctx, nil, input)
		return result, err

	case "template_functions":
		input := TemplateFunctionsInput{
			Query:          getStringArg(args, "query"),
			Category:       getStringArg(args, "category"),
			Limit:          getIntArg(args, "limit"),
			Verbose:        getBoolArg(args, "verbose"),
			ListCategories: getBoolArg(args, "list_categories"),
		}
		_, result, err := s.handleTemplateFunctions(ctx, nil, input)
		return result, err

	case "template_function_help":
		input := TemplateFunctionHelpInput{
			Name: getStringArg(args, "name"),
		}
		_, result, err := s.handleTemplateFunctionHelp(ctx, nil, input)
		return result, err

	default:
		return nil, fmt.Errorf("unknown tool: %s", toolName)
	}
}

func getStringArg(args map[string]any, key string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func getMapArg(args map[string]any, key string) map[string]any {
	if v, ok := args[key]; ok {
		if m, ok := v.(map[string]any); ok {
			return m
		}
	}
	return nil
}

func getBoolArg(args map[string]any, key string) bool {
	if v, ok := args[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

func getIntArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func getStringSliceArg(args map[string]any, key string) []string {
	if v, ok := args[key]; ok {
		switch s := v.(type) {
		case []string:
			return s
		case []any:
			result := make([]string, 0, len(s))
			for _, item := range s {
				if str, ok := item.(string); ok {
					result = append(result, str)
				}
			}
			return result
		case string:
			return []string{s}
		}
	}
	return nil
}
