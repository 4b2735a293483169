package server

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerTools registers all server tools with hand-written schemas.
// The SDK's generated schemas use "type": ["null", "object"], which some
// strict clients reject.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		&mcp.Tool{
			Name:         "build_config",
			Description:  "Build a configuration from templated files. Each file is rendered as a Go template against everything merged so far, parsed (YAML, JSON, KDL or HCL by extension) and deep-merged. Paths may be colon-separated. Files can load more files through the \"@configtpl\": {load_next_defer: [...]} block.",
			InputSchema:  buildConfigInputSchema,
			OutputSchema: buildConfigOutputSchema,
		},
		s.wrapBuildConfig,
	)

	s.mcpServer.AddTool(
		&mcp.Tool{
			Name:         "build_config_string",
			Description:  "Build a configuration from a single templated document. Includes resolve against work_dir. Directive blocks are left as they are.",
			InputSchema:  buildConfigStringInputSchema,
			OutputSchema: buildConfigOutputSchema,
		},
		s.wrapBuildConfigString,
	)

	s.mcpServer.AddTool(
		&mcp.Tool{
			Name:         "template_functions",
			Description:  "Search the template functions available to configuration sources. Compact output (signature) by default. Use verbose=true for full details, list_categories=true for category counts.",
			InputSchema:  templateFunctionsInputSchema,
			OutputSchema: textOutputSchema,
		},
		s.wrapTemplateFunctions,
	)

	s.mcpServer.AddTool(
		&mcp.Tool{
			Name:         "template_function_help",
			Description:  "Get full details for a template function by name.",
			InputSchema:  templateFunctionHelpInputSchema,
			OutputSchema: textOutputSchema,
		},
		s.wrapTemplateFunctionHelp,
	)
}

func (s *Server) wrapBuildConfig(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input BuildConfigInput
	if err := json.Unmarshal(req.Params.Arguments, &input); err != nil {
		return nil, err
	}

	_, output, err := s.handleBuildConfig(ctx, req, input)
	if err != nil {
		return errorResult(err), nil
	}

	return toCallToolResult(output)
}

func (s *Server) wrapBuildConfigString(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input BuildConfigStringInput
	if err := json.Unmarshal(req.Params.Arguments, &input); err != nil {
		return nil, err
	}

	_, output, err := s.handleBuildConfigString(ctx, req, input)
	if err != nil {
		return errorResult(err), nil
	}

	return toCallToolResult(output)
}

func (s *Server) wrapTemplateFunctions(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input TemplateFunctionsInput
	if err := json.Unmarshal(req.Params.Arguments, &input); err != nil {
		return nil, err
	}

	_, output, err := s.handleTemplateFunctions(ctx, req, input)
	if err != nil {
		return errorResult(err), nil
	}

	return toCallToolResult(output)
}

func (s *Server) wrapTemplateFunctionHelp(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input TemplateFunctionHelpInput
	if err := json.Unmarshal(req.Params.Arguments, &input); err != nil {
		return nil, err
	}

	_, output, err := s.handleTemplateFunctionHelp(ctx, req, input)
	if err != nil {
		return errorResult(err), nil
	}

	return toCallToolResult(output)
}

// errorResult creates an error CallToolResult.
func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}
}

// toCallToolResult converts any output to a CallToolResult with JSON text content.
func toCallToolResult(output any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(output)
	if err != nil {
		return errorResult(err), nil
	}

	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: string(data)}},
		StructuredContent: json.RawMessage(data),
	}, nil
}
