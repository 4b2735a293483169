package server

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/standardbeagle/configtpl"
	"github.com/standardbeagle/configtpl/internal/builtins"
)

// DefaultFunctionLimit is the default number of functions returned by
// template_functions.
const DefaultFunctionLimit = 10

// BuildConfigInput is the input for the build_config tool.
type BuildConfigInput struct {
	Paths        []string       `json:"paths"`
	Defaults     map[string]any `json:"defaults,omitempty"`
	Overrides    map[string]any `json:"overrides,omitempty"`
	Context      map[string]any `json:"context,omitempty"`
	DirectiveKey string         `json:"directive_key,omitempty"`
	NoDirectives bool           `json:"no_directives,omitempty"`
}

// BuildConfigOutput is the output for the build tools.
type BuildConfigOutput struct {
	Config map[string]any `json:"config"`
}

func (s *Server) handleBuildConfig(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input BuildConfigInput,
) (*mcp.CallToolResult, BuildConfigOutput, error) {
	if len(configtpl.SplitPaths(input.Paths...)) == 0 {
		return nil, BuildConfigOutput{}, errors.New("paths is required")
	}

	opts := []configtpl.BuildOption{
		configtpl.WithDefaults(input.Defaults),
		configtpl.WithOverrides(input.Overrides),
		configtpl.WithRenderContext(input.Context),
	}
	switch {
	case input.NoDirectives:
		opts = append(opts, configtpl.WithoutDirectives())
	case input.DirectiveKey != "":
		opts = append(opts, configtpl.WithDirectiveKey(input.DirectiveKey))
	}

	cfg, err := s.builder.BuildFromFiles(ctx, input.Paths, opts...)
	if err != nil {
		s.logger.Debug("build_config failed", "paths", input.Paths, "error", err)
		return nil, BuildConfigOutput{}, err
	}

	return nil, BuildConfigOutput{Config: cfg}, nil
}

// BuildConfigStringInput is the input for the build_config_string tool.
type BuildConfigStringInput struct {
	Input     string         `json:"input"`
	Format    string         `json:"format,omitempty"`
	WorkDir   string         `json:"work_dir,omitempty"`
	Defaults  map[string]any `json:"defaults,omitempty"`
	Overrides map[string]any `json:"overrides,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
}

func (s *Server) handleBuildConfigString(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input BuildConfigStringInput,
) (*mcp.CallToolResult, BuildConfigOutput, error) {
	cfg, err := s.builder.BuildFromString(ctx, input.Input,
		configtpl.WithFormat(input.Format),
		configtpl.WithWorkDir(input.WorkDir),
		configtpl.WithDefaults(input.Defaults),
		configtpl.WithOverrides(input.Overrides),
		configtpl.WithRenderContext(input.Context),
	)
	if err != nil {
		s.logger.Debug("build_config_string failed", "error", err)
		return nil, BuildConfigOutput{}, err
	}

	return nil, BuildConfigOutput{Config: cfg}, nil
}

// TemplateFunctionsInput is the input for the template_functions tool.
type TemplateFunctionsInput struct {
	Query          string `json:"query,omitempty"`
	Category       string `json:"category,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	Verbose        bool   `json:"verbose,omitempty"`
	ListCategories bool   `json:"list_categories,omitempty"`
}

// TextOutput is the output for tools that return formatted text.
type TextOutput struct {
	Text string `json:"text"`
}

func (s *Server) handleTemplateFunctions(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input TemplateFunctionsInput,
) (*mcp.CallToolResult, TextOutput, error) {
	if input.ListCategories {
		counts := builtins.Categories()
		var b strings.Builder
		for _, name := range builtins.CategoryNames() {
			fmt.Fprintf(&b, "%s (%d)\n", name, counts[name])
		}
		return nil, TextOutput{Text: b.String()}, nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultFunctionLimit
	}

	funcs := builtins.Search(input.Query, input.Category, limit)
	var b strings.Builder
	for _, fn := range funcs {
		if input.Verbose {
			writeFunction(&b, fn)
			b.WriteString("\n")
			continue
		}
		fmt.Fprintf(&b, "%s\n", fn.Signature)
	}

	// Functions registered on the builder but missing from the reference.
	if input.Query == "" && input.Category == "" {
		var custom []string
		for _, name := range s.builder.Funcs() {
			if _, ok := builtins.Lookup(name); !ok {
				custom = append(custom, name)
			}
		}
		if len(custom) > 0 {
			sort.Strings(custom)
			fmt.Fprintf(&b, "custom: %s\n", strings.Join(custom, ", "))
		}
	}

	if b.Len() == 0 {
		return nil, TextOutput{Text: "no matching functions"}, nil
	}
	return nil, TextOutput{Text: b.String()}, nil
}

// TemplateFunctionHelpInput is the input for the template_function_help tool.
type TemplateFunctionHelpInput struct {
	Name string `json:"name"`
}

func (s *Server) handleTemplateFunctionHelp(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input TemplateFunctionHelpInput,
) (*mcp.CallToolResult, TextOutput, error) {
	if input.Name == "" {
		return nil, TextOutput{}, errors.New("name is required")
	}

	fn, ok := builtins.Lookup(input.Name)
	if !ok {
		return nil, TextOutput{}, fmt.Errorf("unknown function: %s", input.Name)
	}

	var b strings.Builder
	writeFunction(&b, fn)
	return nil, TextOutput{Text: b.String()}, nil
}

func writeFunction(b *strings.Builder, fn builtins.Function) {
	fmt.Fprintf(b, "%s  [%s]\n", fn.Signature, fn.Category)
	fmt.Fprintf(b, "  %s\n", fn.Description)
	if fn.Example != "" {
		fmt.Fprintf(b, "  example: %s\n", fn.Example)
	}
	if fn.Returns != "" {
		fmt.Fprintf(b, "  returns: %s\n", fn.Returns)
	}
}
