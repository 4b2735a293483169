package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"
	"github.com/standardbeagle/configtpl"
	"github.com/standardbeagle/configtpl/internal/logging"
	"github.com/standardbeagle/configtpl/internal/server"
)

func cmdServe(ctx context.Context, args []string, stdout io.Writer) error {
	var port int
	var logLevel string
	var noSystem bool
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.Usage = func() { printServeUsage(stdout, fs) }
	fs.IntVarP(&port, "port", "p", 0, "run with SSE/HTTP transport on `PORT` (default: stdio)")
	fs.StringVar(&logLevel, "log-level", "", "log `LEVEL`: debug, info, warn, error")
	fs.BoolVar(&noSystem, "no-system", false, "disable cmd, readFile, fileExists and glob")

	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := logging.NewFromEnvWithLevel(logLevel)
	logging.SetDefault(logger)

	opts := []configtpl.Option{configtpl.WithLogger(logger)}
	if noSystem {
		opts = append(opts, configtpl.WithoutSystemFuncs())
	}
	srv := server.New(configtpl.New(opts...), version)

	var err error
	if port > 0 {
		err = srv.RunHTTP(ctx, port)
	} else {
		err = srv.RunStdio(ctx)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func printServeUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprint(w, `configtpl serve - Start the MCP server

Usage:
  configtpl serve [options]

Tools:
  build_config            Build configuration from files
  build_config_string     Build configuration from a template string
  template_functions      Search the template functions
  template_function_help  Show one template function

Options:
`)
	fmt.Fprint(w, fs.FlagUsages())
}
