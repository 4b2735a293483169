package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
)

const version = "0.1.0"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run dispatches a command and returns the process exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}

	var err error
	switch args[0] {
	case "render":
		err = cmdRender(ctx, args[1:], stdout)
	case "render-string":
		err = cmdRenderString(ctx, args[1:], stdin, stdout)
	case "funcs":
		err = cmdFuncs(args[1:], stdout)
	case "serve":
		err = cmdServe(ctx, args[1:], stdout)
	case "version", "-v", "--version":
		fmt.Fprintf(stdout, "configtpl version %s\n", version)
	case "help", "-h", "--help":
		printUsage(stdout)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return 1
	}

	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `configtpl - Build configuration from templated sources

Usage:
  configtpl <command> [options]

Commands:
  render          Build configuration from files
  render-string   Build configuration from a template string or stdin
  funcs           Search the template functions
  serve           Start the MCP server
  version         Show version
  help            Show this help

Run 'configtpl <command> --help' for more information on a command.

Settings:
  Defaults for the render flags are read from:
  1. User settings: ~/.config/configtpl/config.kdl
  2. Project settings: .configtpl.kdl (in current directory)
  3. Local settings: .configtpl.local.kdl (in current directory)
`)
}
