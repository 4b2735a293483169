package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"
	"github.com/standardbeagle/configtpl"
	"github.com/standardbeagle/configtpl/internal/merge"
	"gopkg.in/yaml.v3"
)

func cmdRender(ctx context.Context, args []string, stdout io.Writer) error {
	var flags buildFlags
	fs := pflag.NewFlagSet("render", pflag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.Usage = func() { printRenderUsage(stdout, fs) }
	flags.register(fs)

	if err := fs.Parse(args); err != nil {
		return err
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	flags.applySettings(fs, settings)

	paths := fs.Args()
	if len(paths) == 0 {
		paths = settings.Sources
	}
	if len(configtpl.SplitPaths(paths...)) == 0 {
		return errors.New("at least one source path is required")
	}

	b := flags.newBuilder()
	opts, err := flags.buildOptions(ctx, b)
	if err != nil {
		return err
	}

	cfg, err := b.BuildFromFiles(ctx, paths, opts...)
	if err != nil {
		return err
	}
	return writeResult(stdout, cfg, flags.get, flags.output)
}

func cmdRenderString(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	var flags buildFlags
	var format, workDir string
	fs := pflag.NewFlagSet("render-string", pflag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.Usage = func() { printRenderStringUsage(stdout, fs) }
	flags.register(fs)
	fs.StringVarP(&format, "format", "f", "", "input `FORMAT`: yaml, json, kdl or hcl (default yaml)")
	fs.StringVar(&workDir, "work-dir", "", "`DIR` for include, readFile and cmd (default: current directory)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	flags.applySettings(fs, settings)

	var input string
	switch fs.NArg() {
	case 0:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		input = string(data)
	case 1:
		input = fs.Arg(0)
		if input == "-" {
			data, err := io.ReadAll(stdin)
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			input = string(data)
		}
	default:
		return errors.New("expected a single template argument")
	}

	b := flags.newBuilder()
	opts, err := flags.buildOptions(ctx, b)
	if err != nil {
		return err
	}
	opts = append(opts, configtpl.WithFormat(format), configtpl.WithWorkDir(workDir))

	cfg, err := b.BuildFromString(ctx, input, opts...)
	if err != nil {
		return err
	}
	return writeResult(stdout, cfg, flags.get, flags.output)
}

// writeResult prints cfg, or the value at path, in the requested format.
// Scalars selected by path print bare.
func writeResult(w io.Writer, cfg map[string]any, path, format string) error {
	var value any = cfg
	if path != "" {
		v, ok := merge.Lookup(cfg, path)
		if !ok {
			return fmt.Errorf("no value at %q", path)
		}
		switch v.(type) {
		case map[string]any, []any:
			value = v
		case nil:
			return nil
		default:
			_, err := fmt.Fprintln(w, v)
			return err
		}
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func printRenderUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprint(w, `configtpl render - Build configuration from files

Usage:
  configtpl render [options] PATH...

Each PATH may hold several colon-separated paths. Sources are rendered as
Go templates against everything merged so far, then parsed by extension
(.yaml/.yml/.cfg: YAML, .json/.jsonc: JSON, .kdl: KDL, .hcl: HCL).

Options:
`)
	fmt.Fprint(w, fs.FlagUsages())
	fmt.Fprint(w, `
Examples:
  configtpl render config/base.cfg:config/prod.cfg
  configtpl render app.yaml --set server.port=8080 -o json
  configtpl render app.yaml --var region=eu-west-1 --get db.host
`)
}

func printRenderStringUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprint(w, `configtpl render-string - Build configuration from a template string

Usage:
  configtpl render-string [options] [TEMPLATE|-]

Reads the template from stdin when it is omitted or "-". Directive blocks
are left as they are.

Options:
`)
	fmt.Fprint(w, fs.FlagUsages())
}
