package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"github.com/standardbeagle/configtpl/internal/builtins"
)

func cmdFuncs(args []string, stdout io.Writer) error {
	var category string
	var verbose, categories bool
	fs := pflag.NewFlagSet("funcs", pflag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.Usage = func() { printFuncsUsage(stdout, fs) }
	fs.StringVarP(&category, "category", "c", "", "only list functions in `CATEGORY`")
	fs.BoolVarP(&verbose, "verbose", "v", false, "show descriptions and examples")
	fs.BoolVar(&categories, "categories", false, "list categories with counts")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if categories {
		counts := builtins.Categories()
		for _, name := range builtins.CategoryNames() {
			fmt.Fprintf(stdout, "%-12s %d\n", name, counts[name])
		}
		return nil
	}

	query := strings.Join(fs.Args(), " ")
	funcs := builtins.Search(query, category, 0)
	if len(funcs) == 0 {
		return fmt.Errorf("no functions match %q", query)
	}

	for _, fn := range funcs {
		if !verbose {
			fmt.Fprintf(stdout, "%-28s %s\n", fn.Signature, fn.Description)
			continue
		}
		fmt.Fprintf(stdout, "%s  [%s]\n", fn.Signature, fn.Category)
		fmt.Fprintf(stdout, "  %s\n", fn.Description)
		if fn.Example != "" {
			fmt.Fprintf(stdout, "  example: %s\n", fn.Example)
		}
		if fn.Returns != "" {
			fmt.Fprintf(stdout, "  returns: %s\n", fn.Returns)
		}
		fmt.Fprintln(stdout)
	}
	return nil
}

func printFuncsUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprint(w, `configtpl funcs - Search the template functions

Usage:
  configtpl funcs [options] [QUERY]

Options:
`)
	fmt.Fprint(w, fs.FlagUsages())
}
