package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

var header = color.New(color.FgCyan, color.Bold)

// output renders a query result to stdout in the configured format.
func output(results any) error {
	if flagFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(Result{Results: results})
	}
	return outputText(os.Stdout, results)
}

func outputText(w io.Writer, results any) error {
	switch v := results.(type) {
	case []SymbolOut:
		formatSymbolsText(w, v)
	case []CallEdgeOut:
		formatCallEdgesText(w, v)
	case []FileOut:
		formatFilesText(w, v)
	case []string:
		for _, s := range v {
			fmt.Fprintln(w, s)
		}
	case CycleOut:
		formatCycleText(w, v)
	case StatsOut:
		formatStatsText(w, v)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

func formatSymbolsText(w io.Writer, syms []SymbolOut) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header.Fprintln(tw, "SYMBOL\tNAME\tKIND\tFILE\tLINE\tEXPORTED")
	for _, s := range syms {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%t\n",
			s.Symbol, s.Name, s.Kind, s.File, s.Line, s.Exported)
	}
	tw.Flush()
}

func formatCallEdgesText(w io.Writer, edges []CallEdgeOut) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header.Fprintln(tw, "CALLER\tCALLEE\tKIND\tSITE")
	for _, e := range edges {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s:%d:%d\n",
			e.Caller, e.Callee, e.Kind, e.File, e.Line, e.Col)
	}
	tw.Flush()
}

func formatFilesText(w io.Writer, files []FileOut) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header.Fprintln(tw, "PATH\tLANGUAGE\tHASH")
	for _, f := range files {
		hash := f.Hash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Path, f.Language, hash)
	}
	tw.Flush()
}

func formatCycleText(w io.Writer, c CycleOut) {
	if len(c.Cycle) == 0 {
		fmt.Fprintf(w, "no import cycle through %s\n", c.File)
		return
	}
	fmt.Fprintln(w, strings.Join(c.Cycle, " -> "))
}

func formatStatsText(w io.Writer, s StatsOut) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "files\t%d\n", s.Files)
	fmt.Fprintf(tw, "definitions\t%d\n", s.Definitions)
	fmt.Fprintf(tw, "resolutions\t%d\n", s.Resolutions)
	fmt.Fprintf(tw, "call edges\t%d\n", s.CallEdges)
	tw.Flush()
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
