package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/CRJFisher/ariadne/internal/depgraph"
	"github.com/CRJFisher/ariadne/internal/store"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the analysis snapshot",
	Long:  "Run queries against an indexed codebase. All line and column numbers are 0-based.",
}

func init() {
	queryCmd.AddCommand(definitionCmd)
	queryCmd.AddCommand(callersCmd)
	queryCmd.AddCommand(calleesCmd)
	queryCmd.AddCommand(entrypointsCmd)
	queryCmd.AddCommand(depsCmd)
	queryCmd.AddCommand(dependentsCmd)
	queryCmd.AddCommand(cycleCmd)
	queryCmd.AddCommand(filesCmd)
	queryCmd.AddCommand(statsCmd)
}

// openStore opens the snapshot from the --db flag path (or default).
func openStore() (*store.Store, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting cwd: %w", err)
	}
	dbPath := resolveDBPath(findRepoRoot(cwd))
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("snapshot not found: %s (run 'ariadne index' first)", dbPath)
	}
	return store.NewStore(dbPath)
}

func symbolsOut(defs []store.DefRow) []SymbolOut {
	out := make([]SymbolOut, 0, len(defs))
	for _, d := range defs {
		out = append(out, SymbolOut{
			Symbol:   d.Symbol,
			Name:     d.Name,
			Kind:     d.Kind,
			File:     d.File,
			Line:     d.StartRow,
			Col:      d.StartCol,
			Exported: d.Exported,
		})
	}
	return out
}

func edgesOut(edges []store.CallEdgeRow) []CallEdgeOut {
	out := make([]CallEdgeOut, 0, len(edges))
	for _, e := range edges {
		out = append(out, CallEdgeOut{
			Caller: e.Caller,
			Callee: e.Callee,
			Kind:   e.Kind,
			File:   e.File,
			Line:   e.StartRow,
			Col:    e.StartCol,
		})
	}
	return out
}

var definitionCmd = &cobra.Command{
	Use:   "definition <name>",
	Short: "Find definitions by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		defs, err := s.DefinitionsByName(args[0])
		if err != nil {
			return err
		}
		return output(symbolsOut(defs))
	},
}

var callersCmd = &cobra.Command{
	Use:   "callers <symbol>",
	Short: "List the call edges arriving at a symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		edges, err := s.CallersOf(args[0])
		if err != nil {
			return err
		}
		return output(edgesOut(edges))
	},
}

var calleesCmd = &cobra.Command{
	Use:   "callees <symbol>",
	Short: "List the call edges leaving a symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		edges, err := s.CalleesOf(args[0])
		if err != nil {
			return err
		}
		return output(edgesOut(edges))
	},
}

var entrypointsCmd = &cobra.Command{
	Use:   "entrypoints",
	Short: "List callables nothing in the project calls",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		defs, err := s.EntryPoints()
		if err != nil {
			return err
		}
		return output(symbolsOut(defs))
	},
}

var depsCmd = &cobra.Command{
	Use:   "deps <file>",
	Short: "List the files a file imports from",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		edges, err := s.ImportEdges()
		if err != nil {
			return err
		}
		return output(edges[args[0]])
	},
}

var dependentsCmd = &cobra.Command{
	Use:   "dependents <file>",
	Short: "List the files importing from a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		deps, err := s.Dependents(args[0])
		if err != nil {
			return err
		}
		return output(deps)
	},
}

var cycleCmd = &cobra.Command{
	Use:   "cycle <file>",
	Short: "Report an import cycle through a file, if any",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		edges, err := s.ImportEdges()
		if err != nil {
			return err
		}
		g := depgraph.New()
		for from, tos := range edges {
			g.UpdateFile(from, tos)
		}
		return output(CycleOut{File: args[0], Cycle: g.DetectCycle(args[0])})
	},
}

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List the indexed files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		rows, err := s.Files()
		if err != nil {
			return err
		}
		out := make([]FileOut, 0, len(rows))
		for _, f := range rows {
			out = append(out, FileOut{Path: f.Path, Language: f.Language, Hash: f.Hash})
		}
		return output(out)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Report snapshot counters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		files, defs, resolutions, callEdges, err := s.Counts()
		if err != nil {
			return err
		}
		return output(StatsOut{Files: files, Definitions: defs, Resolutions: resolutions, CallEdges: callEdges})
	},
}
