package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/CRJFisher/ariadne"
	"github.com/CRJFisher/ariadne/internal/lang"
)

var (
	flagDB     string
	flagFormat string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "ariadne",
	Short:         "Deterministic symbol resolution and call-graph analysis",
	Long:          "Ariadne indexes JavaScript, TypeScript, and Python sources with tree-sitter, resolves references across modules, and writes a SQLite snapshot for semantic queries.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run — prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "snapshot path (default: .ariadne/snapshot.db relative to repo root)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format: json|text")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(watchCmd)
}

var (
	flagLanguages    string
	flagIncludeTests bool
	flagSerial       bool
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a repository and write the analysis snapshot",
	Long:  "Parses source files with tree-sitter, resolves every reference, builds the call graph, and writes the results to the SQLite snapshot.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndex,
}

func init() {
	for _, c := range []*cobra.Command{indexCmd, watchCmd} {
		c.Flags().StringVar(&flagLanguages, "languages", "", "comma-separated language filter (e.g. typescript,python)")
		c.Flags().BoolVar(&flagIncludeTests, "include-tests", false, "index test files too")
	}
	indexCmd.Flags().BoolVar(&flagSerial, "serial", false, "disable parallel indexing")
}

func runIndex(cmd *cobra.Command, args []string) error {
	start := time.Now()

	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return err
	}
	dbPath, err := prepareDBPath(targetDir)
	if err != nil {
		return err
	}

	project, err := newProject()
	if err != nil {
		return err
	}

	indexStart := time.Now()
	if err := project.IndexDirectory(context.Background(), targetDir); err != nil {
		return fmt.Errorf("indexing: %w", err)
	}
	indexDuration := time.Since(indexStart)

	saveStart := time.Now()
	if err := project.SaveSnapshot(dbPath); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	saveDuration := time.Since(saveStart)

	stats := project.Stats()
	fmt.Fprintf(os.Stderr, "Indexed %s in %s (index: %s, resolve+save: %s)\n",
		targetDir,
		time.Since(start).Round(time.Millisecond),
		indexDuration.Round(time.Millisecond),
		saveDuration.Round(time.Millisecond),
	)
	fmt.Fprintf(os.Stderr, "%d files, %d import edges, %d cached resolutions\n",
		stats.FileCount, stats.EdgeCount, stats.CachedResolutionCount)
	fmt.Fprintf(os.Stderr, "Snapshot: %s\n", dbPath)
	return nil
}

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Index a repository and re-index on file changes",
	Long:  "Runs a full index, then watches the tree and applies incremental updates, refreshing the snapshot after each batch of changes.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return err
	}
	dbPath, err := prepareDBPath(targetDir)
	if err != nil {
		return err
	}

	project, err := newProject()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := project.IndexDirectory(ctx, targetDir); err != nil {
		return fmt.Errorf("indexing: %w", err)
	}
	if err := project.SaveSnapshot(dbPath); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Watching %s for changes (Ctrl+C to stop)\n", targetDir)

	err = project.WatchDirectory(ctx, targetDir, func(updated, removed []string) {
		if err := project.SaveSnapshot(dbPath); err != nil {
			fmt.Fprintf(os.Stderr, "Snapshot error: %v\n", err)
			return
		}
		fmt.Fprintf(os.Stderr, "Re-indexed %d file(s), removed %d\n", len(updated), len(removed))
	})
	if err == context.Canceled {
		return nil
	}
	return err
}

// newProject builds a Project from the shared flags.
func newProject() (*ariadne.Project, error) {
	var opts []ariadne.Option
	if flagLanguages != "" {
		var languages []lang.Language
		for _, name := range strings.Split(flagLanguages, ",") {
			l := lang.Language(strings.TrimSpace(name))
			if !supportedLanguage(l) {
				return nil, fmt.Errorf("unsupported language %q", name)
			}
			languages = append(languages, l)
		}
		opts = append(opts, ariadne.WithLanguages(languages...))
	}
	if flagIncludeTests {
		opts = append(opts, ariadne.WithIncludeTests(true))
	}
	if flagSerial {
		opts = append(opts, ariadne.WithParallel(false))
	}
	return ariadne.New(opts...), nil
}

func supportedLanguage(l lang.Language) bool {
	for _, s := range lang.Supported() {
		if s == l {
			return true
		}
	}
	return false
}

// resolveTargetDir returns the absolute path of the directory to analyze.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

// findRepoRoot walks up from startDir looking for a .git directory.
// Returns the directory containing .git, or startDir if not found.
func findRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return startDir
		}
		dir = parent
	}
}

// resolveDBPath returns the snapshot path from the --db flag or the default.
func resolveDBPath(repoRoot string) string {
	if flagDB != "" {
		if filepath.IsAbs(flagDB) {
			return flagDB
		}
		return filepath.Join(repoRoot, flagDB)
	}
	return filepath.Join(repoRoot, ".ariadne", "snapshot.db")
}

// prepareDBPath resolves the snapshot path and ensures its directory exists.
func prepareDBPath(targetDir string) (string, error) {
	dbPath := resolveDBPath(findRepoRoot(targetDir))
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", filepath.Dir(dbPath), err)
	}
	return dbPath, nil
}
