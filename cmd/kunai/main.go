// Command kunai ingests a Ninja/CMake build directory and answers
// dependency queries over it.
//
// Grounded on original_source/src/app/app.cpp's argument surface and
// cmd/canopy/main.go's cobra root-command wiring.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/kunai"
)

var (
	flagRebuild     bool
	flagTime        bool
	flagSourceExts  []string
	flagHeaderExts  []string
	flagInputExts   []string
	flagLibraryExts []string

	buildDir string
)

// errEmptyResult signals a legitimately empty target listing: exit 1
// without printing an "Error:" line, matching the original's
// m_printTargets returning EXIT_FAILURE for an empty (not erroneous)
// result set.
var errEmptyResult = &emptyResultError{}

type emptyResultError struct{}

func (e *emptyResultError) Error() string { return "" }

func main() {
	if err := rootCmd.Execute(); err != nil {
		if _, ok := err.(*emptyResultError); !ok {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "kunai <build-dir>",
	Short:         "Query a Ninja/CMake build directory's dependency graph",
	Long:          "kunai ingests build.ninja, .ninja_deps and a CMake File API reply into a SQLite-backed dependency graph, and answers targets-by-kind and blast-radius queries over it.",
	Args:          cobra.ArbitraryArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("missing required argument: build-dir")
		}
		buildDir = normalizeBuildDir(args[0])
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagRebuild, "rebuild", "r", false, "force a full reparse, ignoring the freshness check")
	rootCmd.PersistentFlags().BoolVarP(&flagTime, "time", "t", false, "print wall-clock time for the load and query")
	rootCmd.PersistentFlags().StringSliceVar(&flagSourceExts, "sources-exts", nil, "additional source file extensions")
	rootCmd.PersistentFlags().StringSliceVar(&flagHeaderExts, "headers-exts", nil, "additional header file extensions")
	rootCmd.PersistentFlags().StringSliceVar(&flagInputExts, "inputs-exts", nil, "additional input file extensions")
	rootCmd.PersistentFlags().StringSliceVar(&flagLibraryExts, "library-exts", nil, "additional library file extensions")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(allCmd)
	rootCmd.AddCommand(pointedCmd)
}

// normalizeBuildDir implements the original's build-dir normalization: a
// bare "." resolves to the absolute current directory, and exactly one
// trailing separator is stripped.
func normalizeBuildDir(dir string) string {
	if dir == "." {
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
	}
	return strings.TrimSuffix(dir, string(filepath.Separator))
}

// withLoadedStore opens (and, if needed, reparses) the build directory,
// runs fn against a *kunai.Query wrapping it, and prints the -t/--time
// report the way app.cpp's ScopedTimer does: wrapping the full load +
// dispatch, printed once after the subcommand's own output.
func withLoadedStore(fn func(q *kunai.Query) error) error {
	start := time.Now()

	// The extension flags accept comma- or space-separated lists.
	splitExts := func(values []string) []string {
		var exts []string
		for _, v := range values {
			exts = append(exts, strings.Fields(v)...)
		}
		return exts
	}

	loader := kunai.NewLoader(buildDir, kunai.Options{
		ForceRebuild: flagRebuild,
		SourceExts:   splitExts(flagSourceExts),
		HeaderExts:   splitExts(flagHeaderExts),
		InputExts:    splitExts(flagInputExts),
		LibraryExts:  splitExts(flagLibraryExts),
	})
	st, err := loader.Load()
	if err != nil {
		return err
	}
	defer st.Close()

	err = fn(kunai.NewQuery(st))

	if flagTime {
		fmt.Printf("[retrieved in %d ms]\n", time.Since(start).Milliseconds())
	}
	return err
}
