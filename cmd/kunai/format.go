// Table formatting and --match filtering.
//
// Grounded on cmd/canopy/format.go's text/tabwriter tables and
// original_source/src/app/app.cpp's m_cmdStats/m_printTargets, enriched
// with github.com/fatih/color (pulled in from the Benny93-axon-go example)
// for the highlighted --match listing ez::TableFormatter did with color in
// the original.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/jward/kunai"
)

var matchColor = color.New(color.FgGreen, color.Bold)

// printStatsTables prints the two-table "Stats"/"Perfos" layout the
// original's m_cmdStats builds.
func printStatsTables(stats kunai.Stats) {
	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "Stats")
	fmt.Fprintf(w, "Database\t%s\n", "kunai.db")
	fmt.Fprintf(w, "Dependencies\t%d\n", stats.Counters.Deps)
	fmt.Fprintf(w, "Sources\t%d\n", stats.Counters.Sources)
	fmt.Fprintf(w, "Headers\t%d\n", stats.Counters.Headers)
	fmt.Fprintf(w, "Objects\t%d\n", stats.Counters.Objects)
	fmt.Fprintf(w, "Libraries\t%d\n", stats.Counters.Libraries)
	fmt.Fprintf(w, "Binaries\t%d\n", stats.Counters.Binaries)
	fmt.Fprintf(w, "Inputs\t%d\n", stats.Counters.Inputs)
	w.Flush()

	fmt.Println()

	w = tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "Perfos")
	fmt.Fprintf(w, "db filling\t%.2f ms\n", stats.Timings.DBFilling)
	fmt.Fprintf(w, "db loading\t%.2f ms\n", stats.Timings.DBLoading)
	fmt.Fprintf(w, "last query\t%.2f ms\n", stats.Timings.Query)
	w.Flush()
}

// printTargets prints paths one per line, applying an optional --match
// wildcard filter, and highlighting the matched portion when a pattern
// was given. Returns false if nothing was printed, so the caller can
// exit non-zero on an empty result without treating it as an error.
func printTargets(paths []string, pattern string) bool {
	printed := false
	for _, path := range paths {
		if pattern != "" && !matchesPattern(path, pattern) {
			continue
		}
		if pattern != "" {
			fmt.Println(highlightMatch(path, pattern))
		} else {
			fmt.Println(path)
		}
		printed = true
	}
	return printed
}

// matchesPattern implements the original's m_printTargets matching: both
// sides lowercased, then shell-style '*'/'?' wildcards via filepath.Match
// rather than a plain substring test. The whole path must match, and '*'
// does not match across a '/'.
func matchesPattern(path, pattern string) bool {
	ok, err := filepath.Match(strings.ToLower(pattern), strings.ToLower(path))
	return err == nil && ok
}

// highlightMatch colors path if pattern has no wildcards (a literal
// pattern highlights its own occurrence); wildcard patterns are left
// unhighlighted since there's no single matched substring to mark.
func highlightMatch(path, pattern string) string {
	if strings.ContainsAny(pattern, "*?[") {
		return path
	}
	idx := strings.Index(strings.ToLower(path), strings.ToLower(pattern))
	if idx < 0 {
		return path
	}
	return path[:idx] + matchColor.Sprint(path[idx:idx+len(pattern)]) + path[idx+len(pattern):]
}
