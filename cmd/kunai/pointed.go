package main

import (
	"github.com/spf13/cobra"

	"github.com/jward/kunai"
)

var (
	pointedSelector kindSelector
	pointedMatch    string
)

var pointedCmd = &cobra.Command{
	Use:   "pointed <build-dir> <source-file>...",
	Short: "List targets of the selected kinds reachable from the given source files",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		// args[0] is the build directory, consumed by the root command's
		// PersistentPreRunE; the remaining arguments are the seeds.
		seeds := args[1:]
		anyPrinted := false
		err := withLoadedStore(func(q *kunai.Query) error {
			for _, kind := range pointedSelector.kinds() {
				paths, err := q.ReachableReverse(seeds, kind)
				if err != nil {
					return err
				}
				if printTargets(paths, pointedMatch) {
					anyPrinted = true
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		if !anyPrinted {
			return errEmptyResult
		}
		return nil
	},
}

func init() {
	pointedSelector.register(pointedCmd)
	pointedCmd.Flags().StringVar(&pointedMatch, "match", "", "shell-style wildcard filter, case-insensitive")
}
