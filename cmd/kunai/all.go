package main

import (
	"github.com/spf13/cobra"

	"github.com/jward/kunai"
)

var (
	allSelector kindSelector
	allMatch    string
)

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "List every target of the selected kinds",
	RunE: func(cmd *cobra.Command, args []string) error {
		anyPrinted := false
		err := withLoadedStore(func(q *kunai.Query) error {
			for _, kind := range allSelector.kinds() {
				paths, err := q.AllOfKind(kind)
				if err != nil {
					return err
				}
				if printTargets(paths, allMatch) {
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
	allSelector.register(allCmd)
	allCmd.Flags().StringVar(&allMatch, "match", "", "shell-style wildcard filter, case-insensitive")
}
