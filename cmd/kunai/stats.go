package main

import (
	"github.com/spf13/cobra"

	"github.com/jward/kunai"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print database size and timing statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLoadedStore(func(q *kunai.Query) error {
			stats, err := q.Stats()
			if err != nil {
				return err
			}
			printStatsTables(stats)
			return nil
		})
	},
}
