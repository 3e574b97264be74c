package main

import (
	"github.com/spf13/cobra"

	"github.com/jward/kunai"
)

// kindSelector holds the -b/-l/-s/-h boolean flags shared by all and
// pointed. If none are set, every kind is selected -- matching the
// original's default of an empty (unrestricted) target-type set.
type kindSelector struct {
	binaries  bool
	libraries bool
	sources   bool
	headers   bool
}

func (s *kindSelector) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&s.binaries, "bins", "b", false, "select binary targets")
	cmd.Flags().BoolVarP(&s.libraries, "libs", "l", false, "select library targets")
	cmd.Flags().BoolVarP(&s.sources, "sources", "s", false, "select source targets")
	cmd.Flags().BoolVarP(&s.headers, "headers", "h", false, "select header targets")
}

func (s *kindSelector) kinds() []kunai.Kind {
	var kinds []kunai.Kind
	if s.binaries {
		kinds = append(kinds, kunai.Binary)
	}
	if s.libraries {
		kinds = append(kinds, kunai.Library)
	}
	if s.sources {
		kinds = append(kinds, kunai.Source)
	}
	if s.headers {
		kinds = append(kinds, kunai.Header)
	}
	if len(kinds) == 0 {
		kinds = []kunai.Kind{kunai.Binary, kunai.Library, kunai.Source, kunai.Header}
	}
	return kinds
}
