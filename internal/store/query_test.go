package store

import (
	"testing"

	"github.com/jward/kunai/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedChain builds app -> app.o -> app.c, app.o -> app.h, lib.a -> app.o
// (lib.a also depends on the object file app produces, so a reverse search
// from app.c reaches both app and lib.a).
func seedChain(t *testing.T, s *Store) {
	t.Helper()
	require.NoError(t, s.InsertBuildLink(graph.BuildLink{
		Rule: "CXX_EXECUTABLE_LINKER__app", Target: "app", Explicit: []string{"app.o"},
	}))
	require.NoError(t, s.InsertBuildLink(graph.BuildLink{
		Rule: "CXX_COMPILER__app", Target: "app.o", Explicit: []string{"app.c"}, Implicit: []string{"app.h"},
	}))
	require.NoError(t, s.InsertBuildLink(graph.BuildLink{
		Rule: "STATIC_LIBRARY_LINKER__lib", Target: "lib.a", Explicit: []string{"app.o"},
	}))
}

func TestReachableReverse_TransitiveClosure(t *testing.T) {
	s := newTestStore(t)
	seedChain(t, s)

	binaries, err := s.ReachableReverse([]string{"app.c"}, graph.Binary)
	require.NoError(t, err)
	assert.Equal(t, []string{"app"}, binaries)

	libraries, err := s.ReachableReverse([]string{"app.c"}, graph.Library)
	require.NoError(t, err)
	assert.Equal(t, []string{"lib.a"}, libraries)
}

func TestReachableReverse_SubstringSeedIsCaseSensitive(t *testing.T) {
	s := newTestStore(t)
	seedChain(t, s)

	// "APP.C" should not match "app.c" at the store level; that widening is
	// the CLI's --match layer, applied after this query returns.
	binaries, err := s.ReachableReverse([]string{"APP.C"}, graph.Binary)
	require.NoError(t, err)
	assert.Empty(t, binaries)
}

func TestReachableReverse_SubstringSeedMatchesPartialPath(t *testing.T) {
	s := newTestStore(t)
	seedChain(t, s)

	binaries, err := s.ReachableReverse([]string{"app."}, graph.Binary)
	require.NoError(t, err)
	assert.Equal(t, []string{"app"}, binaries)
}

func TestReachableReverse_EmptySeedsReturnsNothing(t *testing.T) {
	s := newTestStore(t)
	seedChain(t, s)

	result, err := s.ReachableReverse(nil, graph.Binary)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestStats_CountsPerKind(t *testing.T) {
	s := newTestStore(t)
	seedChain(t, s)

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Counters.Binaries)
	assert.EqualValues(t, 1, stats.Counters.Libraries)
	assert.EqualValues(t, 1, stats.Counters.Objects)
	assert.EqualValues(t, 1, stats.Counters.Sources)
	assert.EqualValues(t, 1, stats.Counters.Headers)
	assert.True(t, stats.Counters.Deps >= 4)
}

func TestMetadata_RoundTripsFloat(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SetMetadataFloat("perf_query_ms", 12.5))

	stats, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 12.5, stats.Timings.Query)
}
