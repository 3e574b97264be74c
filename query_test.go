package kunai

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_PerfMetadataOnlyRecordedOnNonEmptyResult(t *testing.T) {
	buildDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(buildDir, "build.ninja"), []byte("build a.o: CC a.c\n"), 0o644))

	st, err := NewLoader(buildDir, Options{}).Load()
	require.NoError(t, err)
	defer st.Close()

	q := NewQuery(st)

	empty, err := q.AllOfKind(Binary)
	require.NoError(t, err)
	assert.Empty(t, empty)

	value, err := st.GetMetadata("perf_query_ms")
	require.NoError(t, err)
	assert.Empty(t, value, "an empty result must not stamp perf_query_ms")

	sources, err := q.AllOfKind(Source)
	require.NoError(t, err)
	assert.NotEmpty(t, sources)

	value, err = st.GetMetadata("perf_query_ms")
	require.NoError(t, err)
	assert.NotEmpty(t, value, "a non-empty result must stamp perf_query_ms")
}

func TestQuery_ReachableReverseAcrossKinds(t *testing.T) {
	buildDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(buildDir, "build.ninja"), []byte(
		"build app: LINKER app.o\nbuild app.o: CC app.c\n"), 0o644))

	st, err := NewLoader(buildDir, Options{}).Load()
	require.NoError(t, err)
	defer st.Close()

	q := NewQuery(st)
	objects, err := q.ReachableReverse([]string{"app.c"}, Object)
	require.NoError(t, err)
	assert.Equal(t, []string{"app.o"}, objects)
}
