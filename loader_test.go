package kunai

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeNinjaFile(t *testing.T, buildDir, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(buildDir, "build.ninja"), []byte(contents), 0o644))
}

func TestLoader_MissingBuildNinjaIsFatal(t *testing.T) {
	buildDir := t.TempDir()
	_, err := NewLoader(buildDir, Options{}).Load()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoader_TrivialChainEndToEnd(t *testing.T) {
	buildDir := t.TempDir()
	writeNinjaFile(t, buildDir,
		"rule CXX_EXECUTABLE_LINKER__app\n  command = link\nbuild app: CXX_EXECUTABLE_LINKER__app app.o\nbuild app.o: CC app.c\n")

	st, err := NewLoader(buildDir, Options{}).Load()
	require.NoError(t, err)
	defer st.Close()

	q := NewQuery(st)
	binaries, err := q.AllOfKind(Binary)
	require.NoError(t, err)
	assert.Equal(t, []string{"app"}, binaries)

	sources, err := q.AllOfKind(Source)
	require.NoError(t, err)
	assert.Equal(t, []string{"app.c"}, sources)
}

func TestLoader_SecondLoadWithNoChangesIsANoOp(t *testing.T) {
	buildDir := t.TempDir()
	writeNinjaFile(t, buildDir, "build a.o: CC a.c\n")

	loader := NewLoader(buildDir, Options{})
	st1, err := loader.Load()
	require.NoError(t, err)
	stats1, err := st1.Stats()
	require.NoError(t, err)
	fillingFirst, err := st1.GetMetadata("perf_db_filling_ms")
	require.NoError(t, err)
	require.NoError(t, st1.Close())

	// Second load against the same build.ninja and db: nothing changed, so
	// no reparse and no new perf_db_filling_ms timing should be recorded.
	st2, err := loader.Load()
	require.NoError(t, err)
	defer st2.Close()

	ninjaTime, err := st2.GetMetadata("build_ninja_time")
	require.NoError(t, err)
	assert.NotEmpty(t, ninjaTime)

	fillingSecond, err := st2.GetMetadata("perf_db_filling_ms")
	require.NoError(t, err)
	assert.Equal(t, fillingFirst, fillingSecond)

	stats2, err := st2.Stats()
	require.NoError(t, err)
	assert.Equal(t, stats1.Counters, stats2.Counters)
}

func TestLoader_ForceRebuildReparsesEvenWithoutChanges(t *testing.T) {
	buildDir := t.TempDir()
	writeNinjaFile(t, buildDir, "build a.o: CC a.c\n")

	loader := NewLoader(buildDir, Options{})
	st, err := loader.Load()
	require.NoError(t, err)
	require.NoError(t, st.Close())

	forced := NewLoader(buildDir, Options{ForceRebuild: true})
	st2, err := forced.Load()
	require.NoError(t, err)
	defer st2.Close()

	sources, err := NewQuery(st2).AllOfKind(Source)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.c"}, sources)
}

func TestLoader_ChangedBuildNinjaTriggersReload(t *testing.T) {
	buildDir := t.TempDir()
	writeNinjaFile(t, buildDir, "build a.o: CC a.c\n")

	loader := NewLoader(buildDir, Options{})
	st, err := loader.Load()
	require.NoError(t, err)
	require.NoError(t, st.Close())

	// Ensure a distinguishable mtime, then change the content.
	time.Sleep(10 * time.Millisecond)
	writeNinjaFile(t, buildDir, "build b.o: CC b.c\n")

	st2, err := loader.Load()
	require.NoError(t, err)
	defer st2.Close()

	sources, err := NewQuery(st2).AllOfKind(Source)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.c"}, sources)
}

func TestLoader_SourceExtOverrideClassifiesUnknownExtension(t *testing.T) {
	buildDir := t.TempDir()
	writeNinjaFile(t, buildDir, "build a.o: CC a.weird\n")

	st, err := NewLoader(buildDir, Options{SourceExts: []string{".weird"}}).Load()
	require.NoError(t, err)
	defer st.Close()

	sources, err := NewQuery(st).AllOfKind(Source)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.weird"}, sources)
}
