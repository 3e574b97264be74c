package cmakereply

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jward/kunai/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTargetWriter struct {
	targets []graph.CMakeTarget
	exts    map[string]graph.Kind
}

func newFakeTargetWriter() *fakeTargetWriter {
	return &fakeTargetWriter{exts: make(map[string]graph.Kind)}
}

func (w *fakeTargetWriter) InsertCMakeTarget(t graph.CMakeTarget) error {
	w.targets = append(w.targets, t)
	return nil
}

func (w *fakeTargetWriter) RegisterExtension(ext string, kind graph.Kind) { w.exts[ext] = kind }

func (w *fakeTargetWriter) ClassifyExtension(path string) graph.Kind {
	return graph.Unsupported
}

func writeReplyDoc(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
}

func TestParser_AbsentReplyDirIsNotAnError(t *testing.T) {
	w := newFakeTargetWriter()
	err := New(w).Parse(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, w.targets)
}

func TestParser_FullPipeline(t *testing.T) {
	buildDir := t.TempDir()
	replyDir := filepath.Join(buildDir, ".cmake", "api", "v1", "reply")
	require.NoError(t, os.MkdirAll(replyDir, 0o755))

	writeReplyDoc(t, replyDir, "index-2024-01-01T00-00-00-0000.json", `{
  "reply": {
    "codemodel-v2": {
      "jsonFile": "codemodel-v2-abcdef.json"
    }
  }
}`)

	writeReplyDoc(t, replyDir, "codemodel-v2-abcdef.json", `{
  "configurations": [
    {
      "targets": [
        { "jsonFile": "target-app-abcdef.json", "name": "app" }
      ]
    }
  ]
}`)

	writeReplyDoc(t, replyDir, "target-app-abcdef.json", `{
  "id": "app::@abc",
  "name": "app",
  "type": "EXECUTABLE",
  "sources": [
    { "path": "main.cc" },
    { "path": "util.cc" }
  ]
}`)

	require.NoError(t, os.WriteFile(filepath.Join(buildDir, "main.cc"), []byte(""), 0o644))

	w := newFakeTargetWriter()
	require.NoError(t, New(w).Parse(buildDir))

	require.Len(t, w.targets, 1)
	target := w.targets[0]
	assert.Equal(t, "app::@abc", target.ID)
	assert.Equal(t, "app", target.Name)
	assert.Equal(t, "EXECUTABLE", target.Kind)
	require.Len(t, target.Sources, 2)
}

func TestParser_MalformedIndexIsSkippedNotFatal(t *testing.T) {
	buildDir := t.TempDir()
	replyDir := filepath.Join(buildDir, ".cmake", "api", "v1", "reply")
	require.NoError(t, os.MkdirAll(replyDir, 0o755))
	writeReplyDoc(t, replyDir, "index-1.json", `not even json`)

	w := newFakeTargetWriter()
	err := New(w).Parse(buildDir)
	require.NoError(t, err)
	assert.Empty(t, w.targets)
}
