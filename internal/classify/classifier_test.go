package classify

import (
	"testing"

	"github.com/jward/kunai/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SeedsDefaults(t *testing.T) {
	c := New()

	assert.Equal(t, graph.Source, c.Classify("main.cc"))
	assert.Equal(t, graph.Header, c.Classify("foo/bar.hpp"))
	assert.Equal(t, graph.Library, c.Classify("libfoo.a"))
	assert.Equal(t, graph.Library, c.Classify("libfoo.dll.a"))
	assert.Equal(t, graph.Input, c.Classify("data.csv"))
	assert.Equal(t, graph.Unsupported, c.Classify("readme"))
	assert.Equal(t, graph.Unsupported, c.Classify("a.o"))
}

func TestClassify_CaseSensitive(t *testing.T) {
	c := New()
	assert.Equal(t, graph.Unsupported, c.Classify("main.CC"))
}

func TestRegister_RejectsNonExtensibleKinds(t *testing.T) {
	c := New()
	c.Register(".exe", graph.Binary)
	c.Register(".o", graph.Object)

	assert.Equal(t, graph.Unsupported, c.Classify("a.exe"))
	assert.Equal(t, graph.Unsupported, c.Classify("a.o"))
}

func TestRegister_OverridesUnsupportedExtension(t *testing.T) {
	c := New()
	require.Equal(t, graph.Unsupported, c.Classify("main.rs"))

	c.Register(".rs", graph.Source)
	assert.Equal(t, graph.Source, c.Classify("main.rs"))
}

func TestRegister_Idempotent(t *testing.T) {
	c := New()
	c.Register(".c", graph.Source)
	c.Register(".c", graph.Source)
	assert.Equal(t, graph.Source, c.Classify("a.c"))
}
