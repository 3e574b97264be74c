package main

import (
	"testing"

	"github.com/jward/kunai"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeBuildDir(t *testing.T) {
	assert.Equal(t, "/tmp/build", normalizeBuildDir("/tmp/build/"))
	assert.Equal(t, "/tmp/build", normalizeBuildDir("/tmp/build"))
}

func TestMatchesPattern_WildcardIsCaseInsensitive(t *testing.T) {
	assert.True(t, matchesPattern("SRC/APP.CC", "src/*.cc"))
	assert.False(t, matchesPattern("src/app.h", "*.cc"))
}

func TestHighlightMatch_LiteralPatternHighlightsSubstring(t *testing.T) {
	out := highlightMatch("src/app.cc", "app")
	assert.Contains(t, out, "app")
}

func TestHighlightMatch_WildcardPatternLeavesPathUnchanged(t *testing.T) {
	assert.Equal(t, "src/app.cc", highlightMatch("src/app.cc", "*.cc"))
}

func TestKindSelector_DefaultsToAllFourKinds(t *testing.T) {
	var s kindSelector
	assert.ElementsMatch(t, []kunai.Kind{kunai.Binary, kunai.Library, kunai.Source, kunai.Header}, s.kinds())
}

func TestKindSelector_RestrictsToChosenKinds(t *testing.T) {
	s := kindSelector{binaries: true}
	assert.Equal(t, []kunai.Kind{kunai.Binary}, s.kinds())
}
