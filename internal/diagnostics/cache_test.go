package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/texd/internal/protocol"
)

func diag(source, message string) protocol.Diagnostic {
	return protocol.Diagnostic{Source: source, Message: message}
}

func TestCache_MergesLintBeforeBuild(t *testing.T) {
	c := NewCache()
	uri := protocol.DocumentURI("file:///main.tex")

	c.UpdateBuild(uri, []protocol.Diagnostic{diag("latex-build", "overfull")})
	c.UpdateLint(uri, []protocol.Diagnostic{diag("chktex", "space")})

	merged := c.Get(uri)
	require.Len(t, merged, 2)
	assert.Equal(t, "chktex", merged[0].Source)
	assert.Equal(t, "latex-build", merged[1].Source)
}

func TestCache_UpdateReplacesWholesale(t *testing.T) {
	c := NewCache()
	uri := protocol.DocumentURI("file:///main.tex")

	c.UpdateLint(uri, []protocol.Diagnostic{diag("chktex", "one"), diag("chktex", "two")})
	c.UpdateLint(uri, []protocol.Diagnostic{diag("chktex", "three")})

	merged := c.Get(uri)
	require.Len(t, merged, 1)
	assert.Equal(t, "three", merged[0].Message)
}

func TestCache_ClearWithNil(t *testing.T) {
	c := NewCache()
	uri := protocol.DocumentURI("file:///main.tex")

	c.UpdateLint(uri, []protocol.Diagnostic{diag("chktex", "stale")})
	c.UpdateLint(uri, nil)

	assert.Empty(t, c.Get(uri))
}

func TestCache_SourcesAreIndependent(t *testing.T) {
	c := NewCache()
	uri := protocol.DocumentURI("file:///main.tex")

	c.UpdateLint(uri, []protocol.Diagnostic{diag("chktex", "lint")})
	c.UpdateBuild(uri, []protocol.Diagnostic{diag("latex-build", "build")})
	c.UpdateLint(uri, nil)

	merged := c.Get(uri)
	require.Len(t, merged, 1)
	assert.Equal(t, "build", merged[0].Message)
}

func TestCache_UnknownDocument(t *testing.T) {
	c := NewCache()
	assert.Empty(t, c.Get("file:///unknown.tex"))
}
