package assets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const testIdentity = "arxiv_2503.14443"

func TestRewriteMarkdown(t *testing.T) {
	in := "Intro\n![fig](images/fig1.png)\ntext ![](./images/sub.jpg) end"
	out := RewriteMarkdown(testIdentity, in)

	require.Contains(t, out, "![fig](api/images/arxiv_2503.14443_fig1.png)")
	require.Contains(t, out, "![](api/images/arxiv_2503.14443_sub.jpg)")
	require.NotContains(t, out, "(images/")
}

func TestRewriteMarkdownIdempotent(t *testing.T) {
	in := "![fig](images/fig1.png)"
	once := RewriteMarkdown(testIdentity, in)
	twice := RewriteMarkdown(testIdentity, once)
	require.Equal(t, once, twice)
}

func TestRewriteMarkdownLeavesOtherReferences(t *testing.T) {
	in := "![ext](https://example.com/x.png) and [link](images/a.png)"
	require.Equal(t, in, RewriteMarkdown(testIdentity, in))
}

func TestRewriteHTML(t *testing.T) {
	in := `<p><img src="images/fig1.png" alt="fig" /></p>`
	out := RewriteHTML(testIdentity, in)
	require.Equal(t, `<p><img src="api/images/arxiv_2503.14443_fig1.png" alt="fig" /></p>`, out)
}

func TestRewriteHTMLIdempotent(t *testing.T) {
	in := `<img src="images/fig1.png" />`
	once := RewriteHTML(testIdentity, in)
	twice := RewriteHTML(testIdentity, once)
	require.Equal(t, once, twice)
}

func TestRewriteHTMLIgnoresNonImageTags(t *testing.T) {
	in := `<a href="images/fig1.png">link</a><script src="app.js"></script>`
	require.Equal(t, in, RewriteHTML(testIdentity, in))
}

func TestSplitRef(t *testing.T) {
	identity, filename, ok := SplitRef("arxiv_2503.14443_fig1.png")
	require.True(t, ok)
	require.Equal(t, "arxiv_2503.14443", identity)
	require.Equal(t, "fig1.png", filename)

	identity, filename, ok = SplitRef("pdf_00bc614e_table.jpeg")
	require.True(t, ok)
	require.Equal(t, "pdf_00bc614e", identity)
	require.Equal(t, "table.jpeg", filename)
}

func TestSplitRefInvalid(t *testing.T) {
	for _, ref := range []string{"", "noseparator", "_leading", "trailing_"} {
		_, _, ok := SplitRef(ref)
		require.False(t, ok, "ref %q", ref)
	}
}
