package markdownutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderBasics(t *testing.T) {
	html, err := Render("# Title\n\nSome *emphasis* and ![fig](api/images/arxiv_1_fig.png)")
	require.NoError(t, err)
	require.Contains(t, html, "<h1>Title</h1>")
	require.Contains(t, html, "<em>emphasis</em>")
	require.Contains(t, html, `<img src="api/images/arxiv_1_fig.png" alt="fig"`)
}

func TestRenderTables(t *testing.T) {
	html, err := Render("| a | b |\n|---|---|\n| 1 | 2 |")
	require.NoError(t, err)
	require.Contains(t, html, "<table>")
	require.Contains(t, html, "<td>1</td>")
}

func TestRenderEmpty(t *testing.T) {
	html, err := Render("   \n  ")
	require.NoError(t, err)
	require.Empty(t, html)
}
