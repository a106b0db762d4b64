package chat

import (
	"strings"
	"testing"

	"github.com/paperlab/core/internal/models"
	"github.com/stretchr/testify/require"
)

func TestBuildChatPrompt(t *testing.T) {
	history := []models.ChatMessageModel{
		{Role: models.RoleUser, Content: "what is this paper about?"},
		{Role: models.RoleAssistant, Content: "it introduces the Transformer."},
		{Role: models.RoleUser, Content: "how does it compare to RNNs?"},
	}

	system, prompt := buildChatPrompt("Attention Is All You Need\n\nWe propose...", history)

	require.Equal(t, chatSystemPrompt, system)
	require.Contains(t, prompt, "Paper context:")
	require.Contains(t, prompt, "User: what is this paper about?")
	require.Contains(t, prompt, "Assistant: it introduces the Transformer.")
	require.True(t, strings.Index(prompt, "what is this paper") < strings.Index(prompt, "how does it compare"))
}

func TestBuildChatPromptWithoutContext(t *testing.T) {
	_, prompt := buildChatPrompt("  ", []models.ChatMessageModel{
		{Role: models.RoleUser, Content: "hi"},
	})
	require.NotContains(t, prompt, "Paper context:")
	require.Contains(t, prompt, "User: hi")
}

func TestBuildChatPromptTruncatesLongContext(t *testing.T) {
	long := strings.Repeat("x", paperContextLimit+500)
	_, prompt := buildChatPrompt(long, nil)
	require.NotContains(t, prompt, strings.Repeat("x", paperContextLimit+1))
	require.Contains(t, prompt, "...")
}

func TestBuildAnalysisPromptKinds(t *testing.T) {
	for _, kind := range []string{KindAnalysis, KindReview, KindTranslation} {
		system, prompt, ok := buildAnalysisPrompt(kind, "Some Title", "body text")
		require.True(t, ok, "kind %q", kind)
		require.Equal(t, chatSystemPrompt, system)
		require.Contains(t, prompt, "Title: Some Title")
		require.Contains(t, prompt, "body text")
	}

	_, _, ok := buildAnalysisPrompt("haiku", "t", "x")
	require.False(t, ok)
}

func TestTruncateText(t *testing.T) {
	require.Equal(t, "short", truncateText("short", 10))
	require.Equal(t, "abcde...", truncateText("abcdefgh", 5))

	// Rune-safe on multibyte input.
	require.Equal(t, "日本...", truncateText("日本語テキスト", 2))
}
