package chat

import (
	"strings"

	"github.com/paperlab/core/internal/models"
)

// HistoryWindow is the number of most-recent turns sent to the completion
// service. Bounding the window keeps prompt size fixed regardless of
// session length.
const HistoryWindow = 10

const chatSystemPrompt = "You are an assistant that helps researchers read and discuss academic papers. " +
	"Answer concisely and ground every claim in the provided paper content when it is available."

// paperContextLimit caps how much paper text is inlined into a prompt.
const paperContextLimit = 8000

// buildChatPrompt renders the bounded history plus an optional
// paper-derived context block into a single prompt. History must already
// be in chronological order.
func buildChatPrompt(paperContext string, history []models.ChatMessageModel) (systemPrompt, prompt string) {
	var b strings.Builder

	if ctx := strings.TrimSpace(paperContext); ctx != "" {
		b.WriteString("Paper context:\n")
		b.WriteString(truncateText(ctx, paperContextLimit))
		b.WriteString("\n\n")
	}

	b.WriteString("Conversation so far:\n")
	for _, m := range history {
		switch m.Role {
		case models.RoleAssistant:
			b.WriteString("Assistant: ")
		default:
			b.WriteString("User: ")
		}
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	b.WriteString("\nReply to the user's last message.")

	return chatSystemPrompt, b.String()
}

// Analysis kinds map onto the derived-content columns of a paper.
const (
	KindAnalysis    = "analysis"
	KindReview      = "review"
	KindTranslation = "translation"
)

var analysisPrompts = map[string]string{
	KindAnalysis: "Analyze the following academic paper. Cover the research problem, " +
		"the key method, the main results, and limitations. Write in markdown.",
	KindReview: "Write a peer review of the following academic paper: summarize its " +
		"contributions, then list strengths, weaknesses, and questions for the authors. " +
		"Write in markdown.",
	KindTranslation: "Translate the following academic paper into Chinese. Preserve the " +
		"markdown structure, including headings, tables, and image references, exactly.",
}

// buildAnalysisPrompt renders a kind-specific prompt over a paper's
// extracted text. Returns ok=false for an unknown kind.
func buildAnalysisPrompt(kind, title, text string) (systemPrompt, prompt string, ok bool) {
	instruction, ok := analysisPrompts[kind]
	if !ok {
		return "", "", false
	}

	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString("\n\n")
	if title = strings.TrimSpace(title); title != "" {
		b.WriteString("Title: ")
		b.WriteString(title)
		b.WriteString("\n\n")
	}
	b.WriteString(truncateText(text, paperContextLimit*4))

	return chatSystemPrompt, b.String(), true
}

func truncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + "..."
}
