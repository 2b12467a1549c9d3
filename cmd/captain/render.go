package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00D9FF")).
			Padding(0, 1)

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5FD068"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666680")).
			Italic(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5FD068")).
			Padding(0, 1)

	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00D9FF")).
			Padding(0, 2)
)

func newRenderer() *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return nil
	}
	return r
}

func renderMarkdown(r *glamour.TermRenderer, text string) string {
	if r == nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// answerPanel frames an answer with its title, tools and elapsed time.
func answerPanel(r *glamour.TermRenderer, title, text string, tools []string, elapsed time.Duration) string {
	footer := fmt.Sprintf("%.1fs", elapsed.Seconds())
	if len(tools) > 0 {
		footer = fmt.Sprintf("%s  tools: %s", footer, strings.Join(tools, ", "))
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		renderMarkdown(r, text),
		dimStyle.Render(footer),
	)
	return panelStyle.Render(body)
}

func banner() string {
	return bannerStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Knowledge Captain")+" - GraphRAG Agent",
		"",
		"Ask questions about the knowledge graph.",
		"The agent uses MCP to query GraphRAG (local/global search).",
		dimStyle.Render("Conversation history is maintained for follow-up questions."),
		"",
		"Commands:",
		"  clear - Clear conversation history",
		"  quit  - Exit the chat",
	))
}
