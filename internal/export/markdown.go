package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iksnae/chatsession/internal"
)

// MarkdownExporter exports sessions in Markdown format
type MarkdownExporter struct{}

// Export exports a session to Markdown format
func (e *MarkdownExporter) Export(session *internal.ChatSession, w io.Writer) error {
	title := session.Title
	if title == "" {
		title = internal.DefaultTitle
	}
	_, _ = fmt.Fprintf(w, "# %s\n\n", escapeMarkdown(title))

	_, _ = fmt.Fprintf(w, "**Session:** %s  \n", session.ID)
	if session.ModelLabel != "" {
		_, _ = fmt.Fprintf(w, "**Model:** %s  \n", session.ModelLabel)
	}
	_, _ = fmt.Fprintf(w, "**Created:** %s  \n", session.CreatedAt.UTC().Format(time.RFC3339))
	_, _ = fmt.Fprintf(w, "**Updated:** %s  \n", session.UpdatedAt.UTC().Format(time.RFC3339))
	_, _ = fmt.Fprintf(w, "**Messages:** %d  \n", len(session.Messages))
	_, _ = fmt.Fprintf(w, "**Words:** %d\n\n", session.WordCount)

	if session.IsPinned {
		_, _ = fmt.Fprintf(w, "**Pinned:** yes\n\n")
	}
	if len(session.Tags) > 0 {
		_, _ = fmt.Fprintf(w, "**Tags:** %s\n\n", strings.Join(session.Tags, ", "))
	}
	if session.Summary != "" {
		_, _ = fmt.Fprintf(w, "> %s\n\n", escapeMarkdown(session.Summary))
	}

	_, _ = fmt.Fprintf(w, "---\n\n")
	_, _ = fmt.Fprintf(w, "## Messages\n\n")

	for i, msg := range session.Messages {
		timestamp := ""
		if !msg.Timestamp.IsZero() {
			timestamp = fmt.Sprintf(" (%s)", msg.Timestamp.UTC().Format(time.RFC3339))
		}

		label := string(msg.Sender)
		if msg.EffectiveKind() == internal.KindError {
			label += " (error)"
		}

		_, _ = fmt.Fprintf(w, "**%s:**%s\n\n%s\n\n", label, timestamp, escapeMarkdown(msg.Content))

		if i < len(session.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// escapeMarkdown escapes emphasis markers outside fenced code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	result := make([]string, 0, len(lines))
	inCodeBlock := false

	for _, line := range lines {
		switch {
		case strings.HasPrefix(strings.TrimSpace(line), "```"):
			inCodeBlock = !inCodeBlock
		case !inCodeBlock:
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
		}
		result = append(result, line)
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
