package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/iksnae/chatsession/internal"
	"github.com/spf13/cobra"
)

var (
	limit int
	since string
)

var (
	// Styles for show command
	sessionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	sessionMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				MarginBottom(1)

	userMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 1)

	assistantMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true).
				Padding(0, 1)

	errorMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196")).
				Bold(true).
				Padding(0, 1)

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2).
				MarginBottom(1)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show messages for a specific session",
	Long:  `Display the messages of a saved chat session.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		session, err := findSession(store, args[0])
		if err != nil {
			return err
		}

		messages := session.Messages
		if since != "" {
			sinceTime, err := time.Parse(time.RFC3339, since)
			if err != nil {
				return fmt.Errorf("invalid --since timestamp format (expected RFC3339): %w", err)
			}
			filtered := make([]internal.Message, 0, len(messages))
			for _, msg := range messages {
				if !msg.Timestamp.Before(sinceTime) {
					filtered = append(filtered, msg)
				}
			}
			messages = filtered
		}

		out := cmd.OutOrStdout()
		displaySessionHeader(out, session)

		total := len(messages)
		if limit > 0 && limit < total {
			messages = messages[total-limit:]
			_, _ = fmt.Fprintln(out, timestampStyle.Render(fmt.Sprintf("... (%d earlier message(s))", total-limit)))
			_, _ = fmt.Fprintln(out)
		}

		now := time.Now()
		for _, msg := range messages {
			displayMessage(out, msg, now)
		}
		return nil
	},
}

func displaySessionHeader(out io.Writer, session *internal.ChatSession) {
	_, _ = fmt.Fprintln(out, sessionHeaderStyle.Render(fmt.Sprintf("💬 %s", session.Title)))

	metaParts := []string{
		fmt.Sprintf("ID: %s", session.ID),
		fmt.Sprintf("Created: %s", humanize.Time(session.CreatedAt)),
		fmt.Sprintf("Messages: %d", len(session.Messages)),
		fmt.Sprintf("Words: %s", humanize.Comma(int64(session.WordCount))),
	}
	if session.ModelLabel != "" {
		metaParts = append(metaParts, fmt.Sprintf("Model: %s", session.ModelLabel))
	}
	if session.IsPinned {
		metaParts = append(metaParts, "📌 Pinned")
	}
	if len(session.Tags) > 0 {
		metaParts = append(metaParts, fmt.Sprintf("Tags: %s", strings.Join(session.Tags, ", ")))
	}
	_, _ = fmt.Fprintln(out, sessionMetaStyle.Render(strings.Join(metaParts, " • ")))

	if session.Summary != "" {
		_, _ = fmt.Fprintln(out, timestampStyle.Render(session.Summary))
	}
	_, _ = fmt.Fprintln(out)
}

func displayMessage(out io.Writer, msg internal.Message, now time.Time) {
	var style lipgloss.Style
	var label string

	switch {
	case msg.EffectiveKind() == internal.KindError:
		style = errorMessageStyle
		label = "⚠️  Aquilax"
	case msg.Sender == internal.SenderUser:
		style = userMessageStyle
		label = "👤 You"
	default:
		style = assistantMessageStyle
		label = "🤖 Aquilax"
	}

	header := style.Render(label)
	if !msg.Timestamp.IsZero() {
		header += " " + timestampStyle.Render(internal.FormatRelative(msg.Timestamp, now))
	}
	if msg.Metadata != nil && msg.Sender == internal.SenderAssistant && msg.Metadata.ProcessingTimeMs > 0 {
		header += " " + timestampStyle.Render(fmt.Sprintf("(%s, %.0f%% confidence)",
			time.Duration(msg.Metadata.ProcessingTimeMs)*time.Millisecond, msg.Metadata.Confidence*100))
	}

	_, _ = fmt.Fprintln(out, header)
	_, _ = fmt.Fprintln(out, messageContentStyle.Render(msg.Content))
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&limit, "limit", "n", 0, "Only show the last N messages")
	showCmd.Flags().StringVar(&since, "since", "", "Show messages since timestamp (RFC3339)")
}
