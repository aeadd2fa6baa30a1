package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/iksnae/chatsession/internal"
	"github.com/spf13/cobra"
)

var (
	listPinnedOnly bool
	listTag        string
	listLimit      int
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions",
	Long:  `List all saved chat sessions, pinned sessions first, then most recently active.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		sessions := filterSessions(store.List(), listPinnedOnly, listTag)
		sortPinnedFirst(sessions)
		if listLimit > 0 && listLimit < len(sessions) {
			sessions = sessions[:listLimit]
		}

		displaySessions(cmd.OutOrStdout(), sessions)
		return nil
	},
}

func filterSessions(sessions []*internal.ChatSession, pinnedOnly bool, tag string) []*internal.ChatSession {
	if !pinnedOnly && tag == "" {
		return sessions
	}

	filtered := make([]*internal.ChatSession, 0, len(sessions))
	for _, session := range sessions {
		if pinnedOnly && !session.IsPinned {
			continue
		}
		if tag != "" && !hasTag(session, tag) {
			continue
		}
		filtered = append(filtered, session)
	}
	return filtered
}

func hasTag(session *internal.ChatSession, tag string) bool {
	for _, t := range session.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// sortPinnedFirst moves pinned sessions to the front, keeping recency order within each group
func sortPinnedFirst(sessions []*internal.ChatSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].IsPinned && !sessions[j].IsPinned
	})
}

func displaySessions(out io.Writer, sessions []*internal.ChatSession) {
	if len(sessions) == 0 {
		_, _ = fmt.Fprintln(out, headerStyle.Render("📋 No sessions found"))
		return
	}

	_, _ = fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📋 Found %d session(s)", len(sessions))))
	_, _ = fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)

	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Title")+"\t"+titleStyle.Render("Messages")+"\t"+titleStyle.Render("Words")+"\t"+titleStyle.Render("Updated")+"\t"+titleStyle.Render("Tags")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 100))

	for _, session := range sessions {
		title := session.Title
		if title == "" {
			title = internal.DefaultTitle
		}
		if len([]rune(title)) > 45 {
			title = string([]rune(title)[:42]) + "..."
		}
		if session.IsPinned {
			title = "📌 " + title
		}

		tags := dateStyle.Render("—")
		if len(session.Tags) > 0 {
			tags = tagStyle.Render(strings.Join(session.Tags, ", "))
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			idStyle.Render(session.ID),
			title,
			countStyle.Render(humanize.Comma(int64(len(session.Messages)))),
			humanize.Comma(int64(session.WordCount)),
			dateStyle.Render(humanize.Time(session.UpdatedAt)),
			tags,
		)
	}

	_ = w.Flush()
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, idStyle.Render(fmt.Sprintf("💡 Tip: Use `chatsession chat %s` to continue a conversation", sessions[0].ID)))
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listPinnedOnly, "pinned", false, "Only show pinned sessions")
	listCmd.Flags().StringVar(&listTag, "tag", "", "Only show sessions with this tag")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Limit number of sessions to show")
}
