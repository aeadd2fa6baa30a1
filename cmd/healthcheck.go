package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/iksnae/chatsession/internal"
	"github.com/spf13/cobra"
)

var healthcheckDetails bool

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginTop(1)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Verify session storage is accessible and readable",
	Long: `Run diagnostic checks to verify that:
  • The data and config locations can be resolved
  • The session database can be opened
  • The stored session list can be decoded

Useful for troubleshooting a broken install or a damaged database.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHealthcheck(cmd.OutOrStdout())
	},
}

func runHealthcheck(out io.Writer) error {
	line := func(a ...interface{}) { _, _ = fmt.Fprintln(out, a...) }

	line(sectionStyle.Render("🔍 Chat Session Health Check"))
	line()

	// Step 1: Resolve paths
	line(infoStyle.Render("Step 1: Resolving data paths..."))
	paths, err := internal.DetectDataPaths()
	if err != nil {
		line(warningStyle.Render("⚠️  Failed to detect default paths:"), err)
	} else {
		line(successStyle.Render("✅ Data paths resolved"))
		if healthcheckDetails {
			line("   Data dir:  ", paths.DataDir)
			line("   Config:    ", paths.ConfigPath())
			if paths.UsesLegacyDir() {
				line("   Using legacy directory", paths.LegacyDir)
			}
		}
	}
	line("   Database:  ", settings.DatabasePath)
	line("   Key:       ", settings.StorageKey)
	line()

	// Step 2: Open the database
	line(infoStyle.Render("Step 2: Opening session database..."))
	slot, err := internal.OpenSQLiteSlot(settings.DatabasePath)
	if err != nil {
		line(errorStyle.Render("❌ Failed to open database:"), err)
		return fmt.Errorf("health check failed: %w", err)
	}
	defer func() {
		if err := slot.Close(); err != nil {
			internal.LogWarn("Failed to close database: %v", err)
		}
	}()
	line(successStyle.Render("✅ Database opened"))

	pairs, err := internal.QueryChatDiskKV(slot.DB(), "%")
	if err != nil {
		line(errorStyle.Render("❌ Failed to read key-value table:"), err)
		return fmt.Errorf("health check failed: %w", err)
	}
	if healthcheckDetails {
		line(fmt.Sprintf("   %d key(s) in chatDiskKV", len(pairs)))
		for _, pair := range pairs {
			line(fmt.Sprintf("   • %s (%s)", pair.Key, humanize.Bytes(uint64(len(pair.Value)))))
		}
	}
	line()

	// Step 3: Decode the session list
	line(infoStyle.Render("Step 3: Loading sessions..."))
	store := internal.NewSessionStore(slot, settings.StorageKey)
	if err := store.Load(); err != nil {
		line(errorStyle.Render("❌ Stored sessions could not be decoded:"), err)
		if errors.Is(err, internal.ErrStoreCorrupt) {
			line("   The next saved change will replace the damaged data.")
			line("   Export or back up the database first if you need to recover it.")
		}
		return fmt.Errorf("health check failed: %w", err)
	}

	stats, err := store.Stats()
	if err != nil {
		line(errorStyle.Render("❌ Failed to encode sessions:"), err)
		return fmt.Errorf("health check failed: %w", err)
	}

	if stats.Sessions == 0 {
		line(warningStyle.Render("⚠️  No sessions found"))
		line("   Start one with 'chatsession chat'")
	} else {
		line(successStyle.Render(fmt.Sprintf("✅ Found %d session(s)", stats.Sessions)))
	}
	line()

	// Summary
	line(sectionStyle.Render("📊 Summary"))
	line()
	line(successStyle.Render("✅ Health check passed!"))
	line(fmt.Sprintf("   • Sessions: %s", humanize.Comma(int64(stats.Sessions))))
	line(fmt.Sprintf("   • Messages: %s", humanize.Comma(int64(stats.Messages))))
	line(fmt.Sprintf("   • Words:    %s", humanize.Comma(int64(stats.Words))))
	line(fmt.Sprintf("   • Stored:   %s", humanize.Bytes(uint64(stats.BlobBytes))))
	return nil
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVar(&healthcheckDetails, "details", false, "Show detailed diagnostic information")
}
