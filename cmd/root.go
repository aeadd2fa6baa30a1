package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/chatsession/internal"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	dbPath     string
	storageKey string
	ephemeral  bool
	noLatency  bool
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"

	// settings is the effective configuration after flags are applied
	settings *internal.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chatsession",
	Short: "Persistent multi-session chat with the Aquilax assistant",
	Long: `A CLI for holding conversations with the Aquilax assistant.

Every conversation is a session that is saved automatically and can be
listed, resumed, renamed, pinned, tagged, exported or deleted.

Features:
  • Resume any conversation exactly where you left it
  • Regenerate the last answer
  • Export in multiple formats (JSONL, Markdown, YAML, JSON)
  • Single-file SQLite storage

Quick Start:
  chatsession chat                       # Resume the latest conversation
  chatsession list                       # List all sessions
  chatsession show <session-id>          # View a specific session
  chatsession export --format md         # Export as Markdown`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadSettings()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadSettings() error {
	path := configPath
	if path == "" {
		path = internal.DefaultConfigPath()
	}

	cfg, err := internal.LoadConfig(path)
	if err != nil {
		return err
	}

	if dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	if storageKey != "" {
		cfg.StorageKey = storageKey
	}

	level, err := internal.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	internal.SetLogLevel(level)
	if verbose {
		internal.SetVerbose(true)
	}

	settings = cfg
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the session database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&storageKey, "key", "", "Storage key the sessions are persisted under (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep sessions in memory only")
	rootCmd.PersistentFlags().BoolVar(&noLatency, "no-latency", false, "Disable the simulated response delay")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
