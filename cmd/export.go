package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/chatsession/internal"
	"github.com/iksnae/chatsession/internal/export"
	"github.com/spf13/cobra"
)

var (
	format     string
	outputDir  string
	sessionID  string
	pinnedOnly bool
	toStdout   bool
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export sessions to file",
	Long: `Export chat sessions to various formats (jsonl, md, yaml, json).

You can export all sessions, only pinned ones, or a specific session by ID.
Use 'chatsession list' to see available session IDs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		store, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		var sessions []*internal.ChatSession
		if sessionID != "" {
			session, err := findSession(store, sessionID)
			if err != nil {
				return err
			}
			sessions = []*internal.ChatSession{session}
		} else {
			sessions = filterSessions(store.List(), pinnedOnly, "")
		}

		if toStdout {
			for _, session := range sessions {
				if err := exporter.Export(session, cmd.OutOrStdout()); err != nil {
					return &internal.ExportError{Format: format, Path: "stdout", Err: err}
				}
			}
			return nil
		}

		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		exported := 0
		err = internal.ShowProgress(context.Background(), fmt.Sprintf("Exporting %d session(s) to %s", len(sessions), outputDir), func() error {
			for _, session := range sessions {
				path := filepath.Join(outputDir, export.FileName(session, exporter))
				if err := exportToFile(exporter, session, path); err != nil {
					internal.LogError("Failed to export session %s: %v", session.ID, err)
					continue
				}
				exported++
			}
			return nil
		})
		if err != nil {
			return err
		}

		if exported < len(sessions) {
			return fmt.Errorf("exported %d of %d session(s)", exported, len(sessions))
		}
		internal.PrintSuccess(fmt.Sprintf("Export complete: %d session(s) exported to %s", exported, outputDir))
		return nil
	},
}

func exportToFile(exporter export.Exporter, session *internal.ChatSession, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}

	if err := exporter.Export(session, file); err != nil {
		_ = file.Close()
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}

	if err := file.Close(); err != nil {
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
	exportCmd.Flags().StringVar(&sessionID, "session-id", "", "Export a specific session by ID")
	exportCmd.Flags().BoolVar(&pinnedOnly, "pinned", false, "Only export pinned sessions")
	exportCmd.Flags().BoolVar(&toStdout, "stdout", false, "Write to standard output instead of files")
}
