package cmd

import (
	"fmt"
	"strings"

	"github.com/iksnae/chatsession/internal"
	"github.com/spf13/cobra"
)

// newCmd represents the new command
var newCmd = &cobra.Command{
	Use:   "new [title]",
	Short: "Start a new session",
	Long:  `Create a new session seeded with the assistant's greeting and print its ID.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		title := strings.TrimSpace(strings.Join(args, " "))
		session, err := store.Create(internal.NewChatID(), title)
		if err := warnIfNotSaved(err); err != nil {
			return err
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), session.ID)
		internal.LogInfo("Created session %q", session.Title)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
}
