package cmd

import (
	"fmt"

	"github.com/iksnae/chatsession/internal"
	"github.com/spf13/cobra"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:     "delete <session-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a session",
	Long:    `Permanently remove a session from storage.`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, cleanup, err := openEngine()
		if err != nil {
			return err
		}
		defer cleanup()

		if _, err := findSession(engine.Store(), args[0]); err != nil {
			return err
		}
		if err := warnIfNotSaved(engine.DeleteSession(args[0])); err != nil {
			return err
		}

		internal.PrintSuccess(fmt.Sprintf("Deleted session %s", args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
