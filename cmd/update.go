package cmd

import (
	"fmt"

	"github.com/iksnae/chatsession/internal"
	"github.com/spf13/cobra"
)

var (
	updateTitle     string
	updatePin       bool
	updateUnpin     bool
	updateTags      []string
	updateClearTags bool
	updateSummary   string
	updateModel     string
)

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update <session-id>",
	Short: "Rename, pin, tag or summarize a session",
	Long: `Edit the metadata of a saved session.

Only the fields given as flags are changed. --tag replaces the tag list.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if updatePin && updateUnpin {
			return fmt.Errorf("--pin and --unpin are mutually exclusive")
		}

		flags := cmd.Flags()
		var patch internal.SessionPatch
		changed := false

		if flags.Changed("title") {
			patch.Title = internal.StringPtr(updateTitle)
			changed = true
		}
		if updatePin || updateUnpin {
			patch.IsPinned = internal.BoolPtr(updatePin)
			changed = true
		}
		if flags.Changed("tag") {
			patch.Tags = updateTags
			changed = true
		}
		if updateClearTags {
			patch.Tags = []string{}
			changed = true
		}
		if flags.Changed("summary") {
			patch.Summary = internal.StringPtr(updateSummary)
			changed = true
		}
		if flags.Changed("model") {
			patch.ModelLabel = internal.StringPtr(updateModel)
			changed = true
		}
		if !changed {
			return fmt.Errorf("nothing to update (see 'chatsession update --help')")
		}

		store, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		if _, err := findSession(store, args[0]); err != nil {
			return err
		}
		if err := warnIfNotSaved(store.Update(args[0], patch)); err != nil {
			return err
		}

		internal.PrintSuccess(fmt.Sprintf("Updated session %s", args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().StringVar(&updateTitle, "title", "", "New title")
	updateCmd.Flags().BoolVar(&updatePin, "pin", false, "Pin the session")
	updateCmd.Flags().BoolVar(&updateUnpin, "unpin", false, "Unpin the session")
	updateCmd.Flags().StringSliceVar(&updateTags, "tag", nil, "Set tags (repeatable or comma-separated)")
	updateCmd.Flags().BoolVar(&updateClearTags, "clear-tags", false, "Remove all tags")
	updateCmd.Flags().StringVar(&updateSummary, "summary", "", "Set the summary")
	updateCmd.Flags().StringVar(&updateModel, "model", "", "Set the model label")
}
