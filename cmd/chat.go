package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/chatsession/internal"
	"github.com/spf13/cobra"
)

var (
	chatMessage string
	chatNew     bool
)

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

const chatHelp = `/regen    regenerate the last answer
/offline  stop sending messages
/online   resume sending messages
/history  show the whole conversation
/quit     leave the chat`

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat [session-id]",
	Short: "Talk to the assistant",
	Long: `Open an interactive conversation.

Without an ID the most recently active session is resumed (or a new one is
started when none exist). Use --new to always start fresh, or -m to send a
single message and exit.

` + chatHelp,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, cleanup, err := openEngine()
		if err != nil {
			return err
		}
		defer cleanup()

		var ctrl *internal.TurnController
		switch {
		case len(args) == 1:
			ctrl, err = engine.Open(args[0])
		case chatNew:
			ctrl, err = engine.NewSession()
		default:
			ctrl, err = engine.Resume()
		}
		if err := warnIfNotSaved(err); err != nil {
			return err
		}

		unsubscribe := ctrl.Subscribe(func(ev internal.Event) {
			if ev.Type == internal.EventStatus {
				internal.LogDebug("Session %s is %s", ev.SessionID, ev.Status)
			}
		})
		defer unsubscribe()

		out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

		if chatMessage != "" {
			return runTurn(out, errOut, ctrl, func() error { return ctrl.Submit(chatMessage) })
		}

		return chatLoop(cmd.InOrStdin(), out, errOut, ctrl)
	},
}

func chatLoop(in io.Reader, out, errOut io.Writer, ctrl *internal.TurnController) error {
	state := ctrl.Snapshot()
	_, _ = fmt.Fprintln(out, sessionHeaderStyle.Render(fmt.Sprintf("💬 Session %s", ctrl.SessionID())))
	_, _ = fmt.Fprintln(out, hintStyle.Render("Type /help for commands, /quit to leave"))
	_, _ = fmt.Fprintln(out)

	if n := len(state.Messages); n > 0 {
		displayMessage(out, state.Messages[n-1], time.Now())
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		_, _ = fmt.Fprint(out, promptStyle.Render("› "))
		if !scanner.Scan() {
			_, _ = fmt.Fprintln(out)
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/help":
			_, _ = fmt.Fprintln(out, hintStyle.Render(chatHelp))
		case "/regen":
			if err := runTurn(out, errOut, ctrl, ctrl.Regenerate); err != nil {
				return err
			}
		case "/offline":
			ctrl.SetOffline(true)
			internal.PrintInfo("Offline: messages will not be sent")
		case "/online":
			ctrl.SetOffline(false)
			internal.PrintInfo("Back online")
		case "/history":
			now := time.Now()
			for _, msg := range ctrl.Snapshot().Messages {
				displayMessage(out, msg, now)
			}
		default:
			text := line
			if err := runTurn(out, errOut, ctrl, func() error { return ctrl.Submit(text) }); err != nil {
				return err
			}
		}
	}

	return scanner.Err()
}

// runTurn starts a submit or regenerate, waits for it behind a spinner and prints the outcome
func runTurn(out, errOut io.Writer, ctrl *internal.TurnController, start func() error) error {
	before := ctrl.Snapshot().Messages
	var previousLastID string
	if n := len(before); n > 0 {
		previousLastID = before[n-1].ID
	}

	if err := start(); err != nil {
		switch {
		case errors.Is(err, internal.ErrEmptyInput):
			return nil
		case errors.Is(err, internal.ErrOffline),
			errors.Is(err, internal.ErrTurnInFlight),
			errors.Is(err, internal.ErrNothingToRegenerate):
			internal.PrintWarning(err.Error())
			return nil
		default:
			return err
		}
	}

	spinner := internal.StartSpinner(errOut, "Aquilax is thinking...")
	ctrl.Wait()
	spinner.Stop()

	state := ctrl.Snapshot()
	n := len(state.Messages)
	if n == 0 {
		return nil
	}

	last := state.Messages[n-1]
	if last.ID == previousLastID {
		internal.PrintWarning("Could not regenerate the answer; keeping the previous one")
		return nil
	}
	if last.Sender == internal.SenderAssistant {
		_, _ = fmt.Fprintln(out)
		displayMessage(out, last, time.Now())
	}
	return nil
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "Send a single message and exit")
	chatCmd.Flags().BoolVar(&chatNew, "new", false, "Start a new session instead of resuming")
}
