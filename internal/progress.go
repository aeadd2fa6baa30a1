package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a status line on a terminal while the assistant is thinking.
// On a non-terminal writer it prints the message once and stays silent.
type Spinner struct {
	w       io.Writer
	message string
	tty     bool

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// StartSpinner begins animating message on w
func StartSpinner(w io.Writer, message string) *Spinner {
	s := &Spinner{
		w:       w,
		message: message,
		tty:     isTerminal(w),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	if !s.tty {
		_, _ = fmt.Fprintln(w, message)
		close(s.done)
		return s
	}

	go s.run()
	return s
}

func (s *Spinner) run() {
	defer close(s.done)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; ; i++ {
		_, _ = fmt.Fprintf(s.w, "\r%s %s", progressStyle.Render(spinnerFrames[i%len(spinnerFrames)]), s.message)
		select {
		case <-s.stop:
			_, _ = fmt.Fprint(s.w, "\r\033[K")
			return
		case <-ticker.C:
		}
	}
}

// Stop halts the animation and clears the line. It is safe to call more than once.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

// ShowProgress runs fn behind a spinner and reports success or failure on stderr
func ShowProgress(ctx context.Context, message string, fn func() error) error {
	if !isTerminal(os.Stderr) {
		LogInfo(message)
		return fn()
	}

	spinner := StartSpinner(os.Stderr, message)
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		spinner.Stop()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("✗"), message)
			return err
		}
		fmt.Fprintf(os.Stderr, "%s %s\n", successStyle.Render("✓"), message)
		return nil
	case <-ctx.Done():
		spinner.Stop()
		return ctx.Err()
	}
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	if isTerminal(os.Stdout) {
		fmt.Printf("%s %s\n", successStyle.Render("✓"), message)
	} else {
		fmt.Println(message)
	}
}

// PrintError prints an error message
func PrintError(message string) {
	if isTerminal(os.Stderr) {
		fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("✗"), message)
	} else {
		fmt.Fprintf(os.Stderr, "%s\n", message)
	}
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	if isTerminal(os.Stdout) {
		fmt.Printf("%s %s\n", progressStyle.Render("ℹ"), message)
	} else {
		fmt.Println(message)
	}
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	if isTerminal(os.Stderr) {
		fmt.Fprintf(os.Stderr, "%s %s\n", warningStyle.Render("⚠"), message)
	} else {
		fmt.Fprintf(os.Stderr, "WARNING: %s\n", message)
	}
}
