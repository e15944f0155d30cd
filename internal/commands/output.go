package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/diogo/finassist/internal/config"
	apierrors "github.com/diogo/finassist/internal/errors"
	"github.com/diogo/finassist/internal/render"
)

// palette returns the spinner colours for the active theme
func palette() []lipgloss.Color {
	t := render.GetTUITheme()
	return []lipgloss.Color{t.Primary, t.Accent, t.Secondary, t.Warning, t.Primary, t.Accent}
}

func successStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(render.GetTUITheme().Secondary)
}

func warningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(render.GetTUITheme().Warning)
}

func dimStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(render.GetTUITheme().TextDim)
}

func assistantLabelStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(render.GetTUITheme().Primary).Bold(true)
}

func assistantBubbleStyle() lipgloss.Style {
	t := render.GetTUITheme()
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Foreground(t.Text).
		Padding(0, 1).
		MarginTop(1).
		MarginBottom(1)
}

// spinner handles the animated loading indicator
type spinner struct {
	w       io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool
}

// newSpinner creates a new animated spinner drawing to w
func newSpinner(w io.Writer, message string) *spinner {
	return &spinner{
		w:       w,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// startSpinner starts a spinner on w when w is a terminal. It returns nil
// otherwise; every spinner method accepts a nil receiver.
func startSpinner(w io.Writer, message string) *spinner {
	if !isTerminal(w) {
		return nil
	}
	s := newSpinner(w, message)
	s.start()
	return s
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// hide cursor
		fmt.Fprint(s.w, "\033[?25l")

		for {
			select {
			case <-s.stop:
				fmt.Fprint(s.w, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	colors := palette()

	spinColor := colors[s.frame%len(colors)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[s.frame%len(chars)])

	var dots strings.Builder
	numDots := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dots.WriteString(lipgloss.NewStyle().Foreground(colors[(s.frame+i)%len(colors)]).Render("●"))
		} else {
			dots.WriteString(dimStyle().Render("○"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(render.GetTUITheme().Text).Render(s.message)
	fmt.Fprintf(s.w, "\r\033[K%s %s %s", spinnerChar, msg, dots.String())
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows success message
func (s *spinner) stopWithSuccess(message string) {
	if s == nil {
		return
	}
	s.stopOnce()
	<-s.done

	check := successStyle().Bold(true).Render("✓")
	fmt.Fprintf(s.w, "%s %s\n", check, successStyle().Render(message))
}

// stopWithError stops the spinner and shows error
func (s *spinner) stopWithError() {
	if s == nil {
		return
	}
	s.stopOnce()
	<-s.done
}

// fileDescriptor is satisfied by *os.File
type fileDescriptor interface {
	Fd() uintptr
}

// isTerminal reports whether w is an interactive terminal
func isTerminal(w any) bool {
	f, ok := w.(fileDescriptor)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalWidth returns the width of w, or 80 when w is not a terminal
func terminalWidth(w io.Writer) int {
	f, ok := w.(fileDescriptor)
	if !ok {
		return 80
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// bubbleWidths clamps the answer bubble to the terminal
func bubbleWidths(termWidth int) (bubble, content int) {
	bubble = min(max(termWidth-4, 40), 120)
	return bubble, bubble - 4
}

// formatErrorMessage renders the user-facing message for err, falling back
// to fallback for request failures, followed by the structured detail.
func formatErrorMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(render.GetTUITheme().Error)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render("✗ " + apierrors.UserMessage(err, fallback)))

	var rf *apierrors.RequestFailedError
	switch {
	case apierrors.IsNotConfigured(err):
		sb.WriteString(dimStyle().Render(fmt.Sprintf("\n  Hint: Set %s in your environment or a .env file", config.EnvAPIKey)))
	case errors.As(err, &rf):
		sb.WriteString(dimStyle().Render(fmt.Sprintf("\n  Operation: %s", rf.Op)))
		if rf.Err != nil {
			sb.WriteString(dimStyle().Render(fmt.Sprintf("\n  Cause: %v", rf.Err)))
		}
		sb.WriteString(dimStyle().Render("\n  Hint: Check your connection and API quota, then try again"))
	case !apierrors.IsValidation(err):
		sb.WriteString(dimStyle().Render(fmt.Sprintf("\n  Detail: %v", err)))
	}

	return sb.String()
}

// writeOutputFile saves text to path and reports it on w
func writeOutputFile(w io.Writer, path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintln(w, successStyle().Render(fmt.Sprintf("✓ Response saved to %s", path)))
	return nil
}

// copyToClipboard copies text when the configuration asks for it.
// Failure is reported on w and never fails the command.
func copyToClipboard(w io.Writer, cfg config.Config, text string) {
	if !cfg.CopyToClipboard || text == "" {
		return
	}
	if err := clipboard.WriteAll(text); err != nil {
		fmt.Fprintln(w, warningStyle().Render(fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err)))
		return
	}
	fmt.Fprintln(w, successStyle().Render("✓ Copied to clipboard"))
}

// printMarkdown renders text inside the assistant bubble sized to out
func printMarkdown(out io.Writer, opts render.Options, label, text string) {
	bubble, content := bubbleWidths(terminalWidth(out))
	rendered := strings.TrimRight(render.MarkdownOrPlain(text, opts.WithWidth(content)), "\n")

	fmt.Fprintln(out, assistantLabelStyle().Render(label))
	fmt.Fprintln(out, assistantBubbleStyle().Width(bubble).Render(rendered))
}
