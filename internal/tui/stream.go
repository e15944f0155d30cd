package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/finassist/internal/stream"
)

// streamTarget names the surface a stream belongs to
type streamTarget int

const (
	targetChat streamTarget = iota
	targetPortfolio
)

type (
	// streamUpdateMsg carries the accumulated text after one fragment
	streamUpdateMsg struct {
		target streamTarget
		text   string
	}
	// streamDoneMsg ends a stream; err is nil on a clean finish
	streamDoneMsg struct {
		target streamTarget
		text   string
		err    error
	}
)

// streamFunc produces a reply, reporting progress through onUpdate
type streamFunc func(ctx context.Context, onUpdate stream.UpdateFunc) (string, error)

// startStream runs fn on its own goroutine and returns the channel its
// messages arrive on plus the command that reads the first one. The channel
// is unbuffered, so the producer blocks until the UI takes each update, but
// fn keeps running between sends and may already be past the fragment an
// update carries. Views render the text of the update, not shared state.
// When ctx is cancelled the goroutine stops sending and exits once fn
// returns.
func startStream(ctx context.Context, target streamTarget, fn streamFunc) (<-chan tea.Msg, tea.Cmd) {
	ch := make(chan tea.Msg)

	go func() {
		defer close(ch)

		send := func(msg tea.Msg) bool {
			select {
			case ch <- msg:
				return true
			case <-ctx.Done():
				return false
			}
		}

		text, err := fn(ctx, func(acc string) {
			send(streamUpdateMsg{target: target, text: acc})
		})
		send(streamDoneMsg{target: target, text: text, err: err})
	}()

	return ch, waitForStream(ch)
}

// waitForStream reads the next message of a stream. A closed channel yields
// nil, which Bubble Tea ignores.
func waitForStream(ch <-chan tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}
