// Package conversation holds the ordered chat log and enforces that at most
// one turn is in flight at a time.
package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/diogo/finassist/internal/api"
	apierrors "github.com/diogo/finassist/internal/errors"
	"github.com/diogo/finassist/internal/models"
	"github.com/diogo/finassist/internal/stream"
)

// FallbackReply replaces the model entry of a failed turn
const FallbackReply = apierrors.MsgChatFailed

var (
	// ErrTurnInFlight is returned when a new turn is submitted before the
	// previous one finished.
	ErrTurnInFlight = errors.New("a turn is already in flight")

	// ErrNotModelReply means the last entry is not an open model reply
	ErrNotModelReply = errors.New("last entry is not an open model reply")

	// ErrNoTurn means no turn is in flight
	ErrNoTurn = errors.New("no turn in flight")
)

// Log is an append-only conversation. Entries are never removed or
// reordered; only the content of the open model reply is rewritten.
type Log struct {
	turn *semaphore.Weighted

	mu        sync.RWMutex
	messages  []models.Message
	inFlight  bool
	replyOpen bool
}

// New returns an empty log
func New() *Log {
	return &Log{turn: semaphore.NewWeighted(1)}
}

// AppendUserMessage starts a turn with text. Blank text is ignored and
// reports false. While a turn is in flight it returns ErrTurnInFlight.
func (l *Log) AppendUserMessage(text string) (bool, error) {
	if strings.TrimSpace(text) == "" {
		return false, nil
	}
	if !l.turn.TryAcquire(1) {
		return false, ErrTurnInFlight
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, models.Message{Role: models.RoleUser, Content: text})
	l.inFlight = true
	return true, nil
}

// BeginModelReply appends the empty model entry of the in-flight turn
func (l *Log) BeginModelReply() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.inFlight {
		return ErrNoTurn
	}
	if l.replyOpen || len(l.messages) == 0 || l.messages[len(l.messages)-1].Role != models.RoleUser {
		return ErrNotModelReply
	}

	l.messages = append(l.messages, models.Message{Role: models.RoleModel})
	l.replyOpen = true
	return nil
}

// UpdateLastModelReply replaces the content of the open model reply
func (l *Log) UpdateLastModelReply(content string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.replyOpen {
		return ErrNotModelReply
	}
	l.messages[len(l.messages)-1].Content = content
	return nil
}

// MarkTurnFailed sets the model entry of the in-flight turn to fallback,
// appending one if the reply never began, and releases the turn.
func (l *Log) MarkTurnFailed(fallback string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.inFlight {
		return ErrNoTurn
	}
	if l.replyOpen {
		l.messages[len(l.messages)-1].Content = fallback
	} else {
		l.messages = append(l.messages, models.Message{Role: models.RoleModel, Content: fallback})
	}
	l.endTurnLocked()
	return nil
}

// CompleteTurn closes the open reply and releases the turn
func (l *Log) CompleteTurn() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.inFlight {
		return ErrNoTurn
	}
	l.endTurnLocked()
	return nil
}

func (l *Log) endTurnLocked() {
	l.replyOpen = false
	l.inFlight = false
	l.turn.Release(1)
}

// Submit runs one full turn: it appends prompt, streams the reply from
// session into the log and calls onChange with the accumulated reply after
// every fragment. On failure the reply becomes FallbackReply and the error is
// returned. The turn is always released before Submit returns. Blank prompts
// are a no-op.
func (l *Log) Submit(ctx context.Context, session api.ChatSessionInterface, prompt string, onChange stream.UpdateFunc) error {
	ok, err := l.AppendUserMessage(prompt)
	if err != nil || !ok {
		return err
	}
	return l.StreamReply(ctx, session, prompt, onChange)
}

// StreamReply runs the model half of a turn opened by AppendUserMessage.
// Callers that need the user entry visible before streaming starts append it
// themselves and hand the rest to StreamReply.
func (l *Log) StreamReply(ctx context.Context, session api.ChatSessionInterface, prompt string, onChange stream.UpdateFunc) error {
	if session == nil {
		_ = l.MarkTurnFailed(FallbackReply)
		return apierrors.NewNotConfiguredError("")
	}

	if err := l.BeginModelReply(); err != nil {
		_ = l.MarkTurnFailed(FallbackReply)
		return err
	}

	_, err := stream.Aggregate(session.SendMessageStream(ctx, prompt), func(acc string) {
		_ = l.UpdateLastModelReply(acc)
		onChange.OnUpdate(acc)
	})
	if err != nil {
		_ = l.MarkTurnFailed(FallbackReply)
		return err
	}

	return l.CompleteTurn()
}

// Messages returns a copy of the log
func (l *Log) Messages() []models.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// InFlight reports whether a turn is in progress
func (l *Log) InFlight() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.inFlight
}

// Len returns the number of entries
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}
