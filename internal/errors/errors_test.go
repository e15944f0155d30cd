package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestNotConfiguredError(t *testing.T) {
	err := NewNotConfiguredError("GEMINI_API_KEY")

	expected := "not configured: GEMINI_API_KEY is missing"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if !errors.Is(err, ErrNotConfigured) {
		t.Error("Expected error to match ErrNotConfigured")
	}
	if errors.Is(err, ErrRequestFailed) {
		t.Error("Expected error not to match ErrRequestFailed")
	}

	empty := &NotConfiguredError{}
	if empty.Error() != "not configured: API key is missing" {
		t.Errorf("Error() = %s", empty.Error())
	}
}

func TestRequestFailedError(t *testing.T) {
	cause := context.DeadlineExceeded
	err := NewRequestFailedError("chat.stream", cause)

	expected := "chat.stream: request failed: context deadline exceeded"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	if !errors.Is(err, ErrRequestFailed) {
		t.Error("Expected error to match ErrRequestFailed")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("Expected Unwrap to expose the cause")
	}

	wrapped := fmt.Errorf("news: %w", err)
	if !IsRequestFailed(wrapped) {
		t.Error("Expected wrapped error to be a request failure")
	}

	var rf *RequestFailedError
	if !errors.As(wrapped, &rf) || rf.Op != "chat.stream" {
		t.Errorf("errors.As() did not recover the op, got %+v", rf)
	}

	noCause := NewRequestFailedError("news.summary", nil)
	if noCause.Error() != "news.summary: request failed" {
		t.Errorf("Error() = %s", noCause.Error())
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("financial_goals", MsgNoGoalSelected)

	expected := "invalid financial_goals: " + MsgNoGoalSelected
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}
	if !IsValidation(err) {
		t.Error("Expected validation error")
	}
	if IsRequestFailed(err) {
		t.Error("Validation error must not be a request failure")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		fallback string
		want     string
	}{
		{
			name:     "nil error",
			err:      nil,
			fallback: MsgChatFailed,
			want:     "",
		},
		{
			name:     "request failure uses fallback",
			err:      NewRequestFailedError("chat.stream", errors.New("quota")),
			fallback: MsgNewsFailed,
			want:     MsgNewsFailed,
		},
		{
			name:     "validation shows its own message",
			err:      fmt.Errorf("form: %w", NewValidationError("financial_goals", MsgNoGoalSelected)),
			fallback: MsgPortfolioFailed,
			want:     MsgNoGoalSelected,
		},
		{
			name:     "not configured shows setup message",
			err:      NewNotConfiguredError(""),
			fallback: MsgChatFailed,
			want:     MsgSetupFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err, tt.fallback); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
