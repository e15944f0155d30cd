package commands

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/diogo/finassist/internal/api"
	"github.com/diogo/finassist/internal/config"
	apierrors "github.com/diogo/finassist/internal/errors"
)

func TestFormatErrorMessage_Nil(t *testing.T) {
	if got := formatErrorMessage(nil, "ctx"); got != "" {
		t.Fatalf("expected empty for nil error, got %s", got)
	}
}

func TestFormatErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
		excludes []string
	}{
		{
			name:     "not configured",
			err:      apierrors.NewNotConfiguredError(config.EnvAPIKey),
			contains: []string{apierrors.MsgSetupFailed, "Hint", config.EnvAPIKey},
		},
		{
			name:     "request failed",
			err:      apierrors.NewRequestFailedError(api.OpChatStream, errors.New("429 quota")),
			contains: []string{"fallback text", "Operation: " + api.OpChatStream, "Cause: 429 quota", "Hint"},
		},
		{
			name:     "request failed without cause",
			err:      apierrors.NewRequestFailedError(api.OpNewsSummary, nil),
			contains: []string{"fallback text", api.OpNewsSummary},
			excludes: []string{"Cause"},
		},
		{
			name:     "validation",
			err:      apierrors.NewValidationError("financial_goals", apierrors.MsgNoGoalSelected),
			contains: []string{apierrors.MsgNoGoalSelected},
			excludes: []string{"Detail", "Hint", "fallback text"},
		},
		{
			name:     "plain error",
			err:      errors.New("disk full"),
			contains: []string{"fallback text", "Detail: disk full"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := formatErrorMessage(tt.err, "fallback text")
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("expected %q in %q", want, out)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(out, unwanted) {
					t.Errorf("did not expect %q in %q", unwanted, out)
				}
			}
		})
	}
}

func TestBubbleWidths(t *testing.T) {
	tests := []struct {
		term        int
		wantBubble  int
		wantContent int
	}{
		{80, 76, 72},
		{20, 40, 36},
		{300, 120, 116},
	}

	for _, tt := range tests {
		bubble, content := bubbleWidths(tt.term)
		if bubble != tt.wantBubble || content != tt.wantContent {
			t.Errorf("bubbleWidths(%d) = %d, %d, want %d, %d", tt.term, bubble, content, tt.wantBubble, tt.wantContent)
		}
	}
}

func TestTerminalHelpers_NonTerminal(t *testing.T) {
	var buf bytes.Buffer
	if isTerminal(&buf) {
		t.Error("a buffer is not a terminal")
	}
	if got := terminalWidth(&buf); got != 80 {
		t.Errorf("terminalWidth() = %d, want 80", got)
	}
	if s := startSpinner(&buf, "Working"); s != nil {
		t.Error("no spinner should start on a non-terminal")
	}
}

func TestCopyToClipboard_Disabled(t *testing.T) {
	var buf bytes.Buffer
	copyToClipboard(&buf, config.DefaultConfig(), "text")
	if buf.Len() != 0 {
		t.Errorf("expected no output when copying is disabled, got %q", buf.String())
	}
}
