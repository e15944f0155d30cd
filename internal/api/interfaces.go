package api

import (
	"context"
	"iter"

	"github.com/diogo/finassist/internal/models"
)

// ChatSessionInterface is the conversation handle used by the chat surface
type ChatSessionInterface interface {
	SendMessageStream(ctx context.Context, prompt string) iter.Seq2[models.Fragment, error]
}

// ClientInterface defines the client operations used by the surfaces
type ClientInterface interface {
	StartConversation(systemInstruction string) (ChatSessionInterface, error)
	FetchGroundedSummary(ctx context.Context, query string) (*models.GroundedSummary, error)
	StreamContent(ctx context.Context, systemInstruction, prompt string) iter.Seq2[models.Fragment, error]
	ModelName() string
}

var (
	_ ClientInterface      = (*Client)(nil)
	_ ChatSessionInterface = (*ChatSession)(nil)
)
