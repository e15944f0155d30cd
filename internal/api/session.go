package api

import (
	"context"
	"iter"
	"sync"

	"google.golang.org/genai"

	"github.com/diogo/finassist/internal/models"
)

// ChatSession maintains conversation context across turns
type ChatSession struct {
	client            *Client
	systemInstruction string

	mu      sync.RWMutex // Protects history
	history []*genai.Content
}

// SendMessageStream sends prompt with the prior turns and returns the reply
// as a single-pass fragment sequence. History is only extended when the
// stream finishes cleanly.
func (s *ChatSession) SendMessageStream(ctx context.Context, prompt string) iter.Seq2[models.Fragment, error] {
	user := genai.NewContentFromText(prompt, genai.RoleUser)

	s.mu.RLock()
	contents := make([]*genai.Content, 0, len(s.history)+1)
	contents = append(contents, s.history...)
	s.mu.RUnlock()
	contents = append(contents, user)

	cfg := generateConfig(s.systemInstruction)

	return s.client.streamContents(ctx, OpChatStream, contents, cfg, func(reply string) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.history = append(s.history, user, genai.NewContentFromText(reply, genai.RoleModel))
	})
}

// Turns returns the number of completed turns
func (s *ChatSession) Turns() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history) / 2
}
