// Package api wraps the Gemini API behind the three calls finassist needs:
// a conversational stream, a single-shot grounded summary and a one-off
// content stream.
package api

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/diogo/finassist/internal/config"
	apierrors "github.com/diogo/finassist/internal/errors"
	"github.com/diogo/finassist/internal/logging"
	"github.com/diogo/finassist/internal/models"
)

// contentGenerator is the subset of *genai.Models the client calls
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

// Client is the Gemini model client. A Client only exists when a credential
// is configured; see NewClient.
type Client struct {
	gen     contentGenerator
	model   models.Model
	timeout time.Duration
	logger  *zap.Logger
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithModel sets the model used by every call
func WithModel(model models.Model) ClientOption {
	return func(c *Client) {
		if model.IsSpecified() {
			c.model = model
		}
	}
}

// WithTimeout bounds every outbound call. Zero disables the bound.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger for request tracing
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logging.OrNop(logger)
	}
}

// withGenerator replaces the genai transport (tests)
func withGenerator(gen contentGenerator) ClientOption {
	return func(c *Client) {
		c.gen = gen
	}
}

// NewClient creates a Client for apiKey. A blank key yields a
// *errors.NotConfiguredError and no network activity.
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, apierrors.NewNotConfiguredError(config.EnvAPIKey)
	}

	client := &Client{
		model:  models.DefaultModel,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.gen == nil {
		gc, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create GenAI client: %w", err)
		}
		client.gen = gc.Models
	}

	return client, nil
}

// NewClientFromConfig creates a Client from the loaded configuration
func NewClientFromConfig(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Client, error) {
	return NewClient(ctx, cfg.APIKey,
		WithModel(models.ModelFromName(cfg.DefaultModel)),
		WithTimeout(cfg.RequestTimeout()),
		WithLogger(logger),
	)
}

// ModelName returns the model name for display
func (c *Client) ModelName() string {
	return c.model.Name
}

// StartChat creates a new conversation handle that sends systemInstruction
// with every turn. Called on a nil Client it reports NotConfigured without
// touching the network.
func (c *Client) StartChat(systemInstruction string) (*ChatSession, error) {
	if c == nil || c.gen == nil {
		return nil, apierrors.NewNotConfiguredError(config.EnvAPIKey)
	}

	return &ChatSession{
		client:            c,
		systemInstruction: systemInstruction,
	}, nil
}

// StartConversation is StartChat behind ChatSessionInterface
func (c *Client) StartConversation(systemInstruction string) (ChatSessionInterface, error) {
	s, err := c.StartChat(systemInstruction)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// withTimeout derives the per-call context
func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// generateConfig builds the genai request config
func generateConfig(systemInstruction string, tools ...*genai.Tool) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if systemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
	}
	if len(tools) > 0 {
		cfg.Tools = tools
	}
	return cfg
}
