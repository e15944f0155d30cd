package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/diogo/finassist/internal/api"
	"github.com/diogo/finassist/internal/config"
	"github.com/diogo/finassist/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	Run(client api.ClientInterface, opts tui.Options) error
}

// ClientFactory builds the model client for a loaded configuration.
type ClientFactory func(ctx context.Context, cfg config.Config, logger *zap.Logger) (api.ClientInterface, error)

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// NewClient creates the Gemini model client.
	NewClient ClientFactory

	// TUI is the terminal user interface.
	TUI TUIInterface

	// Logger replaces the file logger built from the configuration.
	Logger *zap.Logger
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) Run(client api.ClientInterface, opts tui.Options) error {
	return tui.Run(client, opts)
}

// defaultClientFactory returns a nil interface on error, never a typed nil
// *api.Client, so callers can compare the result against nil.
func defaultClientFactory(ctx context.Context, cfg config.Config, logger *zap.Logger) (api.ClientInterface, error) {
	client, err := api.NewClientFromConfig(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		NewClient: defaultClientFactory,
		TUI:       &DefaultTUI{},
	}
}

// orDefault fills the unset fields of d with the production implementations
func (d *Dependencies) orDefault() *Dependencies {
	out := NewDependencies()
	if d == nil {
		return out
	}
	if d.NewClient != nil {
		out.NewClient = d.NewClient
	}
	if d.TUI != nil {
		out.TUI = d.TUI
	}
	out.Logger = d.Logger
	return out
}
