// Package commands provides CLI commands for finassist.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diogo/finassist/internal/api"
	"github.com/diogo/finassist/internal/config"
	apierrors "github.com/diogo/finassist/internal/errors"
	"github.com/diogo/finassist/internal/logging"
	"github.com/diogo/finassist/internal/prompts"
	"github.com/diogo/finassist/internal/render"
	"github.com/diogo/finassist/internal/tui"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// NewRootCmd creates the finassist command tree
func NewRootCmd(deps *Dependencies) *cobra.Command {
	deps = deps.orDefault()
	var opts askOptions

	cmd := &cobra.Command{
		Use:   "finassist [question]",
		Short: "AI financial assistant for investing in India",
		Long: `finassist is a terminal assistant for beginner investors in India. It
answers questions about mutual funds, stocks and ETFs, summarises the day's
financial news with sources, and suggests sample portfolios.

It needs a Gemini API key in GEMINI_API_KEY (a .env file works too).

Examples:
  finassist                             Open the assistant
  finassist "What is a SIP?"            Ask a single question
  cat question.md | finassist           Read the question from stdin
  finassist news                        Today's market news with sources
  finassist portfolio --risk Aggressive --goal Retirement --timeline 15
  finassist config set tui_theme nord   Change a setting`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(cmd.OutOrStdout(), "finassist %s (built %s)\n", Version, BuildTime)
				return nil
			}

			prompt, err := readPrompt(cmd, args, opts.file)
			if err != nil {
				return err
			}
			if strings.TrimSpace(prompt) != "" {
				return runAsk(cmd, deps, prompt, opts)
			}

			return runTUI(cmd, deps, tui.TabChat)
		},
	}

	cmd.PersistentFlags().StringP("model", "m", "", "Model to use (e.g., gemini-2.5-pro)")
	cmd.PersistentFlags().Bool("verbose", false, "Write debug logs to the log file")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")
	addAskFlags(cmd, &opts)

	cmd.AddCommand(
		newChatCmd(deps),
		newAskCmd(deps),
		newNewsCmd(deps),
		newPortfolioCmd(deps),
		NewConfigCmd(deps),
	)

	return cmd
}

// rootCmd represents the base command
var rootCmd = NewRootCmd(NewDependencies())

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !apierrors.IsNotConfigured(err) && !apierrors.IsRequestFailed(err) && !apierrors.IsValidation(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}

// readPrompt returns the question from a file, the arguments or piped stdin,
// in that order. An interactive stdin yields an empty prompt.
func readPrompt(cmd *cobra.Command, args []string, file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), nil
	}

	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
			return "", nil
		}
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// environment is the per-invocation state shared by the subcommands
type environment struct {
	cfg     config.Config
	logger  *zap.Logger
	prompts *prompts.Set
	render  render.Options
	ownLog  bool
}

// loadEnvironment reads the configuration, applies the persistent flags,
// and builds the logger. A broken config file is reported and the defaults
// are used.
func (d *Dependencies) loadEnvironment(cmd *cobra.Command) (*environment, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v, using defaults\n", err)
	}

	if m, _ := cmd.Flags().GetString("model"); m != "" {
		cfg.DefaultModel = m
	}
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	env := &environment{
		cfg:     cfg,
		logger:  d.Logger,
		prompts: prompts.Default(),
		render:  render.LoadOptions(cfg),
	}

	if env.logger == nil {
		env.logger = zap.NewNop()
		if path, err := config.GetLogPath(); err == nil {
			if l, err := logging.New(logging.Options{Verbose: cfg.Verbose, Path: path}); err == nil {
				env.logger = l
				env.ownLog = true
			}
		}
	}

	if cfg.TUITheme != "" && render.SetTUITheme(cfg.TUITheme) {
		tui.UpdateTheme()
	}

	env.logger.Debug("command started",
		zap.String("command", cmd.CommandPath()),
		zap.String("model", cfg.DefaultModel),
		zap.Bool("credential", cfg.HasCredential()))

	return env, nil
}

// close flushes the logger
func (e *environment) close() {
	if e.ownLog {
		_ = e.logger.Sync()
	}
}

// connect builds the model client for the environment
func (e *environment) connect(ctx context.Context, d *Dependencies) (api.ClientInterface, error) {
	client, err := d.NewClient(ctx, e.cfg, e.logger)
	if err != nil {
		e.logger.Error("client setup failed", zap.Error(err))
		return nil, err
	}
	return client, nil
}

// runTUI opens the interactive app on tab. A missing credential is not an
// error here: the app shows its setup banner instead.
func runTUI(cmd *cobra.Command, deps *Dependencies, tab tui.Tab) error {
	env, err := deps.loadEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	client, err := env.connect(cmd.Context(), deps)
	if err != nil && !apierrors.IsNotConfigured(err) {
		return err
	}

	return deps.TUI.Run(client, tui.Options{
		Tab:     tab,
		Prompts: env.prompts,
		Render:  env.render,
		Theme:   env.cfg.TUITheme,
		Logger:  env.logger,
	})
}
