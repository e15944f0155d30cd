package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apierrors "github.com/diogo/finassist/internal/errors"
	"github.com/diogo/finassist/internal/models"
	"github.com/diogo/finassist/internal/stream"
	"github.com/diogo/finassist/internal/tui"
)

// portfolioOptions are the profile flags of the portfolio command
type portfolioOptions struct {
	risk     string
	goals    []string
	timeline int
	output   string
	render   bool
	openTUI  bool
}

func newPortfolioCmd(deps *Dependencies) *cobra.Command {
	var opts portfolioOptions

	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Suggest a sample portfolio for a risk profile",
		Long: fmt.Sprintf(`Suggest a sample asset allocation with example Indian funds for a
risk tolerance, one or more financial goals and an investment timeline.

Goals: %s
Risk tolerance: %s

Example:
  finassist portfolio --risk Aggressive --goal Retirement --goal "Tax Saving" --timeline 15`,
			strings.Join(models.FinancialGoals(), ", "), riskNames()),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.openTUI {
				return runTUI(cmd, deps, tui.TabPortfolio)
			}
			return runPortfolio(cmd, deps, opts)
		},
	}

	cmd.Flags().StringVar(&opts.risk, "risk", string(models.DefaultRiskTolerance), "Risk tolerance: "+riskNames())
	cmd.Flags().StringArrayVarP(&opts.goals, "goal", "g", nil, "Financial goal (repeatable)")
	cmd.Flags().IntVarP(&opts.timeline, "timeline", "t", models.DefaultTimeline,
		fmt.Sprintf("Investment timeline in years (%d-%d)", models.MinTimeline, models.MaxTimeline))
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Save the suggestion to a file")
	cmd.Flags().BoolVarP(&opts.render, "render", "r", false, "Render the suggestion as markdown once it is complete")
	cmd.Flags().BoolVar(&opts.openTUI, "tui", false, "Open the portfolio tab of the interactive app")

	return cmd
}

func riskNames() string {
	names := make([]string, 0, 3)
	for _, r := range models.RiskTolerances() {
		names = append(names, string(r))
	}
	return strings.Join(names, ", ")
}

// runPortfolio validates the profile before anything touches the network
func runPortfolio(cmd *cobra.Command, deps *Dependencies, opts portfolioOptions) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	profile, err := models.NewPortfolioProfile(models.RiskTolerance(opts.risk), opts.goals, opts.timeline)
	if err != nil {
		fmt.Fprintln(errOut, formatErrorMessage(err, apierrors.MsgPortfolioFailed))
		return err
	}

	env, err := deps.loadEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	prompt, err := env.prompts.PortfolioPrompt(profile)
	if err != nil {
		return err
	}

	client, err := env.connect(cmd.Context(), deps)
	if err != nil {
		fmt.Fprintln(errOut, formatErrorMessage(err, apierrors.MsgSetupFailed))
		return err
	}

	env.logger.Debug("portfolio requested",
		zap.String("risk", string(profile.RiskTolerance)),
		zap.Strings("goals", profile.FinancialGoals),
		zap.Int("timeline", profile.Timeline))

	live := opts.output == "" && !opts.render

	var spin *spinner
	var onUpdate stream.UpdateFunc
	if live {
		printed := 0
		onUpdate = func(accumulated string) {
			fmt.Fprint(out, accumulated[printed:])
			printed = len(accumulated)
		}
	} else {
		spin = startSpinner(errOut, "Building your portfolio")
	}

	text, err := stream.Aggregate(client.StreamContent(cmd.Context(), env.prompts.SystemInstruction, prompt), onUpdate)
	if err != nil {
		spin.stopWithError()
		if live && text != "" {
			fmt.Fprintln(out)
		}
		env.logger.Error("portfolio suggestion failed", zap.Error(err))
		fmt.Fprintln(errOut, formatErrorMessage(err, apierrors.MsgPortfolioFailed))
		return err
	}
	spin.stopWithSuccess("Done")

	switch {
	case opts.output != "":
		if err := writeOutputFile(errOut, opts.output, text); err != nil {
			return err
		}
	case opts.render:
		label := fmt.Sprintf("✦ Sample portfolio · %s · %s · %d years",
			profile.RiskTolerance, profile.GoalsList(), profile.Timeline)
		printMarkdown(out, env.render, label, text)
	default:
		if !strings.HasSuffix(text, "\n") {
			fmt.Fprintln(out)
		}
	}

	copyToClipboard(errOut, env.cfg, text)
	return nil
}
