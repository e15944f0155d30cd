package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diogo/finassist/internal/api"
	apierrors "github.com/diogo/finassist/internal/errors"
	"github.com/diogo/finassist/internal/models"
	"github.com/diogo/finassist/internal/sources"
	"github.com/diogo/finassist/internal/tui"
)

func newNewsCmd(deps *Dependencies) *cobra.Command {
	var (
		openTUI  bool
		renderMD bool
		query    string
	)

	cmd := &cobra.Command{
		Use:   "news",
		Short: "Summarise today's financial news with sources",
		Long: `Fetch an AI summary of today's top financial stories in India,
grounded with Google Search, followed by a numbered list of its sources.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if openTUI {
				return runTUI(cmd, deps, tui.TabNews)
			}
			return runNews(cmd, deps, query, renderMD)
		},
	}

	cmd.Flags().BoolVar(&openTUI, "tui", false, "Open the news tab of the interactive app")
	cmd.Flags().BoolVarP(&renderMD, "render", "r", false, "Render the summary as markdown")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Replace the default news query")

	return cmd
}

func runNews(cmd *cobra.Command, deps *Dependencies, query string, renderMD bool) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	env, err := deps.loadEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	if strings.TrimSpace(query) == "" {
		query = env.prompts.NewsQuery
	}

	client, err := env.connect(cmd.Context(), deps)
	if err != nil {
		fmt.Fprintln(errOut, formatErrorMessage(err, apierrors.MsgSetupFailed))
		return err
	}

	spin := startSpinner(errOut, "Fetching the latest market news")
	summary, err := client.FetchGroundedSummary(cmd.Context(), query)
	if err == nil && summary == nil {
		err = apierrors.NewRequestFailedError(api.OpNewsSummary, nil)
	}
	if err != nil {
		spin.stopWithError()
		env.logger.Error("news summary failed", zap.Error(err))
		fmt.Fprintln(errOut, formatErrorMessage(err, apierrors.MsgNewsFailed))
		return err
	}
	spin.stopWithSuccess("Done")

	cited := sources.Dedupe(summary.Sources)
	env.logger.Debug("news summary received",
		zap.Int("sources", len(summary.Sources)),
		zap.Int("unique_sources", len(cited)))

	if renderMD {
		printMarkdown(out, env.render, "✦ Market News", summary.Text)
	} else {
		fmt.Fprintln(out, strings.TrimRight(summary.Text, "\n"))
	}

	printSources(out, cited)
	copyToClipboard(errOut, env.cfg, summary.Text)
	return nil
}

// printSources writes the numbered source list
func printSources(w io.Writer, list []models.WebSource) {
	if len(list) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sources:")
	for i, s := range list {
		fmt.Fprintf(w, "  %d. %s\n     %s\n", i+1, s.Title, s.URI)
	}
}
