package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diogo/finassist/internal/conversation"
	apierrors "github.com/diogo/finassist/internal/errors"
	"github.com/diogo/finassist/internal/stream"
)

// askOptions are the output flags shared by the root command and ask
type askOptions struct {
	file   string
	output string
	render bool
}

func addAskFlags(cmd *cobra.Command, opts *askOptions) {
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read the question from a file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Save the answer to a file")
	cmd.Flags().BoolVarP(&opts.render, "render", "r", false, "Render the answer as markdown once it is complete")
}

func newAskCmd(deps *Dependencies) *cobra.Command {
	var opts askOptions

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question and stream the answer",
		Long: `Ask the assistant one question. The answer streams to stdout as it
arrives. With --render it is shown as formatted markdown once complete, and
with --output it is saved to a file instead.

The question comes from the arguments, a file (-f) or piped stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(cmd, args, opts.file)
			if err != nil {
				return err
			}
			return runAsk(cmd, deps, prompt, opts)
		},
	}
	addAskFlags(cmd, &opts)

	return cmd
}

// runAsk sends prompt as the single turn of a fresh conversation
func runAsk(cmd *cobra.Command, deps *Dependencies, prompt string, opts askOptions) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		err := apierrors.NewValidationError("", "Please enter a question.")
		fmt.Fprintln(errOut, formatErrorMessage(err, apierrors.MsgChatFailed))
		return err
	}

	env, err := deps.loadEnvironment(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	ctx := cmd.Context()
	client, err := env.connect(ctx, deps)
	if err != nil {
		fmt.Fprintln(errOut, formatErrorMessage(err, apierrors.MsgSetupFailed))
		return err
	}

	session, err := client.StartConversation(env.prompts.SystemInstruction)
	if err != nil {
		fmt.Fprintln(errOut, formatErrorMessage(err, apierrors.MsgSetupFailed))
		return err
	}

	live := opts.output == "" && !opts.render

	var spin *spinner
	var onChange stream.UpdateFunc
	if live {
		printed := 0
		onChange = func(accumulated string) {
			fmt.Fprint(out, accumulated[printed:])
			printed = len(accumulated)
		}
	} else {
		spin = startSpinner(errOut, "Generating response")
	}

	log := conversation.New()
	startTime := time.Now()
	err = log.Submit(ctx, session, prompt, onChange)
	requestDuration := time.Since(startTime)

	if err != nil {
		spin.stopWithError()
		if live {
			fmt.Fprintln(out)
		}
		env.logger.Error("ask failed", zap.Error(err), zap.Duration("elapsed", requestDuration))
		fmt.Fprintln(errOut, formatErrorMessage(err, apierrors.MsgChatFailed))
		return err
	}
	spin.stopWithSuccess("Done")

	messages := log.Messages()
	text := messages[len(messages)-1].Content

	if env.cfg.Verbose {
		fmt.Fprintf(errOut, "[verbose] Model: %s\n", client.ModelName())
		fmt.Fprintf(errOut, "[verbose] Request took %s\n", requestDuration.Round(time.Millisecond))
	}

	switch {
	case opts.output != "":
		if err := writeOutputFile(errOut, opts.output, text); err != nil {
			return err
		}
	case opts.render:
		printMarkdown(out, env.render, "✦ FinAssist", text)
	default:
		if !strings.HasSuffix(text, "\n") {
			fmt.Fprintln(out)
		}
	}

	copyToClipboard(errOut, env.cfg, text)
	return nil
}
