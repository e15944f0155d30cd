package commands

import (
	"github.com/spf13/cobra"

	"github.com/diogo/finassist/internal/tui"
)

func newChatCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session with the assistant.

The chat keeps the conversation context across messages. Use Tab to switch
to the news and portfolio tabs, and Esc or Ctrl+C to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, deps, tui.TabChat)
		},
	}
}
