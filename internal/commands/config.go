package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/finassist/internal/config"
	"github.com/diogo/finassist/internal/models"
	"github.com/diogo/finassist/internal/render"
)

// NewConfigCmd creates a new config command
func NewConfigCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
		Long: fmt.Sprintf(`Show or change the settings stored in the finassist config file.

Keys:
  %s

The API key is never stored; set %s in your environment or a .env file.`,
			strings.Join(config.Keys(), "\n  "), config.EnvAPIKey),
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print every setting",
			Args:  cobra.NoArgs,
			RunE:  runConfigShow,
		},
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print one setting",
			Args:  cobra.ExactArgs(1),
			RunE:  runConfigGet,
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Change one setting",
			Args:  cobra.ExactArgs(2),
			RunE:  runConfigSet,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := config.GetConfigPath()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			},
		},
	)

	return cmd
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, key := range config.Keys() {
		value, _ := config.Lookup(cfg, key)
		fmt.Fprintf(out, "%-28s %s\n", key, value)
	}

	credential := "not set"
	if cfg.HasCredential() {
		credential = "set"
	}
	fmt.Fprintf(out, "%-28s %s\n", "api_key", credential)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	value, ok := config.Lookup(cfg, args[0])
	if !ok {
		return fmt.Errorf("unknown config key %q", args[0])
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], strings.TrimSpace(args[1])

	if err := validateSetting(key, value); err != nil {
		return err
	}

	// environment overrides must not leak into the file
	cfg, err := config.LoadConfigFile()
	if err != nil {
		return err
	}
	if err := config.Set(&cfg, key, value); err != nil {
		return err
	}
	if err := config.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintln(cmd.ErrOrStderr(), successStyle().Render(fmt.Sprintf("✓ %s = %s", key, value)))
	return nil
}

// validateSetting checks the values config cannot check itself
func validateSetting(key, value string) error {
	switch key {
	case "tui_theme":
		if _, ok := render.GetTUIThemeByName(value); !ok {
			return fmt.Errorf("unknown theme %q (available: %s)", value, strings.Join(render.TUIThemeNames(), ", "))
		}
	case "markdown.style":
		if render.IsBuiltinStyle(value) {
			return nil
		}
		if _, err := os.Stat(value); err != nil {
			return fmt.Errorf("unknown markdown style %q (built in: %s, or a path to a JSON style file)",
				value, strings.Join(render.MarkdownStyles(), ", "))
		}
	case "default_model":
		if !models.ModelFromName(value).IsSpecified() {
			names := make([]string, 0, len(models.AllModels()))
			for _, m := range models.AllModels() {
				names = append(names, m.Name)
			}
			return fmt.Errorf("unknown model %q (available: %s)", value, strings.Join(names, ", "))
		}
	}
	return nil
}
