package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Keys returns the settable dotted keys in display order
func Keys() []string {
	return []string{
		"default_model",
		"request_timeout_seconds",
		"verbose",
		"copy_to_clipboard",
		"tui_theme",
		"markdown.style",
		"markdown.enable_emoji",
		"markdown.preserve_newlines",
		"markdown.table_wrap",
		"markdown.inline_table_links",
	}
}

// Lookup resolves a dotted key such as "markdown.style" against the JSON form
// of cfg.
func Lookup(cfg Config, key string) (string, bool) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", false
	}
	res := gjson.GetBytes(data, key)
	if !res.Exists() {
		return "", false
	}
	return res.String(), true
}

// Set assigns value to the dotted key, parsing it to the field's type
func Set(cfg *Config, key, value string) error {
	value = strings.TrimSpace(value)

	switch key {
	case "default_model":
		cfg.DefaultModel = value
	case "request_timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: expected an integer, got %q", key, value)
		}
		cfg.RequestTimeoutSeconds = n
	case "tui_theme":
		cfg.TUITheme = value
	case "markdown.style":
		cfg.Markdown.Style = value
	case "verbose", "copy_to_clipboard", "markdown.enable_emoji", "markdown.preserve_newlines",
		"markdown.table_wrap", "markdown.inline_table_links":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: expected true or false, got %q", key, value)
		}
		*boolField(cfg, key) = b
	default:
		return fmt.Errorf("unknown config key %q", key)
	}

	return cfg.Validate()
}

func boolField(cfg *Config, key string) *bool {
	switch key {
	case "verbose":
		return &cfg.Verbose
	case "copy_to_clipboard":
		return &cfg.CopyToClipboard
	case "markdown.enable_emoji":
		return &cfg.Markdown.EnableEmoji
	case "markdown.preserve_newlines":
		return &cfg.Markdown.PreserveNewLines
	case "markdown.table_wrap":
		return &cfg.Markdown.TableWrap
	default:
		return &cfg.Markdown.InlineTableLinks
	}
}
