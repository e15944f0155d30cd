package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variables read by finassist
const (
	EnvAPIKey       = "GEMINI_API_KEY"
	EnvAPIKeyLegacy = "API_KEY"
	EnvModel        = "FINASSIST_MODEL"
	EnvHome         = "FINASSIST_HOME"
)

// LoadEnv loads .env files from the working directory and the config
// directory. Variables already present in the environment win. A file that
// cannot be parsed is skipped with a warning on w.
func LoadEnv(w io.Writer) {
	files := []string{".env"}
	if dir, err := GetConfigDir(); err == nil {
		files = append(files, filepath.Join(dir, ".env"))
	}

	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		// godotenv.Load never overrides variables that are already set
		if err := godotenv.Load(f); err != nil {
			fmt.Fprintf(w, "Warning: failed to load %s: %v, skipping\n", f, err)
		}
	}
}

// applyEnvOverrides copies the credential and model override from the
// environment into the config.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv(EnvAPIKey); key != "" {
		c.APIKey = key
	} else if key := os.Getenv(EnvAPIKeyLegacy); key != "" {
		c.APIKey = key
	}

	if model := os.Getenv(EnvModel); model != "" {
		c.DefaultModel = model
	}
}
