// Command finassist is a terminal financial assistant for beginner investors
// in India, backed by the Gemini API.
package main

import (
	"os"

	"github.com/diogo/finassist/internal/commands"
	"github.com/diogo/finassist/internal/config"
)

func main() {
	config.LoadEnv(os.Stderr)
	commands.Execute()
}
