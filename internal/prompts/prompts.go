// Package prompts holds the system instruction and prompt templates sent to
// the model. They ship as an embedded YAML document.
package prompts

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/diogo/finassist/internal/models"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// Set is a complete prompt configuration
type Set struct {
	SystemInstruction string   `yaml:"system_instruction"`
	NewsQuery         string   `yaml:"news_query"`
	PortfolioTemplate string   `yaml:"portfolio_template"`
	StarterPrompts    []string `yaml:"starter_prompts"`

	portfolio *template.Template
}

var (
	defaultOnce sync.Once
	defaultSet  *Set
)

// Default returns the embedded prompt set. It panics if the embedded document
// is invalid, which the package tests guard against.
func Default() *Set {
	defaultOnce.Do(func() {
		s, err := Parse(defaultPrompts)
		if err != nil {
			panic(fmt.Sprintf("prompts: embedded prompts.yaml is invalid: %v", err))
		}
		defaultSet = s
	})
	return defaultSet
}

// Parse decodes and validates a YAML prompt set
func Parse(data []byte) (*Set, error) {
	var s Set
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse prompts: %w", err)
	}

	switch {
	case strings.TrimSpace(s.SystemInstruction) == "":
		return nil, fmt.Errorf("system_instruction is empty")
	case strings.TrimSpace(s.NewsQuery) == "":
		return nil, fmt.Errorf("news_query is empty")
	case strings.TrimSpace(s.PortfolioTemplate) == "":
		return nil, fmt.Errorf("portfolio_template is empty")
	}

	tmpl, err := template.New("portfolio").Option("missingkey=error").Parse(s.PortfolioTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse portfolio_template: %w", err)
	}
	s.portfolio = tmpl

	return &s, nil
}

// portfolioData is the template input for PortfolioPrompt
type portfolioData struct {
	RiskTolerance string
	Goals         string
	Timeline      int
}

// PortfolioPrompt renders the portfolio request for profile
func (s *Set) PortfolioPrompt(profile models.PortfolioProfile) (string, error) {
	var sb strings.Builder
	err := s.portfolio.Execute(&sb, portfolioData{
		RiskTolerance: string(profile.RiskTolerance),
		Goals:         profile.GoalsList(),
		Timeline:      profile.Timeline,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render portfolio prompt: %w", err)
	}
	return sb.String(), nil
}
