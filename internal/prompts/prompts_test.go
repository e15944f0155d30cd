package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogo/finassist/internal/models"
)

func TestDefault(t *testing.T) {
	s := Default()
	require.NotNil(t, s)

	assert.Contains(t, s.SystemInstruction, "novice investors in India")
	assert.Contains(t, s.SystemInstruction, "This is not financial advice.")
	assert.Contains(t, s.NewsQuery, "top 3 financial news stories")
	assert.Len(t, s.StarterPrompts, 4)
	assert.Same(t, s, Default(), "Default() should parse once")
}

func TestPortfolioPrompt(t *testing.T) {
	profile := models.PortfolioProfile{
		RiskTolerance:  models.RiskAggressive,
		FinancialGoals: []string{"Retirement", "Tax Saving"},
		Timeline:       15,
	}

	got, err := Default().PortfolioPrompt(profile)
	require.NoError(t, err)

	assert.Contains(t, got, "- Risk Tolerance: Aggressive")
	assert.Contains(t, got, "- Financial Goals: Retirement, Tax Saving")
	assert.Contains(t, got, "- Investment Timeline: 15 years")
	assert.Contains(t, got, "## Asset Allocation")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"invalid yaml", "system_instruction: [unclosed"},
		{"missing system instruction", "news_query: q\nportfolio_template: t\n"},
		{"missing news query", "system_instruction: s\nportfolio_template: t\n"},
		{"missing template", "system_instruction: s\nnews_query: q\n"},
		{"broken template", "system_instruction: s\nnews_query: q\nportfolio_template: \"{{.Risk\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParse_UnknownTemplateField(t *testing.T) {
	s, err := Parse([]byte("system_instruction: s\nnews_query: q\nportfolio_template: \"{{.Nope}}\"\n"))
	require.NoError(t, err)

	_, err = s.PortfolioPrompt(models.PortfolioProfile{FinancialGoals: []string{"Retirement"}})
	assert.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "portfolio prompt"))
}
