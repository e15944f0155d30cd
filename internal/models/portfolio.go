package models

import (
	"strings"

	apierrors "github.com/diogo/finassist/internal/errors"
)

// RiskTolerance is the investor's appetite for volatility
type RiskTolerance string

const (
	RiskConservative RiskTolerance = "Conservative"
	RiskModerate     RiskTolerance = "Moderate"
	RiskAggressive   RiskTolerance = "Aggressive"
)

// Timeline bounds in years
const (
	MinTimeline     = 1
	MaxTimeline     = 30
	DefaultTimeline = 10
)

// DefaultRiskTolerance is preselected by the portfolio form
const DefaultRiskTolerance = RiskModerate

// RiskTolerances returns the levels in display order
func RiskTolerances() []RiskTolerance {
	return []RiskTolerance{RiskConservative, RiskModerate, RiskAggressive}
}

// ParseRiskTolerance matches s case-insensitively against the known levels
func ParseRiskTolerance(s string) (RiskTolerance, bool) {
	for _, r := range RiskTolerances() {
		if strings.EqualFold(strings.TrimSpace(s), string(r)) {
			return r, true
		}
	}
	return "", false
}

// FinancialGoals returns the goal tags offered by the portfolio form
func FinancialGoals() []string {
	return []string{
		"Retirement",
		"Wealth Creation",
		"Tax Saving",
		"Buying a House",
		"Child's Education",
	}
}

// PortfolioProfile is the immutable input of one portfolio suggestion
type PortfolioProfile struct {
	RiskTolerance  RiskTolerance
	FinancialGoals []string
	Timeline       int
}

// NewPortfolioProfile validates the form state and builds a profile.
// Blank and repeated goals are dropped, first occurrence order kept.
func NewPortfolioProfile(risk RiskTolerance, goals []string, timeline int) (PortfolioProfile, error) {
	parsed, ok := ParseRiskTolerance(string(risk))
	if !ok {
		return PortfolioProfile{}, apierrors.NewValidationError("risk_tolerance",
			"Risk tolerance must be Conservative, Moderate or Aggressive.")
	}

	seen := make(map[string]struct{}, len(goals))
	cleaned := make([]string, 0, len(goals))
	for _, g := range goals {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		cleaned = append(cleaned, g)
	}
	if len(cleaned) == 0 {
		return PortfolioProfile{}, apierrors.NewValidationError("financial_goals", apierrors.MsgNoGoalSelected)
	}

	if timeline < MinTimeline || timeline > MaxTimeline {
		return PortfolioProfile{}, apierrors.NewValidationError("timeline",
			"Investment timeline must be between 1 and 30 years.")
	}

	return PortfolioProfile{
		RiskTolerance:  parsed,
		FinancialGoals: cleaned,
		Timeline:       timeline,
	}, nil
}

// GoalsList joins the goals for display and prompting
func (p PortfolioProfile) GoalsList() string {
	return strings.Join(p.FinancialGoals, ", ")
}
