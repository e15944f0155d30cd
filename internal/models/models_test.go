package models

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	apierrors "github.com/diogo/finassist/internal/errors"
)

func TestModelFromName(t *testing.T) {
	tests := []struct {
		name     string
		expected Model
	}{
		{"gemini-2.5-flash", Model25Flash},
		{"flash", Model25Flash},
		{"fast", Model25Flash},
		{"gemini-2.5-pro", Model25Pro},
		{"pro", Model25Pro},
		{"invalid-model", ModelUnspecified},
		{"", ModelUnspecified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ModelFromName(tt.name); got != tt.expected {
				t.Errorf("ModelFromName(%q) = %v, want %v", tt.name, got.Name, tt.expected.Name)
			}
		})
	}
}

func TestAllModelsAreSpecified(t *testing.T) {
	for _, m := range AllModels() {
		if !m.IsSpecified() {
			t.Errorf("model %q should be specified", m.Name)
		}
	}
	if ModelUnspecified.IsSpecified() {
		t.Error("ModelUnspecified must not be specified")
	}
	if DefaultModel != Model25Flash {
		t.Errorf("DefaultModel = %s, want %s", DefaultModel.Name, Model25Flash.Name)
	}
}

func TestMessageIsModel(t *testing.T) {
	if !(Message{Role: RoleModel, Content: "summary"}).IsModel() {
		t.Error("IsModel() = false for a model message")
	}
	if (Message{Role: RoleUser, Content: "hi"}).IsModel() {
		t.Error("IsModel() = true for a user message")
	}
}

func TestParseRiskTolerance(t *testing.T) {
	tests := []struct {
		in     string
		want   RiskTolerance
		wantOK bool
	}{
		{"Conservative", RiskConservative, true},
		{"moderate", RiskModerate, true},
		{" AGGRESSIVE ", RiskAggressive, true},
		{"yolo", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseRiskTolerance(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseRiskTolerance(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNewPortfolioProfile(t *testing.T) {
	tests := []struct {
		name      string
		risk      RiskTolerance
		goals     []string
		timeline  int
		wantErr   bool
		wantField string
		wantGoals []string
	}{
		{
			name:      "valid aggressive retirement",
			risk:      RiskAggressive,
			goals:     []string{"Retirement"},
			timeline:  15,
			wantGoals: []string{"Retirement"},
		},
		{
			name:      "duplicates and blanks dropped",
			risk:      RiskModerate,
			goals:     []string{"Tax Saving", " ", "Retirement", "Tax Saving"},
			timeline:  1,
			wantGoals: []string{"Tax Saving", "Retirement"},
		},
		{
			name:      "no goal selected",
			risk:      RiskModerate,
			goals:     nil,
			timeline:  10,
			wantErr:   true,
			wantField: "financial_goals",
		},
		{
			name:      "unknown risk",
			risk:      RiskTolerance("Reckless"),
			goals:     []string{"Retirement"},
			timeline:  10,
			wantErr:   true,
			wantField: "risk_tolerance",
		},
		{
			name:      "timeline too short",
			risk:      RiskConservative,
			goals:     []string{"Retirement"},
			timeline:  0,
			wantErr:   true,
			wantField: "timeline",
		},
		{
			name:      "timeline too long",
			risk:      RiskConservative,
			goals:     []string{"Retirement"},
			timeline:  31,
			wantErr:   true,
			wantField: "timeline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPortfolioProfile(tt.risk, tt.goals, tt.timeline)
			if tt.wantErr {
				if !apierrors.IsValidation(err) {
					t.Fatalf("expected validation error, got %v", err)
				}
				ve := err.(*apierrors.ValidationError)
				if ve.Field != tt.wantField {
					t.Errorf("Field = %q, want %q", ve.Field, tt.wantField)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.wantGoals, p.FinancialGoals); diff != "" {
				t.Errorf("goals mismatch (-want +got):\n%s", diff)
			}
			if p.Timeline != tt.timeline || p.RiskTolerance != tt.risk {
				t.Errorf("profile = %+v", p)
			}
		})
	}
}

func TestGoalsList(t *testing.T) {
	p := PortfolioProfile{FinancialGoals: []string{"Retirement", "Tax Saving"}}
	if got := p.GoalsList(); got != "Retirement, Tax Saving" {
		t.Errorf("GoalsList() = %q", got)
	}
}

func TestGroundedSummaryHasSources(t *testing.T) {
	var nilSummary *GroundedSummary
	if nilSummary.HasSources() {
		t.Error("nil summary has no sources")
	}
	g := &GroundedSummary{Text: "x", Sources: []WebSource{{URI: "u", Title: "t"}}}
	if !g.HasSources() {
		t.Error("expected sources")
	}
}
