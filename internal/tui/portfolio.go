package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/diogo/finassist/internal/api"
	apierrors "github.com/diogo/finassist/internal/errors"
	"github.com/diogo/finassist/internal/models"
	"github.com/diogo/finassist/internal/prompts"
	"github.com/diogo/finassist/internal/render"
	"github.com/diogo/finassist/internal/stream"
)

// portfolioState is the page shown by the portfolio tab
type portfolioState int

const (
	portfolioForm portfolioState = iota
	portfolioStreaming
	portfolioResult
	portfolioFailed
)

// portfolioModel is the portfolio builder tab
type portfolioModel struct {
	client     api.ClientInterface
	prompts    *prompts.Set
	renderOpts render.Options
	logger     *zap.Logger

	// form
	risks    []models.RiskTolerance
	riskIdx  int
	goals    []string
	selected []bool
	cursor   int
	timeline int
	invalid  string

	state      portfolioState
	profile    models.PortfolioProfile
	suggestion string
	stream     <-chan tea.Msg
	err        error

	viewport viewport.Model
	spinner  spinner.Model

	width  int
	height int
}

func newPortfolioModel(client api.ClientInterface, set *prompts.Set, opts render.Options, logger *zap.Logger) portfolioModel {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	m := portfolioModel{
		client:     client,
		prompts:    set,
		renderOpts: opts,
		logger:     logger,
		risks:      models.RiskTolerances(),
		goals:      models.FinancialGoals(),
		viewport:   viewport.New(0, 0),
		spinner:    s,
	}
	m.resetForm()
	return m
}

// resetForm restores the form defaults and returns to it
func (m *portfolioModel) resetForm() {
	m.riskIdx = 0
	for i, r := range m.risks {
		if r == models.DefaultRiskTolerance {
			m.riskIdx = i
		}
	}
	m.selected = make([]bool, len(m.goals))
	m.cursor = 0
	m.timeline = models.DefaultTimeline
	m.invalid = ""
	m.state = portfolioForm
	m.suggestion = ""
	m.err = nil
}

func (m *portfolioModel) setSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(height-2, 3)
	m.refresh()
}

func (m portfolioModel) selectedGoals() []string {
	var out []string
	for i, g := range m.goals {
		if m.selected[i] {
			out = append(out, g)
		}
	}
	return out
}

func (m portfolioModel) update(ctx context.Context, msg tea.Msg) (portfolioModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.state {
		case portfolioForm:
			return m.updateForm(ctx, msg)
		case portfolioResult:
			if msg.String() == "r" {
				m.resetForm()
				return m, nil
			}
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case portfolioFailed:
			switch msg.String() {
			case "enter":
				return m.submit(ctx, m.profile)
			case "r":
				m.resetForm()
			}
			return m, nil
		case portfolioStreaming:
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case streamUpdateMsg:
		m.suggestion = msg.text
		m.refresh()
		return m, waitForStream(m.stream)

	case streamDoneMsg:
		m.stream = nil
		if msg.err != nil {
			m.err = msg.err
			m.state = portfolioFailed
			m.logger.Error("portfolio suggestion failed", zap.Error(msg.err))
			return m, nil
		}
		m.suggestion = msg.text
		m.state = portfolioResult
		m.refresh()

	case spinner.TickMsg:
		if m.state == portfolioStreaming {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m portfolioModel) updateForm(ctx context.Context, msg tea.KeyMsg) (portfolioModel, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		m.riskIdx = (m.riskIdx - 1 + len(m.risks)) % len(m.risks)
	case "right", "l":
		m.riskIdx = (m.riskIdx + 1) % len(m.risks)
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.goals)-1 {
			m.cursor++
		}
	case " ", "space":
		m.selected[m.cursor] = !m.selected[m.cursor]
		m.invalid = ""
	case "+", "=":
		m.timeline = min(m.timeline+1, models.MaxTimeline)
	case "-", "_":
		m.timeline = max(m.timeline-1, models.MinTimeline)
	case "enter":
		profile, err := models.NewPortfolioProfile(m.risks[m.riskIdx], m.selectedGoals(), m.timeline)
		if err != nil {
			m.invalid = apierrors.UserMessage(err, apierrors.MsgPortfolioFailed)
			return m, nil
		}
		m.invalid = ""
		return m.submit(ctx, profile)
	}
	return m, nil
}

// submit streams a suggestion for profile
func (m portfolioModel) submit(ctx context.Context, profile models.PortfolioProfile) (portfolioModel, tea.Cmd) {
	if m.client == nil {
		return m, nil
	}

	prompt, err := m.prompts.PortfolioPrompt(profile)
	if err != nil {
		m.err = err
		m.state = portfolioFailed
		return m, nil
	}

	m.profile = profile
	m.state = portfolioStreaming
	m.suggestion = ""
	m.err = nil

	client, system := m.client, m.prompts.SystemInstruction
	ch, cmd := startStream(ctx, targetPortfolio, func(ctx context.Context, onUpdate stream.UpdateFunc) (string, error) {
		return stream.Aggregate(client.StreamContent(ctx, system, prompt), onUpdate)
	})
	m.stream = ch
	m.refresh()

	return m, tea.Batch(cmd, m.spinner.Tick)
}

func (m *portfolioModel) refresh() {
	if m.viewport.Width <= 0 {
		return
	}
	rendered := render.MarkdownOrPlain(m.suggestion, m.renderOpts.WithWidth(m.viewport.Width-2))
	m.viewport.SetContent(strings.TrimRight(rendered, "\n"))
	if m.state == portfolioStreaming {
		m.viewport.GotoBottom()
	}
}

func (m portfolioModel) viewForm() string {
	var sb strings.Builder

	sb.WriteString(welcomeTitleStyle.Render("Portfolio Builder"))
	sb.WriteString("\n")
	sb.WriteString(subtitleStyle.Render("Describe your profile to get a sample asset allocation."))
	sb.WriteString("\n\n")

	sb.WriteString(formLabelStyle.Render("Risk tolerance"))
	sb.WriteString("   ")
	for i, r := range m.risks {
		if i == m.riskIdx {
			sb.WriteString(activeTabStyle.Render(string(r)))
		} else {
			sb.WriteString(tabStyle.Render(string(r)))
		}
	}
	sb.WriteString("\n\n")

	sb.WriteString(formLabelStyle.Render("Financial goals"))
	sb.WriteString("\n")
	for i, g := range m.goals {
		cursor := "  "
		if i == m.cursor {
			cursor = formCursorStyle.Render("▸ ")
		}
		box := formDisabledStyle.Render("[ ]")
		name := formValueStyle.Render(g)
		if m.selected[i] {
			box = formCheckedStyle.Render("[x]")
			name = formCheckedStyle.Render(g)
		}
		sb.WriteString(fmt.Sprintf("%s%s %s\n", cursor, box, name))
	}
	sb.WriteString("\n")

	sb.WriteString(formLabelStyle.Render("Investment timeline"))
	sb.WriteString(fmt.Sprintf("   %s %s %s",
		formDisabledStyle.Render("-"),
		formValueStyle.Render(fmt.Sprintf("%d years", m.timeline)),
		formDisabledStyle.Render("+")))
	sb.WriteString("\n")

	if m.invalid != "" {
		sb.WriteString("\n")
		sb.WriteString(errorStyle.Render("⚠ " + m.invalid))
		sb.WriteString("\n")
	}

	return sb.String()
}

func (m portfolioModel) view() string {
	var content string

	switch m.state {
	case portfolioForm:
		content = m.viewForm()
	case portfolioStreaming:
		header := loadingStyle.Render(m.spinner.View() + " Building your portfolio...")
		content = lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View())
	case portfolioResult:
		header := formLabelStyle.Render(fmt.Sprintf("Sample portfolio · %s · %s · %d years",
			m.profile.RiskTolerance, m.profile.GoalsList(), m.profile.Timeline))
		content = lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View())
	case portfolioFailed:
		content = lipgloss.JoinVertical(lipgloss.Left,
			formatError(m.err, apierrors.MsgPortfolioFailed),
			"",
			hintStyle.Render("Press Enter to try again or r to start over."))
	}

	return lipgloss.NewStyle().Height(m.height).Render(content)
}

func (m portfolioModel) shortcuts() []shortcut {
	switch m.state {
	case portfolioForm:
		return []shortcut{{"←→", "Risk"}, {"↑↓ Space", "Goals"}, {"+/-", "Years"}, {"Enter", "Generate"}, {"Tab", "Switch"}}
	case portfolioResult:
		return []shortcut{{"↑↓", "Scroll"}, {"r", "Start over"}, {"Tab", "Switch"}, {"Esc", "Quit"}}
	case portfolioFailed:
		return []shortcut{{"Enter", "Retry"}, {"r", "Start over"}, {"Tab", "Switch"}, {"Esc", "Quit"}}
	default:
		return []shortcut{{"↑↓", "Scroll"}, {"Tab", "Switch"}, {"Esc", "Quit"}}
	}
}
