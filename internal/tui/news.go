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
	"github.com/diogo/finassist/internal/render"
	"github.com/diogo/finassist/internal/sources"
)

// newsLoadedMsg is the result of one grounded summary request
type newsLoadedMsg struct {
	summary *models.GroundedSummary
	err     error
}

// newsModel is the market news tab
type newsModel struct {
	client     api.ClientInterface
	query      string
	renderOpts render.Options
	logger     *zap.Logger

	viewport viewport.Model
	spinner  spinner.Model

	loading bool
	summary *models.GroundedSummary
	err     error

	width  int
	height int
}

func newNewsModel(client api.ClientInterface, query string, opts render.Options, logger *zap.Logger) newsModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = loadingStyle

	return newsModel{
		client:     client,
		query:      query,
		renderOpts: opts,
		logger:     logger,
		viewport:   viewport.New(0, 0),
		spinner:    s,
	}
}

func (m *newsModel) setSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(height-2, 3)
	m.refresh()
}

func (m newsModel) update(ctx context.Context, msg tea.Msg) (newsModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.err = nil
		switch msg.String() {
		case "enter", "f":
			return m.fetch(ctx)
		default:
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case newsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.logger.Error("news summary failed", zap.Error(msg.err))
			return m, nil
		}
		m.summary = &models.GroundedSummary{
			Text:    msg.summary.Text,
			Sources: sources.Dedupe(msg.summary.Sources),
		}
		m.refresh()
		m.viewport.GotoTop()

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

// fetch clears the previous result and requests a fresh summary. It is a
// no-op while a request is outstanding.
func (m newsModel) fetch(ctx context.Context) (newsModel, tea.Cmd) {
	if m.loading || m.client == nil {
		return m, nil
	}

	m.loading = true
	m.summary = nil
	m.err = nil
	m.refresh()

	client, query := m.client, m.query
	load := func() tea.Msg {
		summary, err := client.FetchGroundedSummary(ctx, query)
		if err == nil && summary == nil {
			err = apierrors.NewRequestFailedError(api.OpNewsSummary, nil)
		}
		return newsLoadedMsg{summary: summary, err: err}
	}

	return m, tea.Batch(load, m.spinner.Tick)
}

func (m *newsModel) refresh() {
	if m.viewport.Width <= 0 {
		return
	}
	if m.summary == nil {
		m.viewport.SetContent("")
		return
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimRight(render.MarkdownOrPlain(m.summary.Text, m.renderOpts.WithWidth(m.viewport.Width-2)), "\n"))

	if m.summary.HasSources() {
		sb.WriteString("\n\n")
		sb.WriteString(formLabelStyle.Render("Sources"))
		sb.WriteString("\n")
		for i, s := range m.summary.Sources {
			sb.WriteString(fmt.Sprintf("  %s %s\n      %s\n",
				sourceIndexStyle.Render(fmt.Sprintf("%d.", i+1)),
				sourceTitleStyle.Render(s.Title),
				sourceURIStyle.Render(s.URI)))
		}
	}

	m.viewport.SetContent(sb.String())
}

func (m newsModel) view() string {
	var sections []string

	switch {
	case m.loading:
		sections = append(sections, loadingStyle.Render(m.spinner.View()+" Fetching the latest market news..."))
	case m.summary == nil:
		sections = append(sections,
			welcomeTitleStyle.Render("Market News"),
			subtitleStyle.Render("Get an AI summary of today's top financial stories in India, with sources."),
			"",
			hintStyle.Render("Press Enter to fetch."))
	default:
		sections = append(sections, m.viewport.View())
	}

	if m.err != nil {
		sections = append(sections, formatError(m.err, apierrors.MsgNewsFailed))
	}

	return lipgloss.NewStyle().Height(m.height).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m newsModel) shortcuts() []shortcut {
	action := "Fetch news"
	if m.summary != nil {
		action = "Refresh"
	}
	return []shortcut{{"Enter", action}, {"↑↓", "Scroll"}, {"Tab", "Switch"}, {"Esc", "Quit"}}
}
