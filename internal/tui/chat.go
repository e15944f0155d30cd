package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/diogo/finassist/internal/api"
	"github.com/diogo/finassist/internal/conversation"
	apierrors "github.com/diogo/finassist/internal/errors"
	"github.com/diogo/finassist/internal/models"
	"github.com/diogo/finassist/internal/render"
	"github.com/diogo/finassist/internal/stream"
)

// chatModel is the conversational tab
type chatModel struct {
	session    api.ChatSessionInterface
	log        *conversation.Log
	starters   []string
	renderOpts render.Options
	logger     *zap.Logger

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	stream <-chan tea.Msg
	busy   bool
	err    error
	// turnLen is the log length up to the prompt of the open turn and
	// streaming the reply text of the last update received for it
	turnLen   int
	streaming string

	width  int
	height int
}

func newChatModel(session api.ChatSessionInterface, starters []string, opts render.Options, logger *zap.Logger) chatModel {
	ta := textarea.New()
	ta.Placeholder = "Ask about mutual funds, stocks, ETFs..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return chatModel{
		session:    session,
		log:        conversation.New(),
		starters:   starters,
		renderOpts: opts,
		logger:     logger,
		textarea:   ta,
		viewport:   viewport.New(0, 0),
		spinner:    s,
	}
}

func (m *chatModel) setSize(width, height int) {
	m.width = width
	m.height = height

	inputHeight := 5
	vpHeight := height - inputHeight
	if vpHeight < 3 {
		vpHeight = 3
	}

	m.viewport.Width = width
	m.viewport.Height = vpHeight
	m.textarea.SetWidth(width - 4)
	m.refresh()
}

func (m chatModel) update(ctx context.Context, msg tea.Msg) (chatModel, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// any key dismisses the last error
		m.err = nil

		if m.busy {
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		switch key := msg.String(); key {
		case "enter":
			return m.submit(ctx, m.textarea.Value())

		case "1", "2", "3", "4":
			if idx := int(key[0] - '1'); m.showWelcome() && m.textarea.Value() == "" && idx < len(m.starters) {
				return m.submit(ctx, m.starters[idx])
			}

		case "pgup", "pgdown":
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)

	case streamUpdateMsg:
		m.streaming = msg.text
		m.refresh()
		m.viewport.GotoBottom()
		cmds = append(cmds, waitForStream(m.stream))

	case streamDoneMsg:
		m.busy = false
		m.stream = nil
		m.streaming = ""
		m.err = msg.err
		if msg.err != nil {
			m.logger.Error("chat turn failed", zap.Error(msg.err))
		}
		m.textarea.Focus()
		m.refresh()
		m.viewport.GotoBottom()

	case spinner.TickMsg:
		if m.busy {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// submit starts a turn with prompt. The user entry is appended before the
// stream starts so it shows immediately.
func (m chatModel) submit(ctx context.Context, prompt string) (chatModel, tea.Cmd) {
	if m.session == nil {
		return m, nil
	}

	ok, err := m.log.AppendUserMessage(prompt)
	if err != nil {
		m.err = err
		return m, nil
	}
	if !ok {
		return m, nil
	}

	m.textarea.Reset()
	m.textarea.Blur()
	m.busy = true
	m.turnLen = m.log.Len()
	m.streaming = ""

	session, log := m.session, m.log
	ch, cmd := startStream(ctx, targetChat, func(ctx context.Context, onUpdate stream.UpdateFunc) (string, error) {
		return "", log.StreamReply(ctx, session, prompt, onUpdate)
	})
	m.stream = ch

	m.refresh()
	m.viewport.GotoBottom()

	return m, tea.Batch(cmd, m.spinner.Tick)
}

func (m chatModel) showWelcome() bool {
	return m.log.Len() == 0
}

// refresh rebuilds the viewport content from the log. While a turn is open
// its reply comes from the last update received, since the producer may
// already have written later fragments to the log.
func (m *chatModel) refresh() {
	if m.viewport.Width <= 0 {
		return
	}

	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6

	msgs := m.log.Messages()
	if m.busy && m.turnLen <= len(msgs) {
		msgs = append(msgs[:m.turnLen:m.turnLen], models.Message{Role: models.RoleModel, Content: m.streaming})
	}

	for i, msg := range msgs {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString(m.renderMessage(msg, bubbleWidth))
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

func (m chatModel) renderMessage(msg models.Message, width int) string {
	if !msg.IsModel() {
		return userLabelStyle.Render("● You") + "\n" +
			userBubbleStyle.Width(width).Render(msg.Content)
	}

	label := assistantLabelStyle.Render("✦ Assistant")
	if msg.Content == "" {
		return label + "\n" + loadingStyle.Render(m.spinner.View()+" Thinking...")
	}

	rendered := render.MarkdownOrPlain(msg.Content, m.renderOpts.WithWidth(width-4))
	rendered = strings.TrimRight(rendered, "\n")
	return label + "\n" + assistantBubbleStyle.Width(width).Render(rendered)
}

func (m chatModel) renderWelcome() string {
	var sb strings.Builder
	sb.WriteString(welcomeTitleStyle.Render("✦ Your friendly guide to investing in India"))
	sb.WriteString("\n")
	sb.WriteString(subtitleStyle.Render("Ask anything, or pick a starter question:"))
	sb.WriteString("\n\n")
	for i, p := range m.starters {
		sb.WriteString(fmt.Sprintf("  %s %s\n", starterKeyStyle.Render(fmt.Sprintf("[%d]", i+1)), starterTextStyle.Render(p)))
	}
	return sb.String()
}

func (m chatModel) view() string {
	var sections []string

	if m.showWelcome() {
		sections = append(sections, lipgloss.NewStyle().Height(m.viewport.Height).Render(m.renderWelcome()))
	} else {
		sections = append(sections, m.viewport.View())
	}

	var input string
	if m.busy {
		input = loadingStyle.Render(m.spinner.View() + " Streaming reply...")
	} else {
		input = lipgloss.JoinVertical(lipgloss.Left, inputLabelStyle.Render("You"), m.textarea.View())
	}
	sections = append(sections, inputPanelStyle.Width(m.width-2).Render(input))

	if m.err != nil {
		sections = append(sections, formatError(m.err, apierrors.MsgChatFailed))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m chatModel) shortcuts() []shortcut {
	if m.showWelcome() {
		return []shortcut{{"Enter", "Send"}, {"1-4", "Starter"}, {"Tab", "Switch"}, {"Esc", "Quit"}}
	}
	return []shortcut{{"Enter", "Send"}, {"PgUp/PgDn", "Scroll"}, {"Tab", "Switch"}, {"Esc", "Quit"}}
}
