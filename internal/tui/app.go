package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/diogo/finassist/internal/api"
	apierrors "github.com/diogo/finassist/internal/errors"
	"github.com/diogo/finassist/internal/logging"
	"github.com/diogo/finassist/internal/prompts"
	"github.com/diogo/finassist/internal/render"
)

// Tab identifies a surface of the app
type Tab int

const (
	TabChat Tab = iota
	TabNews
	TabPortfolio
	tabCount
)

func (t Tab) String() string {
	switch t {
	case TabChat:
		return "Chat"
	case TabNews:
		return "News"
	case TabPortfolio:
		return "Portfolio"
	default:
		return fmt.Sprintf("Tab(%d)", int(t))
	}
}

// Options configures the app
type Options struct {
	// Tab is the surface shown at start
	Tab Tab
	// Prompts defaults to the embedded prompt set
	Prompts *prompts.Set
	// Render is used for every markdown block
	Render render.Options
	// Theme names a TUI colour theme; empty keeps the active one
	Theme  string
	Logger *zap.Logger
}

// App is the root Bubble Tea model
type App struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger

	modelName string
	setupErr  error

	tab       Tab
	chat      chatModel
	news      newsModel
	portfolio portfolioModel

	width  int
	height int
	ready  bool
}

// NewApp builds the app around client. A nil client, or one that cannot
// start a conversation, puts the app in setup-error mode where every
// model-calling action is disabled.
func NewApp(client api.ClientInterface, opts Options) App {
	logger := logging.OrNop(opts.Logger)
	set := opts.Prompts
	if set == nil {
		set = prompts.Default()
	}
	if opts.Render.Width == 0 {
		opts.Render = render.DefaultOptions()
	}

	if opts.Theme != "" && render.SetTUITheme(opts.Theme) {
		UpdateTheme()
	}

	ctx, cancel := context.WithCancel(context.Background())

	var (
		session  api.ChatSessionInterface
		setupErr error
		name     string
	)
	if client == nil {
		setupErr = apierrors.NewNotConfiguredError("")
	} else {
		name = client.ModelName()
		s, err := client.StartConversation(set.SystemInstruction)
		if err != nil {
			setupErr = err
			client = nil
			logger.Error("failed to start conversation", zap.Error(err))
		} else {
			session = s
		}
	}

	tab := opts.Tab
	if tab < 0 || tab >= tabCount {
		tab = TabChat
	}

	return App{
		ctx:       ctx,
		cancel:    cancel,
		logger:    logger,
		modelName: name,
		setupErr:  setupErr,
		tab:       tab,
		chat:      newChatModel(session, set.StarterPrompts, opts.Render, logger),
		news:      newNewsModel(client, set.NewsQuery, opts.Render, logger),
		portfolio: newPortfolioModel(client, set, opts.Render, logger),
	}
}

// Init initializes the app
func (a App) Init() tea.Cmd {
	return nil
}

// Update routes messages to the surfaces
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.resize()
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			a.cancel()
			return a, tea.Quit
		case "tab":
			a.tab = (a.tab + 1) % tabCount
			return a, nil
		case "shift+tab":
			a.tab = (a.tab + tabCount - 1) % tabCount
			return a, nil
		}

		if a.setupErr != nil {
			return a, nil
		}

		switch a.tab {
		case TabChat:
			a.chat, cmd = a.chat.update(a.ctx, msg)
		case TabNews:
			a.news, cmd = a.news.update(a.ctx, msg)
		case TabPortfolio:
			a.portfolio, cmd = a.portfolio.update(a.ctx, msg)
		}
		return a, cmd

	case streamUpdateMsg:
		return a.routeStream(msg.target, msg)
	case streamDoneMsg:
		return a.routeStream(msg.target, msg)

	case newsLoadedMsg:
		a.news, cmd = a.news.update(a.ctx, msg)
		return a, cmd
	}

	// spinner ticks and anything else go to every surface
	var cmds []tea.Cmd
	a.chat, cmd = a.chat.update(a.ctx, msg)
	cmds = append(cmds, cmd)
	a.news, cmd = a.news.update(a.ctx, msg)
	cmds = append(cmds, cmd)
	a.portfolio, cmd = a.portfolio.update(a.ctx, msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

func (a App) routeStream(target streamTarget, msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch target {
	case targetChat:
		a.chat, cmd = a.chat.update(a.ctx, msg)
	case targetPortfolio:
		a.portfolio, cmd = a.portfolio.update(a.ctx, msg)
	}
	return a, cmd
}

// bodySize is the space left for the active surface
func (a App) bodySize() (int, int) {
	headerHeight := 3
	tabsHeight := 2
	statusHeight := 1
	return a.width - 2, max(a.height-headerHeight-tabsHeight-statusHeight, 5)
}

func (a *App) resize() {
	w, h := a.bodySize()
	a.chat.setSize(w, h)
	a.news.setSize(w, h)
	a.portfolio.setSize(w, h)
}

// View renders the app
func (a App) View() string {
	if !a.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := a.width - 2

	title := titleStyle.Render("✦ FinAssist")
	if a.modelName != "" {
		title += hintStyle.Render("  •  ") + subtitleStyle.Render(a.modelName)
	}
	header := headerStyle.Width(contentWidth - 2).Render(title)

	tabs := make([]string, 0, tabCount)
	for t := Tab(0); t < tabCount; t++ {
		if t == a.tab {
			tabs = append(tabs, activeTabStyle.Render(t.String()))
		} else {
			tabs = append(tabs, tabStyle.Render(t.String()))
		}
	}
	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n"

	var body string
	var shortcuts []shortcut
	switch {
	case a.setupErr != nil:
		body = bannerStyle.Width(contentWidth-2).Render(apierrors.UserMessage(a.setupErr, apierrors.MsgSetupFailed)) +
			"\n\n" + hintStyle.Render("Set GEMINI_API_KEY in your environment or a .env file, then restart.")
		shortcuts = []shortcut{{"Tab", "Switch"}, {"Esc", "Quit"}}
	case a.tab == TabChat:
		body = a.chat.view()
		shortcuts = a.chat.shortcuts()
	case a.tab == TabNews:
		body = a.news.view()
		shortcuts = a.news.shortcuts()
	case a.tab == TabPortfolio:
		body = a.portfolio.view()
		shortcuts = a.portfolio.shortcuts()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		tabBar,
		body,
		renderStatusBar(contentWidth, shortcuts),
	)
}

// Close cancels any in-flight request. Run calls it when the program exits.
func (a App) Close() {
	a.cancel()
}

// Run starts the TUI and blocks until the user quits
func Run(client api.ClientInterface, opts Options) error {
	app := NewApp(client, opts)
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
