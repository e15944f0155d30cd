// Package tui provides the terminal user interface for finassist.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	apierrors "github.com/diogo/finassist/internal/errors"
	"github.com/diogo/finassist/internal/render"
)

// Color variables (updated from theme)
var (
	colorSurface lipgloss.Color
	colorBorder  lipgloss.Color

	colorPrimary   lipgloss.Color
	colorSecondary lipgloss.Color
	colorAccent    lipgloss.Color
	colorWarning   lipgloss.Color
	colorError     lipgloss.Color

	colorText     lipgloss.Color
	colorTextDim  lipgloss.Color
	colorTextMute lipgloss.Color
)

// Style variables (rebuilt when theme changes)
var (
	headerStyle   lipgloss.Style
	titleStyle    lipgloss.Style
	subtitleStyle lipgloss.Style
	hintStyle     lipgloss.Style

	tabStyle       lipgloss.Style
	activeTabStyle lipgloss.Style

	panelStyle lipgloss.Style

	userBubbleStyle      lipgloss.Style
	userLabelStyle       lipgloss.Style
	assistantBubbleStyle lipgloss.Style
	assistantLabelStyle  lipgloss.Style

	inputPanelStyle lipgloss.Style
	inputLabelStyle lipgloss.Style
	loadingStyle    lipgloss.Style

	statusBarStyle  lipgloss.Style
	statusKeyStyle  lipgloss.Style
	statusDescStyle lipgloss.Style

	errorStyle  lipgloss.Style
	bannerStyle lipgloss.Style

	welcomeTitleStyle lipgloss.Style
	starterKeyStyle   lipgloss.Style
	starterTextStyle  lipgloss.Style

	formLabelStyle    lipgloss.Style
	formValueStyle    lipgloss.Style
	formCursorStyle   lipgloss.Style
	formCheckedStyle  lipgloss.Style
	formDisabledStyle lipgloss.Style

	sourceIndexStyle lipgloss.Style
	sourceTitleStyle lipgloss.Style
	sourceURIStyle   lipgloss.Style
)

func init() {
	UpdateTheme()
}

// UpdateTheme refreshes all styles from the active TUI theme
func UpdateTheme() {
	theme := render.GetTUITheme()

	colorSurface = theme.Surface
	colorBorder = theme.Border
	colorPrimary = theme.Primary
	colorSecondary = theme.Secondary
	colorAccent = theme.Accent
	colorWarning = theme.Warning
	colorError = theme.Error
	colorText = theme.Text
	colorTextDim = theme.TextDim
	colorTextMute = theme.TextMute

	rebuildStyles()
}

func rebuildStyles() {
	headerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 2)

	titleStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	subtitleStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	hintStyle = lipgloss.NewStyle().
		Foreground(colorTextMute).
		Italic(true)

	tabStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
		Foreground(colorSurface).
		Background(colorPrimary).
		Bold(true).
		Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	userBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorSecondary).
		Padding(0, 1).
		MarginLeft(4)

	userLabelStyle = lipgloss.NewStyle().
		Foreground(colorSecondary).
		Bold(true).
		MarginLeft(4)

	assistantBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Foreground(colorText).
		Padding(0, 1).
		MarginRight(4)

	assistantLabelStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	inputPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	inputLabelStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	loadingStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	statusBarStyle = lipgloss.NewStyle().
		Foreground(colorTextMute)

	statusKeyStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Bold(true)

	statusDescStyle = lipgloss.NewStyle().
		Foreground(colorTextMute)

	errorStyle = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)

	bannerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorError).
		Foreground(colorError).
		Bold(true).
		Padding(0, 1)

	welcomeTitleStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		MarginBottom(1)

	starterKeyStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	starterTextStyle = lipgloss.NewStyle().
		Foreground(colorText)

	formLabelStyle = lipgloss.NewStyle().
		Foreground(colorSecondary).
		Bold(true)

	formValueStyle = lipgloss.NewStyle().
		Foreground(colorText)

	formCursorStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	formCheckedStyle = lipgloss.NewStyle().
		Foreground(colorSecondary)

	formDisabledStyle = lipgloss.NewStyle().
		Foreground(colorTextMute)

	sourceIndexStyle = lipgloss.NewStyle().
		Foreground(colorAccent)

	sourceTitleStyle = lipgloss.NewStyle().
		Foreground(colorText)

	sourceURIStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Underline(true)
}

// shortcut is one key hint of a status bar
type shortcut struct {
	key  string
	desc string
}

func renderStatusBar(width int, shortcuts []shortcut) string {
	items := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// formatError renders the user-facing message for err. The technical
// detail stays in the log file.
func formatError(err error, fallback string) string {
	if err == nil {
		return ""
	}
	return errorStyle.Render("⚠ " + apierrors.UserMessage(err, fallback))
}
