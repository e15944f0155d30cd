package render

import "slices"

// Built-in glamour markdown styles
const (
	StyleDark       = "dark"
	StyleLight      = "light"
	StyleDracula    = "dracula"
	StyleTokyoNight = "tokyo-night"
	StylePink       = "pink"
	StyleNoTTY      = "notty"
	StyleASCII      = "ascii"
)

// styleAliases maps the names accepted in config to glamour style names
var styleAliases = map[string]string{
	"tokyonight": StyleTokyoNight,
	"plain":      StyleNoTTY,
}

// MarkdownStyles lists the built-in markdown styles
func MarkdownStyles() []string {
	return []string{StyleDark, StyleLight, StyleDracula, StyleTokyoNight, StylePink, StyleNoTTY, StyleASCII}
}

// IsBuiltinStyle reports whether style names a built-in markdown style
func IsBuiltinStyle(style string) bool {
	return slices.Contains(MarkdownStyles(), resolveStyle(style))
}

// resolveStyle applies aliases; anything else is passed to glamour as a
// style name or file path.
func resolveStyle(style string) string {
	if alias, ok := styleAliases[style]; ok {
		return alias
	}
	if style == "" {
		return StyleDark
	}
	return style
}
