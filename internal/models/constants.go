// Package models contains data types and constants shared by the finassist
// model client, conversation state and surfaces.
package models

// Model identifies a Gemini model served by the Gemini API
type Model struct {
	Name string
}

// Available models
var (
	// ModelUnspecified marks an unknown model name
	ModelUnspecified = Model{Name: "unspecified"}

	Model25Flash = Model{Name: "gemini-2.5-flash"}
	Model25Pro   = Model{Name: "gemini-2.5-pro"}

	// DefaultModel is used by every surface unless overridden
	DefaultModel = Model25Flash
)

// AllModels returns a list of all available models
func AllModels() []Model {
	return []Model{Model25Flash, Model25Pro}
}

// ModelFromName returns a Model by its full name or short alias
func ModelFromName(name string) Model {
	switch name {
	case "gemini-2.5-flash", "flash", "fast":
		return Model25Flash
	case "gemini-2.5-pro", "pro":
		return Model25Pro
	default:
		return ModelUnspecified
	}
}

// IsSpecified reports whether m names a real model
func (m Model) IsSpecified() bool {
	return m.Name != "" && m != ModelUnspecified
}
