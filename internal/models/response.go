package models

// GroundedSummary is a single-shot answer plus the citations the model
// consulted. Sources are raw: they may contain duplicates and blank entries.
type GroundedSummary struct {
	Text    string
	Sources []WebSource
}

// HasSources reports whether any citation came back
func (g *GroundedSummary) HasSources() bool {
	return g != nil && len(g.Sources) > 0
}
