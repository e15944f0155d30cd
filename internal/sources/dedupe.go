// Package sources cleans the citation list returned with grounded answers.
package sources

import (
	"github.com/diogo/finassist/internal/models"
)

// Dedupe drops citations with an empty URI or title and keeps only the first
// occurrence of each URI. Order is preserved and the input is not modified.
func Dedupe(in []models.WebSource) []models.WebSource {
	if in == nil {
		return nil
	}

	out := make([]models.WebSource, 0, len(in))
	seen := make(map[string]struct{}, len(in))

	for _, s := range in {
		if s.URI == "" || s.Title == "" {
			continue
		}
		if _, ok := seen[s.URI]; ok {
			continue
		}
		seen[s.URI] = struct{}{}
		out = append(out, s)
	}

	return out
}
