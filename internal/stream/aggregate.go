// Package stream folds a fragment sequence into a growing reply and tells a
// subscriber about every step.
package stream

import (
	"iter"
	"strings"

	"github.com/diogo/finassist/internal/models"
)

// Observer is notified with the accumulated text after each fragment
type Observer interface {
	OnUpdate(accumulated string)
}

// UpdateFunc adapts a plain function to Observer
type UpdateFunc func(accumulated string)

// OnUpdate calls f
func (f UpdateFunc) OnUpdate(accumulated string) {
	if f != nil {
		f(accumulated)
	}
}

// Aggregate consumes fragments in order, calling onUpdate once per fragment
// with everything received so far. On the first error it stops and returns
// the partial text together with the error. onUpdate may be nil.
func Aggregate(fragments iter.Seq2[models.Fragment, error], onUpdate UpdateFunc) (string, error) {
	return AggregateTo(fragments, onUpdate)
}

// AggregateTo is Aggregate for any Observer
func AggregateTo(fragments iter.Seq2[models.Fragment, error], observer Observer) (string, error) {
	var acc strings.Builder

	for f, err := range fragments {
		if err != nil {
			return acc.String(), err
		}
		acc.WriteString(f.Text)
		if observer != nil {
			observer.OnUpdate(acc.String())
		}
	}

	return acc.String(), nil
}
