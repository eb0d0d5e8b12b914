package tokens

import (
	"golang.org/x/text/cases"
)

// DefaultLabels are header cell texts that never carry grid data.
var DefaultLabels = []string{
	"x-coordinate", "x coordinate", "x",
	"character",
	"y-coordinate", "y coordinate", "y",
}

// Normalizer strips header labels and empty cells from a token stream.
// It is immutable once built.
type Normalizer struct {
	labels map[string]struct{}
}

// NewNormalizer builds a Normalizer for the given label set. Labels match
// case-insensitively.
func NewNormalizer(labels []string) *Normalizer {
	fold := cases.Fold()
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[fold.String(l)] = struct{}{}
	}
	return &Normalizer{labels: set}
}

// Normalize returns the data tokens of in, preserving their order.
func (n *Normalizer) Normalize(in []string) []string {
	fold := cases.Fold()
	out := make([]string, 0, len(in))
	for _, tok := range in {
		if tok == "" {
			continue
		}
		if _, isLabel := n.labels[fold.String(tok)]; isLabel {
			continue
		}
		out = append(out, tok)
	}
	return out
}
