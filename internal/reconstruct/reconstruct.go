package reconstruct

import (
	"errors"
	"fmt"

	"github.com/hyperifyio/gridscrape/internal/classify"
	"github.com/hyperifyio/gridscrape/internal/grid"
	"github.com/hyperifyio/gridscrape/internal/table"
	"github.com/hyperifyio/gridscrape/internal/tokens"
)

// SampleSize is how many data tokens a NoTriplesError carries.
const SampleSize = 30

var (
	// ErrNoTableFound means the document contains no <table> element.
	ErrNoTableFound = errors.New("no <table> found in HTML")
	// ErrNoCellsFound means the selected table has no cells.
	ErrNoCellsFound = errors.New("no table cells found")
	// ErrNoTriplesParsed means no hypothesis and not the fallback produced
	// a triple. The concrete error is a *NoTriplesError.
	ErrNoTriplesParsed = errors.New("could not parse any (x, character, y) records from the table")
)

// NoTriplesError reports an unparseable table together with a sample of
// its data tokens.
type NoTriplesError struct {
	TokenCount int
	Sample     []string
}

func (e *NoTriplesError) Error() string {
	return fmt.Sprintf("%s (%d data tokens, sample %q)", ErrNoTriplesParsed, e.TokenCount, e.Sample)
}

func (e *NoTriplesError) Is(target error) bool { return target == ErrNoTriplesParsed }

// Options configures a reconstruction. Nil slices select the defaults.
type Options struct {
	HeaderTokens []string
	Labels       []string
}

// Result carries the grid plus the counters the caller reports.
type Result struct {
	CellCount     int
	TokenCount    int
	TableIndex    int
	HeaderMatched bool
	Method        string
	Triples       []grid.Triple
	Grid          grid.Grid
}

// Reconstruct locates the grid table in doc, classifies its cells and
// renders the result. It does no I/O and keeps no state between calls.
func Reconstruct(doc string, opts Options) (Result, error) {
	headers := opts.HeaderTokens
	if headers == nil {
		headers = table.DefaultHeaderTokens
	}
	labels := opts.Labels
	if labels == nil {
		labels = tokens.DefaultLabels
	}

	var res Result
	loc, ok := table.Locator{HeaderTokens: headers}.Locate(doc)
	if !ok {
		return res, ErrNoTableFound
	}
	res.TableIndex = loc.Index
	res.HeaderMatched = loc.HeaderMatched

	cells := table.Cells(loc.Fragment)
	res.CellCount = len(cells)
	if len(cells) == 0 {
		return res, ErrNoCellsFound
	}

	data := tokens.NewNormalizer(labels).Normalize(cells)
	res.TokenCount = len(data)

	parsed := classify.Classify(data)
	if len(parsed.Triples) == 0 {
		sample := data
		if len(sample) > SampleSize {
			sample = sample[:SampleSize]
		}
		return res, &NoTriplesError{TokenCount: len(data), Sample: sample}
	}
	res.Method = parsed.Method
	res.Triples = parsed.Triples

	g, err := grid.Render(parsed.Triples)
	if err != nil {
		return res, fmt.Errorf("render: %w", err)
	}
	res.Grid = g
	return res, nil
}
