package table

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/cases"
)

// DefaultHeaderTokens are the column labels expected in the grid table.
var DefaultHeaderTokens = []string{"x-coordinate", "character", "y-coordinate"}

// Location describes the table picked out of a document.
type Location struct {
	// Fragment is the table's markup, from <table> through </table>.
	Fragment string
	// Index is the fragment's position among all tables in the document.
	Index int
	// HeaderMatched is false when no table carried every header token and
	// the first table was returned instead.
	HeaderMatched bool
}

// Locator selects the table whose text contains every header token.
type Locator struct {
	HeaderTokens []string
}

// Locate returns the first table containing all header tokens
// (case-insensitively), else the first table. ok is false when the document
// has no table at all.
func (l Locator) Locate(doc string) (loc Location, ok bool) {
	frags := Fragments(doc)
	if len(frags) == 0 {
		return Location{}, false
	}
	fold := cases.Fold()
	want := make([]string, 0, len(l.HeaderTokens))
	for _, tok := range l.HeaderTokens {
		want = append(want, fold.String(tok))
	}
	for i, frag := range frags {
		plain := fold.String(flatten(frag))
		if containsAll(plain, want) {
			return Location{Fragment: frag, Index: i, HeaderMatched: true}, true
		}
	}
	return Location{Fragment: frags[0], Index: 0}, true
}

// Fragments enumerates the outermost <table> elements of doc in document
// order. Tables nested inside another table belong to their parent's
// fragment. A table left open runs to the end of the input.
func Fragments(doc string) []string {
	var out []string
	z := html.NewTokenizer(strings.NewReader(doc))
	pos, depth, start := 0, 0, 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if depth > 0 {
				out = append(out, doc[start:])
			}
			return out
		}
		n := len(z.Raw())
		switch tt {
		case html.StartTagToken:
			if tagAtom(z) == atom.Table {
				if depth == 0 {
					start = pos
				}
				depth++
			}
		case html.EndTagToken:
			if tagAtom(z) == atom.Table && depth > 0 {
				depth--
				if depth == 0 {
					out = append(out, doc[start:pos+n])
				}
			}
		}
		pos += n
	}
}

// flatten drops tags and keeps raw text, entities included.
func flatten(frag string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(frag))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Raw())
		}
	}
}

func containsAll(s string, needles []string) bool {
	for _, n := range needles {
		if !strings.Contains(s, n) {
			return false
		}
	}
	return true
}

func tagAtom(z *html.Tokenizer) atom.Atom {
	name, _ := z.TagName()
	return atom.Lookup(name)
}
