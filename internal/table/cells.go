package table

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hyperifyio/gridscrape/internal/sanitize"
)

// Cells returns the sanitized text of every <td> and <th> in the fragment,
// in document order. Empty cells are kept as "" so row arity survives until
// normalization. A cell ends at its closing tag, at the next cell or row
// boundary, or at the end of the fragment. Cells of a nested table are part
// of the enclosing cell's text.
func Cells(fragment string) []string {
	if fragment == "" {
		return nil
	}
	var cells []string
	open := -1 // byte offset where the current cell's content starts
	closeCell := func(end int) {
		if open < 0 {
			return
		}
		cells = append(cells, strings.TrimSpace(sanitize.Text(fragment[open:end])))
		open = -1
	}

	z := html.NewTokenizer(strings.NewReader(fragment))
	pos, depth := 0, 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			closeCell(len(fragment))
			return cells
		}
		n := len(z.Raw())
		nested := depth > 1
		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			switch tagAtom(z) {
			case atom.Table:
				if tt == html.StartTagToken {
					depth++
				}
			case atom.Td, atom.Th:
				if !nested {
					closeCell(pos)
					open = pos + n
				}
			case atom.Tr:
				if !nested {
					closeCell(pos)
				}
			}
		case html.EndTagToken:
			switch tagAtom(z) {
			case atom.Table:
				if !nested {
					closeCell(pos)
				}
				if depth > 0 {
					depth--
				}
			case atom.Td, atom.Th, atom.Tr, atom.Thead, atom.Tbody, atom.Tfoot:
				if !nested {
					closeCell(pos)
				}
			}
		}
		pos += n
	}
}
