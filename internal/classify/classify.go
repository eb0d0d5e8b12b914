package classify

import (
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/hyperifyio/gridscrape/internal/grid"
)

// MethodFallback names the free-text fallback in Result.Method.
const MethodFallback = "fallback"

var integerRe = regexp.MustCompile(`^-?[0-9]+$`)

// Hypothesis is one candidate column order for a row of three tokens.
type Hypothesis struct {
	Name string
	// Match interprets one chunk. ok is false when the chunk does not fit
	// this column order.
	Match func(a, b, c string) (t grid.Triple, ok bool)
}

// Hypotheses are tried in this order; the first producing any triple wins.
var Hypotheses = []Hypothesis{
	{Name: "number-char-number", Match: numberCharNumber},
	{Name: "number-number-char", Match: numberNumberChar},
	{Name: "char-number-number", Match: charNumberNumber},
}

// Result is the outcome of Classify.
type Result struct {
	Triples []grid.Triple
	// Method is the winning hypothesis name, MethodFallback, or "" when
	// nothing classified.
	Method string
}

// Classify turns a normalized token stream into triples. Tokens are aligned
// to a multiple of three and chunked; each hypothesis runs over every chunk
// and the first with a non-empty result is returned alone. If none matches,
// Fallback runs over the unaligned tokens.
func Classify(tokens []string) Result {
	aligned := Align(tokens)
	for _, h := range Hypotheses {
		if triples := Apply(h, aligned); len(triples) > 0 {
			return Result{Triples: triples, Method: h.Name}
		}
	}
	if triples := Fallback(tokens); len(triples) > 0 {
		return Result{Triples: triples, Method: MethodFallback}
	}
	return Result{}
}

// Align drops up to two leading tokens so the remainder splits into rows of
// three. When no offset works the input is returned unchanged.
func Align(tokens []string) []string {
	if len(tokens)%3 == 0 {
		return tokens
	}
	for start := 1; start < 3 && start <= len(tokens); start++ {
		if (len(tokens)-start)%3 == 0 {
			return tokens[start:]
		}
	}
	return tokens
}

// Apply runs one hypothesis over consecutive chunks of three tokens.
// Chunks that do not match are skipped; a trailing partial chunk is ignored.
func Apply(h Hypothesis, tokens []string) []grid.Triple {
	var out []grid.Triple
	for i := 0; i+2 < len(tokens); i += 3 {
		if t, ok := h.Match(tokens[i], tokens[i+1], tokens[i+2]); ok {
			out = append(out, t)
		}
	}
	return out
}

func numberCharNumber(a, b, c string) (grid.Triple, bool) {
	x, okX := integer(a)
	y, okY := integer(c)
	ch, okC := character(b)
	return grid.Triple{X: x, Y: y, Ch: ch}, okX && okY && okC
}

func numberNumberChar(a, b, c string) (grid.Triple, bool) {
	x, okX := integer(a)
	y, okY := integer(b)
	ch, okC := character(c)
	return grid.Triple{X: x, Y: y, Ch: ch}, okX && okY && okC
}

func charNumberNumber(a, b, c string) (grid.Triple, bool) {
	ch, okC := character(a)
	x, okX := integer(b)
	y, okY := integer(c)
	return grid.Triple{X: x, Y: y, Ch: ch}, okX && okY && okC
}

// IsInteger reports whether s is an optionally signed run of ASCII digits.
func IsInteger(s string) bool {
	return integerRe.MatchString(s)
}

// integer parses s when it is an integer token that fits in an int.
func integer(s string) (int, bool) {
	if !IsInteger(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// character returns the first code point of a non-empty, non-integer token.
// A token starting with invalid UTF-8 yields U+FFFD.
func character(s string) (rune, bool) {
	if s == "" || IsInteger(s) {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, true
}
