package sanitize

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	scriptRe = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	styleRe  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style\s*>`)
	// <br>, <p> and <div> (opening or closing) become line breaks so text
	// on either side of them stays separated after tags are stripped.
	breakRe  = regexp.MustCompile(`(?i)</?(?:br|p|div)\b[^>]*>`)
	tagRe    = regexp.MustCompile(`</?[^>]+>`)
	entityRe = regexp.MustCompile(`&(?:#([0-9]+)|#[xX]([0-9a-fA-F]+)|([a-zA-Z]+));?`)
)

// namedEntities is the fixed set of named references that are decoded.
// Anything else is left as written.
var namedEntities = map[string]string{
	"nbsp": " ",
	"lt":   "<",
	"gt":   ">",
	"amp":  "&",
	"quot": `"`,
	"apos": "'",
}

// Text converts an HTML fragment into a single line of visible text: script
// and style blocks are dropped, tags are removed, character references are
// decoded and whitespace runs collapse to one space.
func Text(fragment string) string {
	if fragment == "" {
		return ""
	}
	s := scriptRe.ReplaceAllString(fragment, "")
	s = styleRe.ReplaceAllString(s, "")
	s = breakRe.ReplaceAllString(s, "\n")
	s = tagRe.ReplaceAllString(s, "")
	s = DecodeEntities(s)
	return CollapseSpace(s)
}

// DecodeEntities decodes decimal and hexadecimal character references and the
// small named set in a single pass. Output of a decoded reference is never
// decoded again, so "&#38;lt;" yields "&lt;".
func DecodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return entityRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := entityRe.FindStringSubmatch(m)
		switch {
		case sub[1] != "":
			return decodeNumeric(m, sub[1], 10)
		case sub[2] != "":
			return decodeNumeric(m, sub[2], 16)
		default:
			if v, ok := namedEntities[sub[3]]; ok {
				return v
			}
			return m
		}
	})
}

func decodeNumeric(raw, digits string, base int) string {
	n, err := strconv.ParseInt(digits, base, 32)
	if err != nil || !utf8.ValidRune(rune(n)) {
		return raw
	}
	return string(rune(n))
}

// CollapseSpace replaces every run of white space with a single space and
// trims both ends. U+FEFF counts as white space here.
func CollapseSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, isSpace), " ")
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}
