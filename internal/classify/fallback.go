package classify

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/hyperifyio/gridscrape/internal/grid"
)

var (
	embeddedIntRe = regexp.MustCompile(`-?[0-9]+`)
	codePointRe   = regexp.MustCompile(`U\+([0-9A-Fa-f]{1,6})`)
	quotedRe      = regexp.MustCompile("'(.*?)'|\"(.*?)\"|`(.*?)`")
	punctRe       = regexp.MustCompile(`[:,()\[\]{}<>]`)
)

// Fallback reads each token as a free-text line such as
// "place U+0041 at (2,3)" or `'#' 4, 7`. The character comes from a U+HEX
// escape, else the first quoted substring, else the first character left
// after removing integers and brackets. The first two integers are x and y.
// Lines yielding no character or fewer than two integers are dropped.
func Fallback(lines []string) []grid.Triple {
	var out []grid.Triple
	for _, line := range lines {
		if t, ok := parseLine(line); ok {
			out = append(out, t)
		}
	}
	return out
}

func parseLine(line string) (grid.Triple, bool) {
	ch, rest, found, drop := explicitCharacter(line)
	if drop {
		return grid.Triple{}, false
	}
	nums := embeddedIntRe.FindAllString(rest, 2)
	if len(nums) < 2 {
		return grid.Triple{}, false
	}
	x, errX := strconv.Atoi(nums[0])
	y, errY := strconv.Atoi(nums[1])
	if errX != nil || errY != nil {
		return grid.Triple{}, false
	}
	if !found {
		leftover := embeddedIntRe.ReplaceAllString(line, "")
		leftover = strings.TrimSpace(punctRe.ReplaceAllString(leftover, ""))
		if leftover == "" {
			return grid.Triple{}, false
		}
		ch, _ = utf8.DecodeRuneInString(leftover)
	}
	return grid.Triple{X: x, Y: y, Ch: ch}, true
}

// explicitCharacter looks for a U+HEX escape, then a quoted substring. For
// an escape, rest is line with the escape blanked out so its hex digits are
// not read as coordinates; a quoted character leaves line intact. drop is set
// for an empty quote, which names no character. U+0000 and surrogates are not
// usable escapes and fall through to the quote.
func explicitCharacter(line string) (ch rune, rest string, found, drop bool) {
	if loc := codePointRe.FindStringSubmatchIndex(line); loc != nil {
		n, err := strconv.ParseInt(line[loc[2]:loc[3]], 16, 32)
		if err == nil && n != 0 && utf8.ValidRune(rune(n)) {
			return rune(n), line[:loc[0]] + " " + line[loc[1]:], true, false
		}
	}
	loc := quotedRe.FindStringSubmatchIndex(line)
	if loc == nil {
		return 0, line, false, false
	}
	var quoted string
	for g := 1; g <= 3; g++ {
		if loc[2*g] >= 0 {
			quoted = line[loc[2*g]:loc[2*g+1]]
			break
		}
	}
	if quoted == "" {
		return 0, line, false, true
	}
	ch, _ = utf8.DecodeRuneInString(quoted)
	return ch, line, true, false
}
