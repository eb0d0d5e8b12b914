package grid

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// LargeGridThreshold is the cell count above which Render reports a
// LargeGrid advisory. Rendering still proceeds.
const LargeGridThreshold = 5_000_000

// MaxCells is the largest Width*Height Render will allocate.
const MaxCells = 1 << 28

var (
	// ErrNothingToRender is returned by Render when no valid triple was supplied.
	ErrNothingToRender = errors.New("no triples to build grid from")
	// ErrGridTooLarge is returned by Render when the grid would exceed MaxCells.
	ErrGridTooLarge = errors.New("grid too large to render")
)

// Triple places one character at (X, Y).
type Triple struct {
	X  int
	Y  int
	Ch rune
}

// Valid reports whether t carries a usable character.
func (t Triple) Valid() bool {
	return t.Ch != 0 && utf8.ValidRune(t.Ch)
}

// Advisories are non-fatal observations made while rendering.
type Advisories struct {
	// LargeGrid is set when Width*Height exceeds LargeGridThreshold.
	LargeGrid bool
	// OffGrid counts triples with a negative coordinate; they are never drawn.
	OffGrid int
	// WideRunes counts placed characters whose display width is not one
	// column, which breaks monospace alignment.
	WideRunes int
}

// Grid is a dense rendering of a triple set.
type Grid struct {
	Width      int
	Height     int
	Rows       []string
	Advisories Advisories
}

// Size returns the grid dimensions for triples without rendering them.
// Both maxima start at zero, so a grid is at least 1x1. ok is false when
// triples holds no valid entry. An axis whose extent does not fit in an int
// is reported as math.MaxInt.
func Size(triples []Triple) (width, height int, ok bool) {
	maxX, maxY := 0, 0
	for _, t := range triples {
		if !t.Valid() {
			continue
		}
		ok = true
		if t.X > maxX {
			maxX = t.X
		}
		if t.Y > maxY {
			maxY = t.Y
		}
	}
	if !ok {
		return 0, 0, false
	}
	return extent(maxX), extent(maxY), true
}

func extent(m int) int {
	if m == math.MaxInt {
		return math.MaxInt
	}
	return m + 1
}

type point struct{ x, y int }

// Render draws triples into Height rows of Width characters each. Unfilled
// positions are spaces. When two triples share a position the later one
// wins. A grid of more than MaxCells cells fails with ErrGridTooLarge.
func Render(triples []Triple) (Grid, error) {
	width, height, ok := Size(triples)
	if !ok {
		return Grid{}, ErrNothingToRender
	}
	g := Grid{Width: width, Height: height}
	if width > MaxCells/height {
		return g, fmt.Errorf("%w: %d x %d exceeds %d cells", ErrGridTooLarge, width, height, MaxCells)
	}
	if int64(width)*int64(height) > LargeGridThreshold {
		g.Advisories.LargeGrid = true
	}

	cells := make(map[point]rune, len(triples))
	for _, t := range triples {
		if !t.Valid() {
			continue
		}
		if t.X < 0 || t.Y < 0 {
			g.Advisories.OffGrid++
			continue
		}
		cells[point{t.X, t.Y}] = t.Ch
	}
	byRow := make(map[int][]point, height)
	for p, ch := range cells {
		if runewidth.RuneWidth(ch) != 1 {
			g.Advisories.WideRunes++
		}
		byRow[p.y] = append(byRow[p.y], p)
	}

	g.Rows = make([]string, height)
	row := make([]rune, width)
	for y := 0; y < height; y++ {
		for x := range row {
			row[x] = ' '
		}
		for _, p := range byRow[y] {
			row[p.x] = cells[p]
		}
		g.Rows[y] = string(row)
	}
	return g, nil
}
