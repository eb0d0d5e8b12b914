package table

import (
	"reflect"
	"strings"
	"testing"
)

const navTable = `<table class="nav"><tr><td>Home</td><td>About</td></tr></table>`

const gridTable = `<table>
  <tr><td><p><span>x-coordinate</span></p></td><td><p>Character</p></td><td><p>y-coordinate</p></td></tr>
  <tr><td>0</td><td>H</td><td>0</td></tr>
  <tr><td>1</td><td>I</td><td>0</td></tr>
</table>`

func TestFragments_DocumentOrder(t *testing.T) {
	doc := "<html><body>" + navTable + "<p>between</p>" + gridTable + "</body></html>"
	got := Fragments(doc)
	if len(got) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(got))
	}
	if got[0] != navTable || got[1] != gridTable {
		t.Fatalf("fragments are not exact substrings: %q", got)
	}
}

func TestFragments_NestedBelongsToParent(t *testing.T) {
	doc := `<table><tr><td><table><tr><td>in</td></tr></table></td></tr></table><table></table>`
	got := Fragments(doc)
	if len(got) != 2 {
		t.Fatalf("expected 2 outer tables, got %d: %q", len(got), got)
	}
	if !strings.Contains(got[0], "in") {
		t.Fatalf("nested table missing from parent fragment: %q", got[0])
	}
}

func TestFragments_UnclosedRunsToEnd(t *testing.T) {
	doc := `<p>x</p><table><tr><td>1</td>`
	got := Fragments(doc)
	if len(got) != 1 || got[0] != `<table><tr><td>1</td>` {
		t.Fatalf("unexpected fragments: %q", got)
	}
}

func TestFragments_IgnoresTablesInScript(t *testing.T) {
	doc := `<script>document.write("<table></table>")</script>`
	if got := Fragments(doc); len(got) != 0 {
		t.Fatalf("expected no tables, got %q", got)
	}
}

func TestLocate_PrefersHeaderMatch(t *testing.T) {
	doc := navTable + gridTable
	loc, ok := Locator{HeaderTokens: DefaultHeaderTokens}.Locate(doc)
	if !ok {
		t.Fatalf("expected a table")
	}
	if !loc.HeaderMatched || loc.Index != 1 || loc.Fragment != gridTable {
		t.Fatalf("unexpected location: %+v", loc)
	}
}

func TestLocate_FallsBackToFirst(t *testing.T) {
	doc := navTable + `<table><tr><td>0</td></tr></table>`
	loc, ok := Locator{HeaderTokens: DefaultHeaderTokens}.Locate(doc)
	if !ok {
		t.Fatalf("expected a table")
	}
	if loc.HeaderMatched || loc.Index != 0 || loc.Fragment != navTable {
		t.Fatalf("unexpected location: %+v", loc)
	}
}

func TestLocate_NoTable(t *testing.T) {
	if _, ok := (Locator{HeaderTokens: DefaultHeaderTokens}).Locate("<p>nothing here</p>"); ok {
		t.Fatalf("expected not found")
	}
}

func TestLocate_HeaderSplitAcrossTags(t *testing.T) {
	doc := `<table><tr><th>X-<b>Coordinate</b></th><th>CHARACTER</th><th>y-coordinate</th></tr></table>`
	loc, ok := Locator{HeaderTokens: DefaultHeaderTokens}.Locate(doc)
	if !ok || !loc.HeaderMatched {
		t.Fatalf("expected header match, got %+v ok=%v", loc, ok)
	}
}

func TestCells_DocumentOrder(t *testing.T) {
	got := Cells(gridTable)
	want := []string{"x-coordinate", "Character", "y-coordinate", "0", "H", "0", "1", "I", "0"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCells_KeepsEmptyAndDecodes(t *testing.T) {
	frag := `<table><tr><th></th><td>&amp;</td><td> &#x2588; </td></tr></table>`
	got := Cells(frag)
	want := []string{"", "&", "█"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCells_ImplicitClose(t *testing.T) {
	frag := `<table><tr><td>1<td>A<td>2<tr><td>3<td>B<td>4</table>`
	got := Cells(frag)
	want := []string{"1", "A", "2", "3", "B", "4"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCells_NestedTableFolded(t *testing.T) {
	frag := `<table><tr><td>a<table><tr><td>b</td><td>c</td></tr></table></td><td>d</td></tr></table>`
	got := Cells(frag)
	want := []string{"abc", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCells_Empty(t *testing.T) {
	if got := Cells(""); len(got) != 0 {
		t.Fatalf("expected no cells, got %q", got)
	}
}
