package position

import "testing"

func pos(line, col, off int) Position {
	return Position{Filename: "main.lm", Line: line, Column: col, Offset: off}
}

func TestPositionValidity(t *testing.T) {
	if (Position{}).IsValid() {
		t.Error("zero position should be invalid")
	}
	if !pos(1, 1, 0).IsValid() {
		t.Error("1:1 should be valid")
	}
}

func TestPositionOrdering(t *testing.T) {
	a := pos(1, 1, 0)
	b := pos(2, 1, 10)

	if !a.Before(b) {
		t.Error("a should come before b")
	}
	if !b.After(a) {
		t.Error("b should come after a")
	}
	if a.Before(a) {
		t.Error("a position is not before itself")
	}
}

func TestSpanString(t *testing.T) {
	s := Span{Start: pos(3, 5, 20), End: pos(3, 9, 24)}
	if got, want := s.String(), "main.lm:3:5-9"; got != want {
		t.Errorf("span string = %q, want %q", got, want)
	}

	multi := Span{Start: pos(3, 5, 20), End: pos(4, 2, 30)}
	if got, want := multi.String(), "main.lm:3:5-4:2"; got != want {
		t.Errorf("span string = %q, want %q", got, want)
	}
}

func TestSpanUnion(t *testing.T) {
	a := Span{Start: pos(1, 1, 0), End: pos(1, 5, 4)}
	b := Span{Start: pos(2, 1, 10), End: pos(2, 8, 17)}

	u := a.Union(b)
	if u.Start != a.Start || u.End != b.End {
		t.Errorf("union = %v, want start of a and end of b", u)
	}

	// Union with an invalid span returns the valid one.
	if got := a.Union(Span{}); got != a {
		t.Errorf("union with zero span = %v, want %v", got, a)
	}

	if got, want := u.Length(), 17; got != want {
		t.Errorf("length = %d, want %d", got, want)
	}
}
