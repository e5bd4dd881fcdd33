package analysis

import (
	"testing"

	"github.com/lume-lang/lume/internal/ast"
)

func suffixStmts() []ast.Node {
	// total = 0
	// items = load()
	// total = Enum.sum(items)
	// IO.puts("#{total}")
	// _leftover = items
	return []ast.Node{
		&ast.MatchExpr{Pattern: &ast.PVar{Name: "total"}, Value: &ast.IntLit{Value: 0}},
		&ast.MatchExpr{Pattern: &ast.PVar{Name: "items"}, Value: &ast.RemoteCall{Module: "Store", Fun: "load"}},
		&ast.MatchExpr{
			Pattern: &ast.PVar{Name: "total"},
			Value:   &ast.RemoteCall{Module: "Enum", Fun: "sum", Args: []ast.Node{&ast.Var{Name: "items"}}},
		},
		&ast.RemoteCall{Module: "IO", Fun: "puts", Args: []ast.Node{
			&ast.StringLit{Segments: []ast.StringSeg{{Interp: &ast.Var{Name: "total"}}}},
		}},
		&ast.MatchExpr{Pattern: &ast.PVar{Name: "_leftover"}, Value: &ast.Var{Name: "items"}},
	}
}

// bruteForceUsedLater is the obviously-correct definition the index must
// agree with: scan every statement from start on with the per-node oracle.
func bruteForceUsedLater(stmts []ast.Node, start int, name string, fuzzy bool) bool {
	if start < 0 {
		start = 0
	}
	for i := start; i < len(stmts); i++ {
		if fuzzy {
			if UsesFuzzy(stmts[i], name) {
				return true
			}
		} else if Uses(stmts[i], name) {
			return true
		}
	}
	return false
}

func TestSuffixIndexMatchesBruteForce(t *testing.T) {
	stmts := suffixStmts()
	names := []string{"total", "items", "leftover", "_leftover", "Enum", "sum", "ghost", "tot"}

	exact := BuildExactSuffixIndex(stmts)
	fuzzy := BuildSuffixIndex(stmts)

	for start := -1; start <= len(stmts)+1; start++ {
		for _, name := range names {
			if got, want := exact.UsedLater(start, name), bruteForceUsedLater(stmts, start, name, false); got != want {
				t.Errorf("exact UsedLater(%d, %q) = %v, brute force says %v", start, name, got, want)
			}
			if got, want := fuzzy.UsedLater(start, name), bruteForceUsedLater(stmts, start, name, true); got != want {
				t.Errorf("fuzzy UsedLater(%d, %q) = %v, brute force says %v", start, name, got, want)
			}
		}
	}
}

func TestSuffixIndexBindersAreNotUses(t *testing.T) {
	stmts := suffixStmts()
	ix := BuildExactSuffixIndex(stmts)

	// Statement 2 rebinds total; the next use is the interpolation in
	// statement 3. Asking from 4 must not see the binder at 2.
	if !ix.UsedLater(3, "total") {
		t.Error("total is interpolated at statement 3")
	}
	if ix.UsedLater(4, "total") {
		t.Error("no reference to total at or after statement 4")
	}

	// items is read at 2 and 4 but never after.
	if !ix.UsedLater(4, "items") {
		t.Error("items is read at statement 4")
	}
	if ix.UsedLater(5, "items") {
		t.Error("index past the end must report no uses")
	}
}

func TestSuffixIndexFuzzyCrossesHygieneRenames(t *testing.T) {
	stmts := []ast.Node{
		&ast.MatchExpr{Pattern: &ast.PVar{Name: "user_name"}, Value: &ast.RemoteCall{Module: "Auth", Fun: "who"}},
		&ast.Var{Name: "_userName"},
	}

	exact := BuildExactSuffixIndex(stmts)
	fuzzy := BuildSuffixIndex(stmts)

	if exact.UsedLater(1, "user_name") {
		t.Error("exact index must not match a re-cased variant")
	}
	if !fuzzy.UsedLater(1, "user_name") {
		t.Error("fuzzy index must match `_userName` when asked about `user_name`")
	}
}

func TestSuffixIndexBounds(t *testing.T) {
	ix := BuildSuffixIndex(nil)
	if ix.Len() != 0 {
		t.Errorf("Len() = %d, want 0", ix.Len())
	}
	if ix.UsedLater(0, "x") {
		t.Error("empty index reports no uses")
	}

	ix = BuildSuffixIndex([]ast.Node{&ast.Var{Name: "x"}})
	if ix.Len() != 1 {
		t.Errorf("Len() = %d, want 1", ix.Len())
	}
	if !ix.UsedLater(-3, "x") {
		t.Error("negative start clamps to the beginning of the list")
	}
	if ix.UsedLater(1, "x") {
		t.Error("start at the end of the list is past every statement")
	}
}
