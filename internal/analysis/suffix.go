package analysis

import "github.com/lume-lang/lume/internal/ast"

// SuffixIndex answers "is this name used at or after statement i" in O(1)
// for a fixed statement list. Hygiene passes scanning a block left to right
// ask that question for every binder; without the index each answer costs a
// scan of the remaining statements and the block goes quadratic.
//
// The index is a point-in-time snapshot: rebuild it after mutating the
// statement list.
type SuffixIndex struct {
	// suffix[i] holds every name referenced at or after statement i;
	// suffix[len] is empty, and suffix[i] ⊇ suffix[i+1].
	suffix []map[string]struct{}
	fuzzy  bool
}

// BuildSuffixIndex builds the index in one backward pass. Queries use
// fuzzy-variant semantics: UsedLater("items") also reports true when only
// `_items` or `Items` appears later.
func BuildSuffixIndex(stmts []ast.Node) *SuffixIndex {
	ix := build(stmts)
	ix.fuzzy = true
	return ix
}

// BuildExactSuffixIndex builds the verbatim-name variant of the index.
func BuildExactSuffixIndex(stmts []ast.Node) *SuffixIndex {
	return build(stmts)
}

func build(stmts []ast.Node) *SuffixIndex {
	suffix := make([]map[string]struct{}, len(stmts)+1)
	suffix[len(stmts)] = map[string]struct{}{}

	for i := len(stmts) - 1; i >= 0; i-- {
		set := make(map[string]struct{}, len(suffix[i+1]))
		for name := range suffix[i+1] {
			set[name] = struct{}{}
		}

		v := usageVisitor{emit: func(name string) bool {
			set[name] = struct{}{}
			return false
		}}
		v.node(stmts[i], nil)

		suffix[i] = set
	}

	return &SuffixIndex{suffix: suffix}
}

// UsedLater reports whether name is referenced at or after statement start.
// start at or past the end of the list is never a use; a negative start is
// treated as the beginning of the list.
func (ix *SuffixIndex) UsedLater(start int, name string) bool {
	if name == "" || start >= len(ix.suffix)-1 {
		return false
	}
	if start < 0 {
		start = 0
	}

	set := ix.suffix[start]
	if !ix.fuzzy {
		_, ok := set[name]
		return ok
	}
	for _, variant := range Variants(name) {
		if _, ok := set[variant]; ok {
			return true
		}
	}
	return false
}

// Len returns the number of indexed statements.
func (ix *SuffixIndex) Len() int {
	return len(ix.suffix) - 1
}
