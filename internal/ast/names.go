package ast

import "fmt"

// PatternNames returns the names a pattern binds, in left-to-right order.
// Pins are excluded: a pin refers to an existing binding.
func PatternNames(p Pattern) []string {
	var names []string
	collectPatternNames(p, &names)
	return names
}

func collectPatternNames(p Pattern, names *[]string) {
	if p == nil {
		return
	}

	switch pat := p.(type) {
	case *PWildcard, *Pin, *PLiteral:
	case *PVar:
		*names = append(*names, pat.Name)
	case *PTuple:
		for _, e := range pat.Elems {
			collectPatternNames(e, names)
		}
	case *PList:
		for _, e := range pat.Elems {
			collectPatternNames(e, names)
		}
	case *PCons:
		collectPatternNames(pat.Head, names)
		collectPatternNames(pat.Tail, names)
	case *PMap:
		for _, e := range pat.Entries {
			collectPatternNames(e.Value, names)
		}
	case *PStruct:
		for _, f := range pat.Fields {
			collectPatternNames(f.Value, names)
		}
	case *PAlias:
		*names = append(*names, pat.Name)
		collectPatternNames(pat.Pattern, names)
	case *PBinary:
		for _, s := range pat.Segments {
			collectPatternNames(s.Value, names)
		}
	default:
		panic(fmt.Sprintf("ast.PatternNames: unhandled pattern %T", p))
	}
}

// PatternUses returns the names a pattern uses rather than binds: pinned
// references, plus variables referenced from embedded expression positions
// (literal values, map keys, binary size specifiers).
func PatternUses(p Pattern) []string {
	var names []string
	collectPatternUses(p, &names)
	return names
}

func collectPatternUses(p Pattern, names *[]string) {
	if p == nil {
		return
	}

	exprUses := func(n Node) {
		Walk(n, func(child Node) bool {
			if v, ok := child.(*Var); ok {
				*names = append(*names, v.Name)
			}
			return true
		})
	}

	switch pat := p.(type) {
	case *PWildcard, *PVar:
	case *Pin:
		*names = append(*names, pat.Name)
	case *PLiteral:
		exprUses(pat.Value)
	case *PTuple:
		for _, e := range pat.Elems {
			collectPatternUses(e, names)
		}
	case *PList:
		for _, e := range pat.Elems {
			collectPatternUses(e, names)
		}
	case *PCons:
		collectPatternUses(pat.Head, names)
		collectPatternUses(pat.Tail, names)
	case *PMap:
		for _, e := range pat.Entries {
			exprUses(e.Key)
			collectPatternUses(e.Value, names)
		}
	case *PStruct:
		for _, f := range pat.Fields {
			collectPatternUses(f.Value, names)
		}
	case *PAlias:
		collectPatternUses(pat.Pattern, names)
	case *PBinary:
		for _, s := range pat.Segments {
			collectPatternUses(s.Value, names)
			if s.Size != nil {
				exprUses(s.Size)
			}
		}
	default:
		panic(fmt.Sprintf("ast.PatternUses: unhandled pattern %T", p))
	}
}
