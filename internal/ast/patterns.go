package ast

import (
	"fmt"
	"strings"

	"github.com/lume-lang/lume/internal/position"
)

// Pattern is the base interface for match/bind-position nodes. Patterns are
// a closed sum separate from expressions: a PVar binds a name, a Pin uses
// one, and embedded expressions (literal values, map keys, binary sizes)
// are ordinary uses.
type Pattern interface {
	GetSpan() position.Span
	String() string
	patternNode()
}

// PWildcard matches anything and binds nothing.
type PWildcard struct {
	Span position.Span
}

// PVar binds Name to the matched value.
type PVar struct {
	Span position.Span
	Name string
}

// PLiteral matches a literal value. Value is expression position.
type PLiteral struct {
	Span  position.Span
	Value Node
}

// PTuple matches a tuple element-wise.
type PTuple struct {
	Span  position.Span
	Elems []Pattern
}

// PList matches a list of exactly len(Elems) elements.
type PList struct {
	Span  position.Span
	Elems []Pattern
}

// PCons matches `[head | tail]`.
type PCons struct {
	Span position.Span
	Head Pattern
	Tail Pattern
}

// PMapEntry matches one map entry; the key is expression position, the
// value is a pattern.
type PMapEntry struct {
	Key   Node
	Value Pattern
}

// PMap matches a (sub)map.
type PMap struct {
	Span    position.Span
	Entries []PMapEntry
}

// PStructField matches one named struct field.
type PStructField struct {
	Name  string
	Value Pattern
}

// PStruct matches `%Module{field: pattern}`.
type PStruct struct {
	Span   position.Span
	Module string
	Fields []PStructField
}

// Pin is `^name`: a pattern-position occurrence that refers to an existing
// binding. It is a use of Name, not a new binding.
type Pin struct {
	Span position.Span
	Name string
}

// PAlias binds Name while also matching Pattern (`name = pattern`).
type PAlias struct {
	Span    position.Span
	Name    string
	Pattern Pattern
}

// BinSegment is one segment of a binary pattern. Size and the Type
// specifier's arguments are expression position (uses); Value binds.
type BinSegment struct {
	Value Pattern
	Size  Node
	Type  string
}

// PBinary matches a binary/bitstring segment-wise.
type PBinary struct {
	Span     position.Span
	Segments []BinSegment
}

func (p *PWildcard) patternNode() {}
func (p *PVar) patternNode()      {}
func (p *PLiteral) patternNode()  {}
func (p *PTuple) patternNode()    {}
func (p *PList) patternNode()     {}
func (p *PCons) patternNode()     {}
func (p *PMap) patternNode()      {}
func (p *PStruct) patternNode()   {}
func (p *Pin) patternNode()       {}
func (p *PAlias) patternNode()    {}
func (p *PBinary) patternNode()   {}

func (p *PWildcard) GetSpan() position.Span { return p.Span }
func (p *PVar) GetSpan() position.Span      { return p.Span }
func (p *PLiteral) GetSpan() position.Span  { return p.Span }
func (p *PTuple) GetSpan() position.Span    { return p.Span }
func (p *PList) GetSpan() position.Span     { return p.Span }
func (p *PCons) GetSpan() position.Span     { return p.Span }
func (p *PMap) GetSpan() position.Span      { return p.Span }
func (p *PStruct) GetSpan() position.Span   { return p.Span }
func (p *Pin) GetSpan() position.Span       { return p.Span }
func (p *PAlias) GetSpan() position.Span    { return p.Span }
func (p *PBinary) GetSpan() position.Span   { return p.Span }

func (p *PWildcard) String() string { return "_" }
func (p *PVar) String() string      { return p.Name }
func (p *PLiteral) String() string  { return p.Value.String() }
func (p *PTuple) String() string {
	elems := make([]string, len(p.Elems))
	for i, e := range p.Elems {
		elems[i] = e.String()
	}
	return "{" + strings.Join(elems, ", ") + "}"
}
func (p *PList) String() string {
	elems := make([]string, len(p.Elems))
	for i, e := range p.Elems {
		elems[i] = e.String()
	}
	return "[" + strings.Join(elems, ", ") + "]"
}
func (p *PCons) String() string {
	return fmt.Sprintf("[%s | %s]", p.Head.String(), p.Tail.String())
}
func (p *PMap) String() string {
	entries := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		entries[i] = fmt.Sprintf("%s => %s", e.Key.String(), e.Value.String())
	}
	return "%{" + strings.Join(entries, ", ") + "}"
}
func (p *PStruct) String() string {
	fields := make([]string, len(p.Fields))
	for i, f := range p.Fields {
		fields[i] = fmt.Sprintf("%s: %s", f.Name, f.Value.String())
	}
	return fmt.Sprintf("%%%s{%s}", p.Module, strings.Join(fields, ", "))
}
func (p *Pin) String() string { return "^" + p.Name }
func (p *PAlias) String() string {
	return fmt.Sprintf("%s = %s", p.Name, p.Pattern.String())
}
func (p *PBinary) String() string {
	segs := make([]string, len(p.Segments))
	for i, s := range p.Segments {
		seg := s.Value.String()
		if s.Size != nil {
			seg += "::size(" + s.Size.String() + ")"
		}
		if s.Type != "" {
			seg += "::" + s.Type
		}
		segs[i] = seg
	}
	return "<<" + strings.Join(segs, ", ") + ">>"
}
