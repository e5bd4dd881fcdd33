package ast

import (
	"bytes"
	"testing"
)

func TestJSONRoundTrip(t *testing.T) {
	tree := &Block{Stmts: []Node{
		&MatchExpr{
			Pattern: &PTuple{Elems: []Pattern{
				&PLiteral{Value: &Atom{Name: "ok"}},
				&PVar{Name: "user"},
			}},
			Value: &RemoteCall{Module: "Repo", Fun: "fetch", Args: []Node{&Var{Name: "id"}}},
		},
		&Case{
			Subject: &Var{Name: "user"},
			Clauses: []CaseClause{
				{
					Pattern: &PStruct{Module: "User", Fields: []PStructField{{Name: "name", Value: &PVar{Name: "n"}}}},
					Guard:   &BinaryOp{Op: "!=", Left: &Var{Name: "n"}, Right: &NilLit{}},
					Body: &StringLit{Segments: []StringSeg{
						{Text: "hello "},
						{Interp: &Var{Name: "n"}},
					}},
				},
				{Pattern: &PWildcard{}, Body: &Atom{Name: "anonymous"}},
			},
		},
	}}

	data, err := EncodeJSON(tree)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	back, err := DecodeJSON(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !Equal(tree, back) {
		t.Errorf("round trip changed the tree:\n in: %s\nout: %s", tree.String(), back.String())
	}

	// Deterministic encoding: same tree, same bytes.
	again, err := EncodeJSON(tree)
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Error("encoding the same tree twice produced different bytes")
	}
}

func TestDecodeRejectsUnknownKind(t *testing.T) {
	if _, err := DecodeJSON([]byte(`{"kind":"quantum"}`)); err == nil {
		t.Error("decoding an unknown kind should fail")
	}
}
