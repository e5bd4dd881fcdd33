package ast

import (
	"encoding/json"
	"fmt"

	"github.com/lume-lang/lume/internal/hir"
)

// Kind-tagged JSON form of the target tree. Field order is fixed by the
// struct declarations, so encoding is deterministic. Spans are not
// serialized; decoded nodes carry zero spans.
type jsonNode struct {
	Kind      string          `json:"kind"`
	Name      string          `json:"name,omitempty"`
	Op        string          `json:"op,omitempty"`
	Module    string          `json:"module,omitempty"`
	Fun       string          `json:"fun,omitempty"`
	Code      string          `json:"code,omitempty"`
	Int       *int64          `json:"int,omitempty"`
	Float     *float64        `json:"float,omitempty"`
	Bool      *bool           `json:"bool,omitempty"`
	Inclusive bool            `json:"inclusive,omitempty"`
	Left      *jsonNode       `json:"left,omitempty"`
	Right     *jsonNode       `json:"right,omitempty"`
	Operand   *jsonNode       `json:"operand,omitempty"`
	Value     *jsonNode       `json:"value,omitempty"`
	Subject   *jsonNode       `json:"subject,omitempty"`
	Key       *jsonNode       `json:"key,omitempty"`
	Cond      *jsonNode       `json:"cond,omitempty"`
	Then      *jsonNode       `json:"then,omitempty"`
	Else      *jsonNode       `json:"else,omitempty"`
	Body      *jsonNode       `json:"body,omitempty"`
	Start     *jsonNode       `json:"start,omitempty"`
	End       *jsonNode       `json:"end,omitempty"`
	Step      *jsonNode       `json:"step,omitempty"`
	Into      *jsonNode       `json:"into,omitempty"`
	FunExpr   *jsonNode       `json:"fun_expr,omitempty"`
	AfterMs   *jsonNode       `json:"after_ms,omitempty"`
	After     *jsonNode       `json:"after,omitempty"`
	Pattern   *jsonPattern    `json:"pattern,omitempty"`
	Stmts     []*jsonNode     `json:"stmts,omitempty"`
	Args      []*jsonNode     `json:"args,omitempty"`
	Elems     []*jsonNode     `json:"elems,omitempty"`
	Filters   []*jsonNode     `json:"filters,omitempty"`
	Segments  []jsonStringSeg `json:"segments,omitempty"`
	Entries   []jsonMapEntry  `json:"entries,omitempty"`
	Fields    []jsonField     `json:"fields,omitempty"`
	Clauses   []jsonClause    `json:"clauses,omitempty"`
	WithSteps []jsonWithStep  `json:"with_steps,omitempty"`
	ElseArms  []jsonClause    `json:"else_arms,omitempty"`
	Rescue    []jsonClause    `json:"rescue,omitempty"`
	Catch     []jsonClause    `json:"catch,omitempty"`
	Gens      []jsonGenerator `json:"generators,omitempty"`
	Loop      json.RawMessage `json:"loop,omitempty"`
}

type jsonStringSeg struct {
	Text   string    `json:"text,omitempty"`
	Interp *jsonNode `json:"interp,omitempty"`
}

type jsonMapEntry struct {
	Key   *jsonNode `json:"key"`
	Value *jsonNode `json:"value"`
}

type jsonField struct {
	Name  string    `json:"name"`
	Value *jsonNode `json:"value"`
}

type jsonClause struct {
	Pattern *jsonPattern `json:"pattern"`
	Guard   *jsonNode    `json:"guard,omitempty"`
	Body    *jsonNode    `json:"body"`
	Value   *jsonNode    `json:"value,omitempty"` // with-clause right side
}

type jsonWithStep struct {
	Pattern *jsonPattern `json:"pattern"`
	Value   *jsonNode    `json:"value"`
}

type jsonGenerator struct {
	Pattern    *jsonPattern `json:"pattern"`
	Enumerable *jsonNode    `json:"enumerable"`
}

type jsonPattern struct {
	Kind     string           `json:"kind"`
	Name     string           `json:"name,omitempty"`
	Module   string           `json:"module,omitempty"`
	Value    *jsonNode        `json:"value,omitempty"`
	Inner    *jsonPattern     `json:"inner,omitempty"`
	Head     *jsonPattern     `json:"head,omitempty"`
	Tail     *jsonPattern     `json:"tail,omitempty"`
	Elems    []*jsonPattern   `json:"elems,omitempty"`
	Entries  []jsonPMapEntry  `json:"entries,omitempty"`
	Fields   []jsonPField     `json:"fields,omitempty"`
	Segments []jsonBinSegment `json:"segments,omitempty"`
}

type jsonPMapEntry struct {
	Key   *jsonNode    `json:"key"`
	Value *jsonPattern `json:"value"`
}

type jsonPField struct {
	Name  string       `json:"name"`
	Value *jsonPattern `json:"value"`
}

type jsonBinSegment struct {
	Value *jsonPattern `json:"value"`
	Size  *jsonNode    `json:"size,omitempty"`
	Type  string       `json:"type,omitempty"`
}

// EncodeJSON serializes a target tree to its kind-tagged JSON form.
func EncodeJSON(n Node) ([]byte, error) {
	jn, err := nodeToJSON(n)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(jn, "", "  ")
}

// DecodeJSON parses a kind-tagged JSON target tree.
func DecodeJSON(data []byte) (Node, error) {
	var jn jsonNode
	if err := json.Unmarshal(data, &jn); err != nil {
		return nil, fmt.Errorf("decoding target tree: %w", err)
	}
	return nodeFromJSON(&jn)
}

func nodeToJSON(n Node) (*jsonNode, error) {
	if n == nil {
		return nil, nil
	}

	child := func(c Node) *jsonNode {
		jn, _ := nodeToJSON(c)
		return jn
	}
	children := func(cs []Node) []*jsonNode {
		out := make([]*jsonNode, len(cs))
		for i, c := range cs {
			out[i] = child(c)
		}
		return out
	}
	clauses := func(cs []CaseClause) []jsonClause {
		out := make([]jsonClause, len(cs))
		for i, c := range cs {
			out[i] = jsonClause{Pattern: patternToJSON(c.Pattern), Guard: child(c.Guard), Body: child(c.Body)}
		}
		return out
	}

	switch node := n.(type) {
	case *Var:
		return &jsonNode{Kind: "var", Name: node.Name}, nil
	case *Atom:
		return &jsonNode{Kind: "atom", Name: node.Name}, nil
	case *IntLit:
		v := node.Value
		return &jsonNode{Kind: "int", Int: &v}, nil
	case *FloatLit:
		v := node.Value
		return &jsonNode{Kind: "float", Float: &v}, nil
	case *BoolLit:
		v := node.Value
		return &jsonNode{Kind: "bool", Bool: &v}, nil
	case *NilLit:
		return &jsonNode{Kind: "nil"}, nil
	case *StringLit:
		segs := make([]jsonStringSeg, len(node.Segments))
		for i, s := range node.Segments {
			segs[i] = jsonStringSeg{Text: s.Text, Interp: child(s.Interp)}
		}
		return &jsonNode{Kind: "string", Segments: segs}, nil
	case *Block:
		return &jsonNode{Kind: "block", Stmts: children(node.Stmts)}, nil
	case *BinaryOp:
		return &jsonNode{Kind: "binary_op", Op: node.Op, Left: child(node.Left), Right: child(node.Right)}, nil
	case *UnaryOp:
		return &jsonNode{Kind: "unary_op", Op: node.Op, Operand: child(node.Operand)}, nil
	case *MatchExpr:
		return &jsonNode{Kind: "match", Pattern: patternToJSON(node.Pattern), Value: child(node.Value)}, nil
	case *If:
		return &jsonNode{Kind: "if", Cond: child(node.Cond), Then: child(node.Then), Else: child(node.Else)}, nil
	case *Case:
		return &jsonNode{Kind: "case", Subject: child(node.Subject), Clauses: clauses(node.Clauses)}, nil
	case *With:
		steps := make([]jsonWithStep, len(node.Clauses))
		for i, c := range node.Clauses {
			steps[i] = jsonWithStep{Pattern: patternToJSON(c.Pattern), Value: child(c.Value)}
		}
		return &jsonNode{Kind: "with", WithSteps: steps, Body: child(node.Body), ElseArms: clauses(node.ElseClauses)}, nil
	case *For:
		gens := make([]jsonGenerator, len(node.Generators))
		for i, g := range node.Generators {
			gens[i] = jsonGenerator{Pattern: patternToJSON(g.Pattern), Enumerable: child(g.Enumerable)}
		}
		return &jsonNode{
			Kind: "for", Gens: gens, Filters: children(node.Filters),
			Into: child(node.Into), Body: child(node.Body),
		}, nil
	case *Fn:
		arms := make([]jsonClause, len(node.Clauses))
		for i, c := range node.Clauses {
			params := make([]*jsonPattern, len(c.Params))
			for j, p := range c.Params {
				params[j] = patternToJSON(p)
			}
			arms[i] = jsonClause{
				Pattern: &jsonPattern{Kind: "params", Elems: params},
				Guard:   child(c.Guard),
				Body:    child(c.Body),
			}
		}
		return &jsonNode{Kind: "fn", Clauses: arms}, nil
	case *Call:
		return &jsonNode{Kind: "call", FunExpr: child(node.Fun), Args: children(node.Args)}, nil
	case *RemoteCall:
		return &jsonNode{Kind: "remote_call", Module: node.Module, Fun: node.Fun, Args: children(node.Args)}, nil
	case *Access:
		return &jsonNode{Kind: "access", Subject: child(node.Subject), Key: child(node.Key)}, nil
	case *ListLit:
		return &jsonNode{Kind: "list", Elems: children(node.Elems)}, nil
	case *TupleLit:
		return &jsonNode{Kind: "tuple", Elems: children(node.Elems)}, nil
	case *MapLit:
		entries := make([]jsonMapEntry, len(node.Entries))
		for i, e := range node.Entries {
			entries[i] = jsonMapEntry{Key: child(e.Key), Value: child(e.Value)}
		}
		return &jsonNode{Kind: "map", Entries: entries}, nil
	case *StructLit:
		fields := make([]jsonField, len(node.Fields))
		for i, f := range node.Fields {
			fields[i] = jsonField{Name: f.Name, Value: child(f.Value)}
		}
		return &jsonNode{Kind: "struct", Module: node.Module, Fields: fields}, nil
	case *Range:
		return &jsonNode{
			Kind: "range", Inclusive: node.Inclusive,
			Start: child(node.Start), End: child(node.End), Step: child(node.Step),
		}, nil
	case *Receive:
		return &jsonNode{
			Kind: "receive", Clauses: clauses(node.Clauses),
			AfterMs: child(node.AfterMs), After: child(node.AfterBody),
		}, nil
	case *Try:
		return &jsonNode{
			Kind: "try", Body: child(node.Body),
			Rescue: clauses(node.Rescue), Catch: clauses(node.Catch), After: child(node.After),
		}, nil
	case *Raw:
		return &jsonNode{Kind: "raw", Code: node.Code}, nil
	case *PendingLoop:
		raw, err := hir.EncodeJSON(node.Loop)
		if err != nil {
			return nil, err
		}
		return &jsonNode{Kind: "pending_loop", Loop: raw}, nil
	default:
		return nil, fmt.Errorf("ast: cannot encode node %T", n)
	}
}

func nodeFromJSON(jn *jsonNode) (Node, error) {
	if jn == nil {
		return nil, nil
	}

	sub := func(c *jsonNode) (Node, error) { return nodeFromJSON(c) }
	subs := func(cs []*jsonNode) ([]Node, error) {
		out := make([]Node, len(cs))
		var err error
		for i, c := range cs {
			if out[i], err = nodeFromJSON(c); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	clauses := func(cs []jsonClause) ([]CaseClause, error) {
		out := make([]CaseClause, len(cs))
		for i, c := range cs {
			pat, err := patternFromJSON(c.Pattern)
			if err != nil {
				return nil, err
			}
			guard, err := sub(c.Guard)
			if err != nil {
				return nil, err
			}
			body, err := sub(c.Body)
			if err != nil {
				return nil, err
			}
			out[i] = CaseClause{Pattern: pat, Guard: guard, Body: body}
		}
		return out, nil
	}

	switch jn.Kind {
	case "var":
		return &Var{Name: jn.Name}, nil
	case "atom":
		return &Atom{Name: jn.Name}, nil
	case "int":
		if jn.Int == nil {
			return nil, fmt.Errorf("int literal missing value")
		}
		return &IntLit{Value: *jn.Int}, nil
	case "float":
		if jn.Float == nil {
			return nil, fmt.Errorf("float literal missing value")
		}
		return &FloatLit{Value: *jn.Float}, nil
	case "bool":
		if jn.Bool == nil {
			return nil, fmt.Errorf("bool literal missing value")
		}
		return &BoolLit{Value: *jn.Bool}, nil
	case "nil":
		return &NilLit{}, nil
	case "string":
		segs := make([]StringSeg, len(jn.Segments))
		for i, s := range jn.Segments {
			interp, err := sub(s.Interp)
			if err != nil {
				return nil, err
			}
			segs[i] = StringSeg{Text: s.Text, Interp: interp}
		}
		return &StringLit{Segments: segs}, nil
	case "block":
		stmts, err := subs(jn.Stmts)
		if err != nil {
			return nil, err
		}
		return &Block{Stmts: stmts}, nil
	case "binary_op":
		left, err := sub(jn.Left)
		if err != nil {
			return nil, err
		}
		right, err := sub(jn.Right)
		if err != nil {
			return nil, err
		}
		return &BinaryOp{Op: jn.Op, Left: left, Right: right}, nil
	case "unary_op":
		operand, err := sub(jn.Operand)
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: jn.Op, Operand: operand}, nil
	case "match":
		pat, err := patternFromJSON(jn.Pattern)
		if err != nil {
			return nil, err
		}
		value, err := sub(jn.Value)
		if err != nil {
			return nil, err
		}
		return &MatchExpr{Pattern: pat, Value: value}, nil
	case "if":
		cond, err := sub(jn.Cond)
		if err != nil {
			return nil, err
		}
		then, err := sub(jn.Then)
		if err != nil {
			return nil, err
		}
		els, err := sub(jn.Else)
		if err != nil {
			return nil, err
		}
		return &If{Cond: cond, Then: then, Else: els}, nil
	case "case":
		subject, err := sub(jn.Subject)
		if err != nil {
			return nil, err
		}
		cs, err := clauses(jn.Clauses)
		if err != nil {
			return nil, err
		}
		return &Case{Subject: subject, Clauses: cs}, nil
	case "with":
		steps := make([]WithClause, len(jn.WithSteps))
		for i, s := range jn.WithSteps {
			pat, err := patternFromJSON(s.Pattern)
			if err != nil {
				return nil, err
			}
			value, err := sub(s.Value)
			if err != nil {
				return nil, err
			}
			steps[i] = WithClause{Pattern: pat, Value: value}
		}
		body, err := sub(jn.Body)
		if err != nil {
			return nil, err
		}
		elseArms, err := clauses(jn.ElseArms)
		if err != nil {
			return nil, err
		}
		return &With{Clauses: steps, Body: body, ElseClauses: elseArms}, nil
	case "for":
		gens := make([]Generator, len(jn.Gens))
		for i, g := range jn.Gens {
			pat, err := patternFromJSON(g.Pattern)
			if err != nil {
				return nil, err
			}
			enum, err := sub(g.Enumerable)
			if err != nil {
				return nil, err
			}
			gens[i] = Generator{Pattern: pat, Enumerable: enum}
		}
		filters, err := subs(jn.Filters)
		if err != nil {
			return nil, err
		}
		into, err := sub(jn.Into)
		if err != nil {
			return nil, err
		}
		body, err := sub(jn.Body)
		if err != nil {
			return nil, err
		}
		return &For{Generators: gens, Filters: filters, Into: into, Body: body}, nil
	case "fn":
		arms := make([]FnClause, len(jn.Clauses))
		for i, c := range jn.Clauses {
			if c.Pattern == nil || c.Pattern.Kind != "params" {
				return nil, fmt.Errorf("fn clause missing params")
			}
			params := make([]Pattern, len(c.Pattern.Elems))
			var err error
			for j, p := range c.Pattern.Elems {
				if params[j], err = patternFromJSON(p); err != nil {
					return nil, err
				}
			}
			guard, err := sub(c.Guard)
			if err != nil {
				return nil, err
			}
			body, err := sub(c.Body)
			if err != nil {
				return nil, err
			}
			arms[i] = FnClause{Params: params, Guard: guard, Body: body}
		}
		return &Fn{Clauses: arms}, nil
	case "call":
		fun, err := sub(jn.FunExpr)
		if err != nil {
			return nil, err
		}
		args, err := subs(jn.Args)
		if err != nil {
			return nil, err
		}
		return &Call{Fun: fun, Args: args}, nil
	case "remote_call":
		args, err := subs(jn.Args)
		if err != nil {
			return nil, err
		}
		return &RemoteCall{Module: jn.Module, Fun: jn.Fun, Args: args}, nil
	case "access":
		subject, err := sub(jn.Subject)
		if err != nil {
			return nil, err
		}
		key, err := sub(jn.Key)
		if err != nil {
			return nil, err
		}
		return &Access{Subject: subject, Key: key}, nil
	case "list":
		elems, err := subs(jn.Elems)
		if err != nil {
			return nil, err
		}
		return &ListLit{Elems: elems}, nil
	case "tuple":
		elems, err := subs(jn.Elems)
		if err != nil {
			return nil, err
		}
		return &TupleLit{Elems: elems}, nil
	case "map":
		entries := make([]MapEntry, len(jn.Entries))
		for i, e := range jn.Entries {
			key, err := sub(e.Key)
			if err != nil {
				return nil, err
			}
			value, err := sub(e.Value)
			if err != nil {
				return nil, err
			}
			entries[i] = MapEntry{Key: key, Value: value}
		}
		return &MapLit{Entries: entries}, nil
	case "struct":
		fields := make([]StructField, len(jn.Fields))
		for i, f := range jn.Fields {
			value, err := sub(f.Value)
			if err != nil {
				return nil, err
			}
			fields[i] = StructField{Name: f.Name, Value: value}
		}
		return &StructLit{Module: jn.Module, Fields: fields}, nil
	case "range":
		start, err := sub(jn.Start)
		if err != nil {
			return nil, err
		}
		end, err := sub(jn.End)
		if err != nil {
			return nil, err
		}
		step, err := sub(jn.Step)
		if err != nil {
			return nil, err
		}
		return &Range{Start: start, End: end, Step: step, Inclusive: jn.Inclusive}, nil
	case "receive":
		cs, err := clauses(jn.Clauses)
		if err != nil {
			return nil, err
		}
		afterMs, err := sub(jn.AfterMs)
		if err != nil {
			return nil, err
		}
		afterBody, err := sub(jn.After)
		if err != nil {
			return nil, err
		}
		return &Receive{Clauses: cs, AfterMs: afterMs, AfterBody: afterBody}, nil
	case "try":
		body, err := sub(jn.Body)
		if err != nil {
			return nil, err
		}
		rescue, err := clauses(jn.Rescue)
		if err != nil {
			return nil, err
		}
		catch, err := clauses(jn.Catch)
		if err != nil {
			return nil, err
		}
		after, err := sub(jn.After)
		if err != nil {
			return nil, err
		}
		return &Try{Body: body, Rescue: rescue, Catch: catch, After: after}, nil
	case "raw":
		return &Raw{Code: jn.Code}, nil
	case "pending_loop":
		loop, err := hir.DecodeJSON(jn.Loop)
		if err != nil {
			return nil, err
		}
		return &PendingLoop{Loop: loop}, nil
	default:
		return nil, fmt.Errorf("unknown target node kind %q", jn.Kind)
	}
}

func patternToJSON(p Pattern) *jsonPattern {
	if p == nil {
		return nil
	}

	child := func(n Node) *jsonNode {
		jn, _ := nodeToJSON(n)
		return jn
	}

	switch pat := p.(type) {
	case *PWildcard:
		return &jsonPattern{Kind: "wildcard"}
	case *PVar:
		return &jsonPattern{Kind: "var", Name: pat.Name}
	case *PLiteral:
		return &jsonPattern{Kind: "literal", Value: child(pat.Value)}
	case *PTuple:
		elems := make([]*jsonPattern, len(pat.Elems))
		for i, e := range pat.Elems {
			elems[i] = patternToJSON(e)
		}
		return &jsonPattern{Kind: "tuple", Elems: elems}
	case *PList:
		elems := make([]*jsonPattern, len(pat.Elems))
		for i, e := range pat.Elems {
			elems[i] = patternToJSON(e)
		}
		return &jsonPattern{Kind: "list", Elems: elems}
	case *PCons:
		return &jsonPattern{Kind: "cons", Head: patternToJSON(pat.Head), Tail: patternToJSON(pat.Tail)}
	case *PMap:
		entries := make([]jsonPMapEntry, len(pat.Entries))
		for i, e := range pat.Entries {
			entries[i] = jsonPMapEntry{Key: child(e.Key), Value: patternToJSON(e.Value)}
		}
		return &jsonPattern{Kind: "map", Entries: entries}
	case *PStruct:
		fields := make([]jsonPField, len(pat.Fields))
		for i, f := range pat.Fields {
			fields[i] = jsonPField{Name: f.Name, Value: patternToJSON(f.Value)}
		}
		return &jsonPattern{Kind: "struct", Module: pat.Module, Fields: fields}
	case *Pin:
		return &jsonPattern{Kind: "pin", Name: pat.Name}
	case *PAlias:
		return &jsonPattern{Kind: "alias", Name: pat.Name, Inner: patternToJSON(pat.Pattern)}
	case *PBinary:
		segs := make([]jsonBinSegment, len(pat.Segments))
		for i, s := range pat.Segments {
			segs[i] = jsonBinSegment{Value: patternToJSON(s.Value), Size: child(s.Size), Type: s.Type}
		}
		return &jsonPattern{Kind: "binary", Segments: segs}
	default:
		return &jsonPattern{Kind: "unknown"}
	}
}

func patternFromJSON(jp *jsonPattern) (Pattern, error) {
	if jp == nil {
		return nil, nil
	}

	switch jp.Kind {
	case "wildcard":
		return &PWildcard{}, nil
	case "var":
		return &PVar{Name: jp.Name}, nil
	case "literal":
		value, err := nodeFromJSON(jp.Value)
		if err != nil {
			return nil, err
		}
		return &PLiteral{Value: value}, nil
	case "tuple", "list":
		elems := make([]Pattern, len(jp.Elems))
		var err error
		for i, e := range jp.Elems {
			if elems[i], err = patternFromJSON(e); err != nil {
				return nil, err
			}
		}
		if jp.Kind == "tuple" {
			return &PTuple{Elems: elems}, nil
		}
		return &PList{Elems: elems}, nil
	case "cons":
		head, err := patternFromJSON(jp.Head)
		if err != nil {
			return nil, err
		}
		tail, err := patternFromJSON(jp.Tail)
		if err != nil {
			return nil, err
		}
		return &PCons{Head: head, Tail: tail}, nil
	case "map":
		entries := make([]PMapEntry, len(jp.Entries))
		for i, e := range jp.Entries {
			key, err := nodeFromJSON(e.Key)
			if err != nil {
				return nil, err
			}
			value, err := patternFromJSON(e.Value)
			if err != nil {
				return nil, err
			}
			entries[i] = PMapEntry{Key: key, Value: value}
		}
		return &PMap{Entries: entries}, nil
	case "struct":
		fields := make([]PStructField, len(jp.Fields))
		for i, f := range jp.Fields {
			value, err := patternFromJSON(f.Value)
			if err != nil {
				return nil, err
			}
			fields[i] = PStructField{Name: f.Name, Value: value}
		}
		return &PStruct{Module: jp.Module, Fields: fields}, nil
	case "pin":
		return &Pin{Name: jp.Name}, nil
	case "alias":
		inner, err := patternFromJSON(jp.Inner)
		if err != nil {
			return nil, err
		}
		return &PAlias{Name: jp.Name, Pattern: inner}, nil
	case "binary":
		segs := make([]BinSegment, len(jp.Segments))
		for i, s := range jp.Segments {
			value, err := patternFromJSON(s.Value)
			if err != nil {
				return nil, err
			}
			size, err := nodeFromJSON(s.Size)
			if err != nil {
				return nil, err
			}
			segs[i] = BinSegment{Value: value, Size: size, Type: s.Type}
		}
		return &PBinary{Segments: segs}, nil
	default:
		return nil, fmt.Errorf("unknown pattern kind %q", jp.Kind)
	}
}
