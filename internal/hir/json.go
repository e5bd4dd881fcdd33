package hir

import (
	"encoding/json"
	"fmt"
)

// Kind-tagged JSON form of the input tree, used by tooling to load trees
// from disk. Spans are not serialized; decoded nodes carry zero spans.
type jsonExpr struct {
	Kind      string      `json:"kind"`
	Name      string      `json:"name,omitempty"`
	Op        string      `json:"op,omitempty"`
	Method    string      `json:"method,omitempty"`
	Var       string      `json:"var,omitempty"`
	Int       *int64      `json:"int,omitempty"`
	Float     *float64    `json:"float,omitempty"`
	Bool      *bool       `json:"bool,omitempty"`
	Str       *string     `json:"str,omitempty"`
	Inclusive bool        `json:"inclusive,omitempty"`
	Left      *jsonExpr   `json:"left,omitempty"`
	Right     *jsonExpr   `json:"right,omitempty"`
	Operand   *jsonExpr   `json:"operand,omitempty"`
	Target    *jsonExpr   `json:"target,omitempty"`
	Value     *jsonExpr   `json:"value,omitempty"`
	Recv      *jsonExpr   `json:"recv,omitempty"`
	Subject   *jsonExpr   `json:"subject,omitempty"`
	Key       *jsonExpr   `json:"key,omitempty"`
	Cond      *jsonExpr   `json:"cond,omitempty"`
	Then      *jsonExpr   `json:"then,omitempty"`
	Else      *jsonExpr   `json:"else,omitempty"`
	Body      *jsonExpr   `json:"body,omitempty"`
	Start     *jsonExpr   `json:"start,omitempty"`
	End       *jsonExpr   `json:"end,omitempty"`
	Step      *jsonExpr   `json:"step,omitempty"`
	Seq       *jsonExpr   `json:"seq,omitempty"`
	Args      []*jsonExpr `json:"args,omitempty"`
	Stmts     []*jsonExpr `json:"stmts,omitempty"`
}

// EncodeJSON serializes an input tree to its kind-tagged JSON form.
func EncodeJSON(e Expr) ([]byte, error) {
	return json.MarshalIndent(toJSON(e), "", "  ")
}

// DecodeJSON parses a kind-tagged JSON input tree.
func DecodeJSON(data []byte) (Expr, error) {
	var je jsonExpr
	if err := json.Unmarshal(data, &je); err != nil {
		return nil, fmt.Errorf("decoding input tree: %w", err)
	}
	return fromJSON(&je)
}

func toJSON(e Expr) *jsonExpr {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *Ident:
		return &jsonExpr{Kind: "ident", Name: n.Name}
	case *IntLit:
		v := n.Value
		return &jsonExpr{Kind: "int", Int: &v}
	case *FloatLit:
		v := n.Value
		return &jsonExpr{Kind: "float", Float: &v}
	case *BoolLit:
		v := n.Value
		return &jsonExpr{Kind: "bool", Bool: &v}
	case *StringLit:
		v := n.Value
		return &jsonExpr{Kind: "string", Str: &v}
	case *Binary:
		return &jsonExpr{Kind: "binary", Op: n.Op, Left: toJSON(n.Left), Right: toJSON(n.Right)}
	case *Unary:
		return &jsonExpr{Kind: "unary", Op: n.Op, Operand: toJSON(n.Operand)}
	case *Assign:
		return &jsonExpr{Kind: "assign", Op: n.Op, Target: toJSON(n.Target), Value: toJSON(n.Value)}
	case *Call:
		args := make([]*jsonExpr, len(n.Args))
		for i, a := range n.Args {
			args[i] = toJSON(a)
		}
		return &jsonExpr{Kind: "call", Method: n.Method, Recv: toJSON(n.Recv), Args: args}
	case *Index:
		return &jsonExpr{Kind: "index", Subject: toJSON(n.Subject), Key: toJSON(n.Key)}
	case *Field:
		return &jsonExpr{Kind: "field", Subject: toJSON(n.Subject), Name: n.Name}
	case *Block:
		stmts := make([]*jsonExpr, len(n.Stmts))
		for i, s := range n.Stmts {
			stmts[i] = toJSON(s)
		}
		return &jsonExpr{Kind: "block", Stmts: stmts}
	case *If:
		return &jsonExpr{Kind: "if", Cond: toJSON(n.Cond), Then: toJSON(n.Then), Else: toJSON(n.Else)}
	case *While:
		return &jsonExpr{Kind: "while", Cond: toJSON(n.Cond), Body: toJSON(n.Body)}
	case *DoWhile:
		return &jsonExpr{Kind: "do_while", Cond: toJSON(n.Cond), Body: toJSON(n.Body)}
	case *ForRange:
		return &jsonExpr{
			Kind: "for_range", Var: n.Var, Inclusive: n.Inclusive,
			Start: toJSON(n.Start), End: toJSON(n.End), Step: toJSON(n.Step), Body: toJSON(n.Body),
		}
	case *ForIn:
		return &jsonExpr{Kind: "for_in", Var: n.Var, Seq: toJSON(n.Seq), Body: toJSON(n.Body)}
	case *Break:
		return &jsonExpr{Kind: "break"}
	case *Continue:
		return &jsonExpr{Kind: "continue"}
	case *Return:
		return &jsonExpr{Kind: "return", Value: toJSON(n.Value)}
	default:
		return &jsonExpr{Kind: "unknown"}
	}
}

func fromJSON(je *jsonExpr) (Expr, error) {
	if je == nil {
		return nil, nil
	}

	sub := func(child *jsonExpr) (Expr, error) { return fromJSON(child) }

	switch je.Kind {
	case "ident":
		return &Ident{Name: je.Name}, nil
	case "int":
		if je.Int == nil {
			return nil, fmt.Errorf("int literal missing value")
		}
		return &IntLit{Value: *je.Int}, nil
	case "float":
		if je.Float == nil {
			return nil, fmt.Errorf("float literal missing value")
		}
		return &FloatLit{Value: *je.Float}, nil
	case "bool":
		if je.Bool == nil {
			return nil, fmt.Errorf("bool literal missing value")
		}
		return &BoolLit{Value: *je.Bool}, nil
	case "string":
		if je.Str == nil {
			return nil, fmt.Errorf("string literal missing value")
		}
		return &StringLit{Value: *je.Str}, nil
	case "binary":
		left, err := sub(je.Left)
		if err != nil {
			return nil, err
		}
		right, err := sub(je.Right)
		if err != nil {
			return nil, err
		}
		return &Binary{Op: je.Op, Left: left, Right: right}, nil
	case "unary":
		operand, err := sub(je.Operand)
		if err != nil {
			return nil, err
		}
		return &Unary{Op: je.Op, Operand: operand}, nil
	case "assign":
		target, err := sub(je.Target)
		if err != nil {
			return nil, err
		}
		value, err := sub(je.Value)
		if err != nil {
			return nil, err
		}
		return &Assign{Op: je.Op, Target: target, Value: value}, nil
	case "call":
		recv, err := sub(je.Recv)
		if err != nil {
			return nil, err
		}
		args := make([]Expr, len(je.Args))
		for i, a := range je.Args {
			if args[i], err = fromJSON(a); err != nil {
				return nil, err
			}
		}
		return &Call{Recv: recv, Method: je.Method, Args: args}, nil
	case "index":
		subject, err := sub(je.Subject)
		if err != nil {
			return nil, err
		}
		key, err := sub(je.Key)
		if err != nil {
			return nil, err
		}
		return &Index{Subject: subject, Key: key}, nil
	case "field":
		subject, err := sub(je.Subject)
		if err != nil {
			return nil, err
		}
		return &Field{Subject: subject, Name: je.Name}, nil
	case "block":
		stmts := make([]Expr, len(je.Stmts))
		var err error
		for i, s := range je.Stmts {
			if stmts[i], err = fromJSON(s); err != nil {
				return nil, err
			}
		}
		return &Block{Stmts: stmts}, nil
	case "if":
		cond, err := sub(je.Cond)
		if err != nil {
			return nil, err
		}
		then, err := sub(je.Then)
		if err != nil {
			return nil, err
		}
		els, err := sub(je.Else)
		if err != nil {
			return nil, err
		}
		return &If{Cond: cond, Then: then, Else: els}, nil
	case "while":
		cond, err := sub(je.Cond)
		if err != nil {
			return nil, err
		}
		body, err := sub(je.Body)
		if err != nil {
			return nil, err
		}
		return &While{Cond: cond, Body: body}, nil
	case "do_while":
		cond, err := sub(je.Cond)
		if err != nil {
			return nil, err
		}
		body, err := sub(je.Body)
		if err != nil {
			return nil, err
		}
		return &DoWhile{Cond: cond, Body: body}, nil
	case "for_range":
		start, err := sub(je.Start)
		if err != nil {
			return nil, err
		}
		end, err := sub(je.End)
		if err != nil {
			return nil, err
		}
		step, err := sub(je.Step)
		if err != nil {
			return nil, err
		}
		body, err := sub(je.Body)
		if err != nil {
			return nil, err
		}
		return &ForRange{Var: je.Var, Start: start, End: end, Step: step, Inclusive: je.Inclusive, Body: body}, nil
	case "for_in":
		seq, err := sub(je.Seq)
		if err != nil {
			return nil, err
		}
		body, err := sub(je.Body)
		if err != nil {
			return nil, err
		}
		return &ForIn{Var: je.Var, Seq: seq, Body: body}, nil
	case "break":
		return &Break{}, nil
	case "continue":
		return &Continue{}, nil
	case "return":
		value, err := sub(je.Value)
		if err != nil {
			return nil, err
		}
		return &Return{Value: value}, nil
	default:
		return nil, fmt.Errorf("unknown input node kind %q", je.Kind)
	}
}
