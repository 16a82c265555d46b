/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package param

import (
	"fmt"
	"strings"
	"time"
)

// Expr is a parsed filter expression. The grammar accepted by Parse mirrors
// what the query builder takes at its API boundary:
//
//	value           = literal / list / negation / comparison / boolean / sentinel
//	negation        = "not" value
//	comparison      = ( ">=" / "<=" / ">" / "<" / "!=" / "=" ) literal
//	boolean         = ( "and" / "or" ) 1*value   ; as the head of a list
//	sentinel        = ":empty:" / ":notempty:"
//
// Raw input is parsed exactly once, here; the predicate compiler only ever
// sees Expr trees.
type Expr interface {
	expr()
}

type (
	// Literal matches a column against a single scalar.
	Literal struct {
		Val any
	}

	// List matches any one of its sub-expressions.
	List struct {
		Xs []Expr
	}

	// Not negates its operand.
	Not struct {
		X Expr
	}

	// Cmp is a half-open range bound: Op is one of ">=", "<=", ">", "<".
	Cmp struct {
		Op      string
		Operand any
	}

	// Conj combines sub-expressions with AND (when And is set) or OR.
	Conj struct {
		And bool
		Xs  []Expr
	}

	// Sentinel is the ":empty:" / ":notempty:" null check.
	Sentinel struct {
		NotEmpty bool
	}
)

func (*Literal) expr()  {}
func (*List) expr()     {}
func (*Not) expr()      {}
func (*Cmp) expr()      {}
func (*Conj) expr()     {}
func (*Sentinel) expr() {}

var cmpOps = [...]string{">=", "<=", "!=", ">", "<", "="}

// Parse turns a raw parameter value into an Expr. A nil value parses to a
// nil Expr, meaning "no filter".
func Parse(v any) (Expr, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return parseString(val)
	case Expr:
		return val, nil
	case time.Time, bool, int, int32, int64, uint64, float32, float64:
		return &Literal{Val: val}, nil
	case []string:
		elems := make([]any, len(val))
		for i, s := range val {
			elems[i] = s
		}
		return parseSlice(elems)
	case []int:
		elems := make([]any, len(val))
		for i, n := range val {
			elems[i] = n
		}
		return parseSlice(elems)
	case []int64:
		elems := make([]any, len(val))
		for i, n := range val {
			elems[i] = n
		}
		return parseSlice(elems)
	case []any:
		return parseSlice(val)
	}
	return nil, fmt.Errorf("unsupported parameter value of type %T", v)
}

func parseString(s string) (Expr, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil, nil
	case strings.EqualFold(s, ":empty:"):
		return &Sentinel{}, nil
	case strings.EqualFold(s, ":notempty:"):
		return &Sentinel{NotEmpty: true}, nil
	}

	if rest, ok := cutKeyword(s, "not"); ok {
		inner, err := parseString(rest)
		if err != nil {
			return nil, err
		}
		if sen, ok := inner.(*Sentinel); ok {
			return &Sentinel{NotEmpty: !sen.NotEmpty}, nil
		}
		return &Not{X: inner}, nil
	}

	for _, op := range cmpOps {
		if !strings.HasPrefix(s, op) {
			continue
		}
		operand := strings.TrimSpace(s[len(op):])
		if operand == "" {
			return nil, fmt.Errorf("operator %q is missing an operand", op)
		}
		switch op {
		case "=":
			return &Literal{Val: operand}, nil
		case "!=":
			return &Not{X: &Literal{Val: operand}}, nil
		}
		return &Cmp{Op: op, Operand: operand}, nil
	}

	if parts := splitList(s); len(parts) > 1 {
		xs := make([]Expr, len(parts))
		for i, part := range parts {
			xs[i] = &Literal{Val: part}
		}
		return &List{Xs: xs}, nil
	}

	return &Literal{Val: s}, nil
}

func parseSlice(elems []any) (Expr, error) {
	if len(elems) == 0 {
		return nil, nil
	}

	if head, ok := elems[0].(string); ok {
		switch strings.ToLower(strings.TrimSpace(head)) {
		case "and", "or":
			xs, err := parseAll(elems[1:])
			if err != nil {
				return nil, err
			}
			return &Conj{And: strings.EqualFold(strings.TrimSpace(head), "and"), Xs: xs}, nil
		case "not":
			xs, err := parseAll(elems[1:])
			if err != nil {
				return nil, err
			}
			return &Not{X: &List{Xs: xs}}, nil
		}
	}

	xs, err := parseAll(elems)
	if err != nil {
		return nil, err
	}
	if len(xs) == 1 {
		return xs[0], nil
	}
	return &List{Xs: xs}, nil
}

func parseAll(elems []any) ([]Expr, error) {
	var xs []Expr
	for _, e := range elems {
		x, err := Parse(e)
		if err != nil {
			return nil, err
		}
		if x != nil {
			xs = append(xs, x)
		}
	}
	return xs, nil
}

// cutKeyword strips a leading bare word (case-insensitive) followed by
// whitespace, so "not news" matches but "notebook" does not.
func cutKeyword(s, kw string) (string, bool) {
	if len(s) <= len(kw) || !strings.EqualFold(s[:len(kw)], kw) {
		return "", false
	}
	rest := s[len(kw):]
	if trimmed := strings.TrimLeft(rest, " \t"); trimmed != rest {
		return trimmed, true
	}
	return "", false
}
