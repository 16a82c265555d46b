/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package query

import (
	"fmt"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/dburkart/quarry/pkg/query/param"
)

// ParamError reports a misconfigured filter value. It is fatal at
// preparation time; a query that raises one was never going to mean what
// the caller intended.
type ParamError struct {
	Param   string
	Message string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid value for the '%s' param: %s", e.Param, e.Message)
}

func paramErr(name, format string, args ...any) error {
	return &ParamError{Param: name, Message: fmt.Sprintf(format, args...)}
}

// mapper converts a raw operand before it lands in a predicate: dates to
// unix seconds, numeric-only params to int64 with a hard failure on
// anything else. A nil mapper passes operands through.
type mapper func(any) (any, error)

func mapNumeric(v any) (any, error) {
	switch val := v.(type) {
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int64:
		return val, nil
	case float64:
		return int64(val), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("'%v' is not numeric", val)
		}
		return n, nil
	}
	return nil, fmt.Errorf("'%v' is not numeric", v)
}

// compileParam compiles a parsed filter expression into a predicate over
// column. The empty/notempty sentinels become IS NULL / IS NOT NULL, lists
// become set membership, and 'not' distributes over whatever it wraps.
func compileParam(column string, e param.Expr) (sq.Sqlizer, error) {
	return compile(column, e, nil)
}

// compileNumeric is compileParam restricted to numeric operands. A
// non-numeric operand is a configuration error surfaced at compile time.
func compileNumeric(column string, e param.Expr) (sq.Sqlizer, error) {
	return compile(column, e, mapNumeric)
}

// compileDate is compileParam with operands converted to unix timestamps.
func compileDate(column string, e param.Expr) (sq.Sqlizer, error) {
	return compile(column, e, func(v any) (any, error) {
		return asTimestamp(v)
	})
}

func compile(column string, e param.Expr, mapv mapper) (sq.Sqlizer, error) {
	if e == nil {
		return nil, nil
	}

	switch n := e.(type) {
	case *param.Literal:
		v, err := mapValue(n.Val, mapv)
		if err != nil {
			return nil, err
		}
		return sq.Eq{column: v}, nil

	case *param.List:
		if vals, ok := literalValues(n.Xs); ok {
			mapped, err := mapAll(vals, mapv)
			if err != nil {
				return nil, err
			}
			return sq.Eq{column: mapped}, nil
		}
		or := make(sq.Or, 0, len(n.Xs))
		for _, x := range n.Xs {
			c, err := compile(column, x, mapv)
			if err != nil {
				return nil, err
			}
			or = append(or, c)
		}
		return or, nil

	case *param.Not:
		return compileNot(column, n.X, mapv)

	case *param.Cmp:
		v, err := mapValue(n.Operand, mapv)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case ">=":
			return sq.GtOrEq{column: v}, nil
		case ">":
			return sq.Gt{column: v}, nil
		case "<=":
			return sq.LtOrEq{column: v}, nil
		case "<":
			return sq.Lt{column: v}, nil
		}
		return nil, fmt.Errorf("unknown comparison operator %q", n.Op)

	case *param.Conj:
		conds := make([]sq.Sqlizer, 0, len(n.Xs))
		for _, x := range n.Xs {
			c, err := compile(column, x, mapv)
			if err != nil {
				return nil, err
			}
			conds = append(conds, c)
		}
		if n.And {
			return sq.And(conds), nil
		}
		return sq.Or(conds), nil

	case *param.Sentinel:
		if n.NotEmpty {
			return sq.NotEq{column: nil}, nil
		}
		return sq.Eq{column: nil}, nil
	}

	return nil, fmt.Errorf("unknown expression node %T", e)
}

func compileNot(column string, inner param.Expr, mapv mapper) (sq.Sqlizer, error) {
	switch n := inner.(type) {
	case *param.Literal:
		v, err := mapValue(n.Val, mapv)
		if err != nil {
			return nil, err
		}
		return sq.NotEq{column: v}, nil
	case *param.List:
		if vals, ok := literalValues(n.Xs); ok {
			mapped, err := mapAll(vals, mapv)
			if err != nil {
				return nil, err
			}
			return sq.NotEq{column: mapped}, nil
		}
	case *param.Sentinel:
		return compile(column, &param.Sentinel{NotEmpty: !n.NotEmpty}, mapv)
	}

	c, err := compile(column, inner, mapv)
	if err != nil {
		return nil, err
	}
	return notCond{c}, nil
}

// notCond wraps an arbitrary condition in NOT (...), which squirrel has no
// combinator for.
type notCond struct {
	cond sq.Sqlizer
}

func (n notCond) ToSql() (string, []interface{}, error) {
	s, args, err := n.cond.ToSql()
	if err != nil {
		return "", nil, err
	}
	return "NOT (" + s + ")", args, nil
}

func literalValues(xs []param.Expr) ([]any, bool) {
	vals := make([]any, 0, len(xs))
	for _, x := range xs {
		lit, ok := x.(*param.Literal)
		if !ok {
			return nil, false
		}
		vals = append(vals, lit.Val)
	}
	return vals, true
}

func mapValue(v any, mapv mapper) (any, error) {
	if mapv == nil {
		return v, nil
	}
	return mapv(v)
}

func mapAll(vals []any, mapv mapper) ([]any, error) {
	if mapv == nil {
		return vals, nil
	}
	out := make([]any, len(vals))
	for i, v := range vals {
		mapped, err := mapv(v)
		if err != nil {
			return nil, err
		}
		out[i] = mapped
	}
	return out, nil
}
