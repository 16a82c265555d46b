/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package query

import (
	"reflect"
	"testing"

	"github.com/andreyvit/diff"
	"github.com/dburkart/quarry/pkg/query/param"
)

func mustCompile(t *testing.T, column string, raw any) (string, []interface{}) {
	t.Helper()
	e, err := param.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	cond, err := compileParam(column, e)
	if err != nil {
		t.Fatal(err)
	}
	sql, args, err := cond.ToSql()
	if err != nil {
		t.Fatal(err)
	}
	return sql, args
}

func TestCompileParam(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		wantSQL  string
		wantArgs []interface{}
	}{
		{"equality", "news", "col = ?", []interface{}{"news"}},
		{"membership", []any{5, 7}, "col IN (?,?)", []interface{}{5, 7}},
		{"negated equality", "not news", "col <> ?", []interface{}{"news"}},
		{"negated membership", []any{"not", 5, 7}, "col NOT IN (?,?)", []interface{}{5, 7}},
		{"empty sentinel", ":empty:", "col IS NULL", nil},
		{"notempty sentinel", ":notempty:", "col IS NOT NULL", nil},
		{"negated empty", "not :empty:", "col IS NOT NULL", nil},
		{"range", ">= 10", "col >= ?", []interface{}{"10"}},
		{
			"and tree",
			[]any{"and", ">= 10", "< 20"},
			"(col >= ? AND col < ?)",
			[]interface{}{"10", "20"},
		},
		{
			"or tree",
			[]any{"or", ":empty:", ">= 10"},
			"(col IS NULL OR col >= ?)",
			[]interface{}{"10"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sql, args := mustCompile(t, "col", test.input)
			if sql != test.wantSQL {
				t.Errorf("SQL mismatch:\n%s", diff.LineDiff(test.wantSQL, sql))
			}
			if test.wantArgs != nil && !reflect.DeepEqual(args, test.wantArgs) {
				t.Errorf("args = %v, wanted %v", args, test.wantArgs)
			}
		})
	}
}

func TestCompileNumeric(t *testing.T) {
	t.Run("string digits convert", func(t *testing.T) {
		e, err := param.Parse("42")
		if err != nil {
			t.Fatal(err)
		}
		cond, err := compileNumeric("author_id", e)
		if err != nil {
			t.Fatal(err)
		}
		_, args, err := cond.ToSql()
		if err != nil {
			t.Fatal(err)
		}
		if len(args) != 1 || args[0] != int64(42) {
			t.Errorf("wanted [42], got %v", args)
		}
	})

	t.Run("non-numeric operand fails fast", func(t *testing.T) {
		e, err := param.Parse("fred")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := compileNumeric("author_id", e); err == nil {
			t.Error("expected a compile-time error for a non-numeric operand")
		}
	})
}

func TestCompileDate(t *testing.T) {
	e, err := param.Parse([]any{"and", ">= 2024-01-01", "< 2024-02-01"})
	if err != nil {
		t.Fatal(err)
	}
	cond, err := compileDate("post_date", e)
	if err != nil {
		t.Fatal(err)
	}
	sql, args, err := cond.ToSql()
	if err != nil {
		t.Fatal(err)
	}
	want := "(post_date >= ? AND post_date < ?)"
	if sql != want {
		t.Errorf("SQL mismatch:\n%s", diff.LineDiff(want, sql))
	}

	lo, err := ParseVagueDateTime("2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if args[0] != lo.Unix() {
		t.Errorf("wanted operand converted to %d, got %v", lo.Unix(), args[0])
	}

	t.Run("garbage date fails fast", func(t *testing.T) {
		e, err := param.Parse(">= whenever")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := compileDate("post_date", e); err == nil {
			t.Error("expected an error for an unparseable date operand")
		}
	})
}
