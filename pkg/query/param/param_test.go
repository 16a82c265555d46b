/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package param

import (
	"reflect"
	"testing"

	"github.com/dburkart/quarry/pkg/model"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name        string
		input       any
		wantUnset   bool
		wantEmpty   bool
		wantIDs     []int64
		wantHandles []string
	}{
		{name: "nil is unset", input: nil, wantUnset: true},
		{name: "empty string is unset", input: "", wantUnset: true},
		{name: "empty slice is explicitly empty", input: []string{}, wantEmpty: true},
		{name: "empty any slice is explicitly empty", input: []any{}, wantEmpty: true},
		{name: "single id", input: 5, wantIDs: []int64{5}},
		{name: "id slice passes through", input: []int64{5, 7}, wantIDs: []int64{5, 7}},
		{name: "numeric string is an id", input: "5", wantIDs: []int64{5}},
		{name: "handle string", input: "news", wantHandles: []string{"news"}},
		{name: "comma separated mix", input: "5, news", wantIDs: []int64{5}, wantHandles: []string{"news"}},
		{name: "handle slice", input: []string{"news", "docs"}, wantHandles: []string{"news", "docs"}},
		{
			name:    "object with id",
			input:   model.Section{ID: 3, Handle: "news"},
			wantIDs: []int64{3},
		},
		{
			name:        "object with only a handle",
			input:       &model.EntryType{Handle: "article"},
			wantHandles: []string{"article"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ids, handles, err := Coerce(test.input)
			if err != nil {
				t.Fatal(err)
			}
			if len(test.wantHandles) == 0 && ids.IsUnset() != test.wantUnset {
				t.Errorf("IsUnset() = %v, wanted %v", ids.IsUnset(), test.wantUnset)
			}
			if ids.IsEmpty() != test.wantEmpty {
				t.Errorf("IsEmpty() = %v, wanted %v", ids.IsEmpty(), test.wantEmpty)
			}
			if test.wantIDs != nil && !reflect.DeepEqual(ids.Values(), test.wantIDs) {
				t.Errorf("ids = %v, wanted %v", ids.Values(), test.wantIDs)
			}
			if !reflect.DeepEqual(handles, test.wantHandles) {
				t.Errorf("handles = %v, wanted %v", handles, test.wantHandles)
			}
		})
	}

	t.Run("unsupported type", func(t *testing.T) {
		if _, _, err := Coerce(struct{}{}); err == nil {
			t.Error("expected an error for an unsupported type")
		}
	})
}

func TestIDSetSingle(t *testing.T) {
	if _, ok := Unset().Single(); ok {
		t.Error("unset should not report a single ID")
	}
	if _, ok := IDs(1, 2).Single(); ok {
		t.Error("a two-element set should not report a single ID")
	}
	if id, ok := IDs(9).Single(); !ok || id != 9 {
		t.Errorf("wanted (9, true), got (%d, %v)", id, ok)
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		input any
		want  []string
	}{
		{"foo/bar, baz", []string{"foo/bar", "baz"}},
		{[]string{" a ", "", "b"}, []string{"a", "b"}},
		{[]any{"a", 3, "b"}, []string{"a", "b"}},
		{nil, nil},
	}
	for _, test := range tests {
		if got := Strings(test.input); !reflect.DeepEqual(got, test.want) {
			t.Errorf("Strings(%v) = %v, wanted %v", test.input, got, test.want)
		}
	}
}
