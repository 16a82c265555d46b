/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

// Package param normalizes the loosely shaped filter values accepted by the
// query builder. ID-style parameters collapse into an IDSet, a three-state
// value distinguishing "never set" from "explicitly matches nothing" from a
// concrete set of IDs. Everything else parses once into a small tagged
// expression tree (see expr.go) so downstream compilation never re-inspects
// raw input.
package param

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dburkart/quarry/pkg/model"
)

type setState uint8

const (
	stateUnset setState = iota
	stateEmpty
	stateSet
)

// IDSet is the normalized form of an ID parameter.
//
// The distinction between Unset and Empty matters: Empty means the caller
// asked for something that resolves to nothing (say, an unknown section
// handle), and the whole query must short-circuit to zero rows rather than
// emit an impossible IN () predicate.
type IDSet struct {
	state setState
	ids   []int64
}

func Unset() IDSet { return IDSet{} }

func Empty() IDSet { return IDSet{state: stateEmpty} }

func IDs(ids ...int64) IDSet {
	if len(ids) == 0 {
		return Empty()
	}
	return IDSet{state: stateSet, ids: ids}
}

func (s IDSet) IsUnset() bool { return s.state == stateUnset }

func (s IDSet) IsEmpty() bool { return s.state == stateEmpty }

func (s IDSet) Values() []int64 { return s.ids }

// Single returns the sole ID when the set resolved to exactly one.
func (s IDSet) Single() (int64, bool) {
	if s.state == stateSet && len(s.ids) == 1 {
		return s.ids[0], true
	}
	return 0, false
}

func (s IDSet) String() string {
	switch s.state {
	case stateUnset:
		return "unset"
	case stateEmpty:
		return "empty"
	}
	parts := make([]string, len(s.ids))
	for i, id := range s.ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// Coerce splits a raw ID parameter into the IDs it already carries and the
// handles that still need resolving against a reference table. A nil value
// yields Unset; an empty list yields the explicit Empty sentinel. Domain
// objects contribute their ID directly when they have one, their handle
// otherwise.
func Coerce(v any) (IDSet, []string, error) {
	if v == nil {
		return Unset(), nil, nil
	}

	var ids []int64
	var handles []string

	collect := func(raw any) error {
		id, handle, err := coerceScalar(raw)
		if err != nil {
			return err
		}
		if handle != "" {
			handles = append(handles, handle)
		} else {
			ids = append(ids, id)
		}
		return nil
	}

	switch val := v.(type) {
	case []int64:
		if len(val) == 0 {
			return Empty(), nil, nil
		}
		ids = val
	case []int:
		if len(val) == 0 {
			return Empty(), nil, nil
		}
		for _, n := range val {
			ids = append(ids, int64(n))
		}
	case []string:
		if len(val) == 0 {
			return Empty(), nil, nil
		}
		for _, s := range val {
			if err := collect(s); err != nil {
				return Unset(), nil, err
			}
		}
	case []any:
		if len(val) == 0 {
			return Empty(), nil, nil
		}
		for _, e := range val {
			if err := collect(e); err != nil {
				return Unset(), nil, err
			}
		}
	case string:
		for _, part := range splitList(val) {
			if err := collect(part); err != nil {
				return Unset(), nil, err
			}
		}
		if len(ids) == 0 && len(handles) == 0 {
			return Unset(), nil, nil
		}
	default:
		if err := collect(v); err != nil {
			return Unset(), nil, err
		}
	}

	if len(ids) == 0 && len(handles) == 0 {
		return Empty(), nil, nil
	}
	if len(ids) == 0 {
		// Not an IDSet yet; the caller resolves handles and combines.
		return Unset(), handles, nil
	}
	return IDs(ids...), handles, nil
}

func coerceScalar(v any) (int64, string, error) {
	switch val := v.(type) {
	case int:
		return int64(val), "", nil
	case int32:
		return int64(val), "", nil
	case int64:
		return val, "", nil
	case uint64:
		return int64(val), "", nil
	case float64:
		return int64(val), "", nil
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return 0, "", fmt.Errorf("empty handle in parameter value")
		}
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return n, "", nil
		}
		return 0, trimmed, nil
	case model.Section:
		return objectRef(val.ID, val.Handle)
	case *model.Section:
		return objectRef(val.ID, val.Handle)
	case model.EntryType:
		return objectRef(val.ID, val.Handle)
	case *model.EntryType:
		return objectRef(val.ID, val.Handle)
	case model.UserGroup:
		return objectRef(val.ID, val.Handle)
	case *model.UserGroup:
		return objectRef(val.ID, val.Handle)
	}
	return 0, "", fmt.Errorf("unsupported parameter value of type %T", v)
}

func objectRef(id int64, handle string) (int64, string, error) {
	if id > 0 {
		return id, "", nil
	}
	if handle != "" {
		return 0, handle, nil
	}
	return 0, "", fmt.Errorf("object parameter has neither an id nor a handle")
}

// Strings flattens a string-ish parameter into its elements. A bare string
// splits on commas; slices pass through element-wise. Empty elements are
// dropped.
func Strings(v any) []string {
	var out []string
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		out = splitList(val)
	case []string:
		for _, s := range val {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, e := range val {
			if s, ok := e.(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
