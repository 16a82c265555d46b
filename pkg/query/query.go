/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

// Package query implements the deferred, fluent query builder at the core
// of quarry. A builder accumulates filter parameters, and Prepare compiles
// them into a Descriptor: the joins, predicates, ordering and cache tags
// an external executor needs to fetch matching entries.
//
// Builders are cheap, single-use, and not safe for concurrent mutation;
// create one per logical fetch.
package query

import (
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/dburkart/quarry/pkg/model"
	"github.com/dburkart/quarry/pkg/query/param"
	"github.com/rs/zerolog"
)

// Lookup is the tabular read capability preparation leans on for handle
// and structure resolution. Reads are synchronous; a failed lookup is
// surfaced, never retried.
type Lookup interface {
	// IDs returns the id column of rows in table matching cond.
	IDs(table string, cond sq.Sqlizer) ([]int64, error)
	// ScalarInt returns a single integer column value, reporting whether a
	// row matched at all.
	ScalarInt(table, column string, cond sq.Sqlizer) (int64, bool, error)
}

// Permissions answers the editable-scoping questions for an actor.
type Permissions interface {
	// EditableSections lists the sections the actor may edit at all.
	EditableSections() []model.Section
	// CanEditPeerEntries reports whether the actor may edit entries they
	// did not author in the given section.
	CanEditPeerEntries(section model.Section) bool
}

// StaticPermissions is a fixed-answer Permissions, handy for tools and
// tests.
type StaticPermissions struct {
	Sections []model.Section
	Peers    map[int64]bool
}

func (p StaticPermissions) EditableSections() []model.Section { return p.Sections }

func (p StaticPermissions) CanEditPeerEntries(section model.Section) bool {
	return p.Peers[section.ID]
}

// Context carries everything ambient that preparation depends on, so that
// time- and permission-sensitive predicates stay deterministic under test.
type Context struct {
	Lookup  Lookup
	Actor   *model.Actor
	Perms   Permissions
	Edition model.Edition
	Now     time.Time
	Log     *zerolog.Logger
}

func (c Context) now() time.Time {
	if c.Now.IsZero() {
		return time.Now().UTC()
	}
	return c.Now
}

func (c Context) logger() zerolog.Logger {
	if c.Log == nil {
		return zerolog.Nop()
	}
	return *c.Log
}

// ElementQuery carries the element-generic query state shared by every
// element type: site scoping, slug/uid filters, the status set, ordering
// and pagination. Type-specific builders embed it and layer their own
// parameters on top.
type ElementQuery struct {
	siteID    int64
	slug      any
	uid       any
	status    any
	anyStatus bool
	orderBy   []string
	limit     int64
	offset    int64
}

func newElementQuery() ElementQuery {
	return ElementQuery{limit: -1, offset: -1}
}

// statusNames expands the status parameter into its named states. The
// default, when nothing was set, is the live singleton.
func (q *ElementQuery) statusNames() []string {
	if q.anyStatus {
		return nil
	}
	if q.status == nil {
		return []string{StatusLive}
	}
	return param.Strings(q.status)
}

// applySlugAndUID contributes the element-generic value filters.
func (q *ElementQuery) applySlugAndUID(d *Descriptor) error {
	if q.slug != nil {
		e, err := param.Parse(q.slug)
		if err != nil {
			return paramErr("slug", "%v", err)
		}
		cond, err := compileParam(TableElementSites+".slug", e)
		if err != nil {
			return paramErr("slug", "%v", err)
		}
		d.where(cond)
	}
	if q.uid != nil {
		e, err := param.Parse(q.uid)
		if err != nil {
			return paramErr("uid", "%v", err)
		}
		cond, err := compileParam(TableElements+".uid", e)
		if err != nil {
			return paramErr("uid", "%v", err)
		}
		d.where(cond)
	}
	return nil
}

// applySite restricts the query to one site's element rows.
func (q *ElementQuery) applySite(d *Descriptor) {
	if q.siteID > 0 {
		d.where(sq.Eq{TableElementSites + ".site_id": q.siteID})
	}
}

func (q *ElementQuery) applyPagination(d *Descriptor) {
	d.Limit = q.limit
	d.Offset = q.offset
}

// normalizeIDs resolves a raw ID parameter against a reference table,
// turning handle strings into IDs through the lookup. Handles that match
// nothing produce the explicit Empty set; they are not an error.
func normalizeIDs(ctx Context, table string, raw any) (param.IDSet, error) {
	ids, handles, err := param.Coerce(raw)
	if err != nil {
		return param.Unset(), err
	}
	if len(handles) == 0 {
		return ids, nil
	}

	e, err := param.Parse(handles)
	if err != nil {
		return param.Unset(), err
	}
	cond, err := compileParam("handle", e)
	if err != nil {
		return param.Unset(), err
	}
	resolved, err := ctx.Lookup.IDs(table, cond)
	if err != nil {
		return param.Unset(), err
	}

	merged := append(append([]int64{}, ids.Values()...), resolved...)
	if len(merged) == 0 {
		return param.Empty(), nil
	}
	return param.IDs(merged...), nil
}
