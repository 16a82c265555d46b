/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package query

import (
	"strconv"

	sq "github.com/Masterminds/squirrel"
)

// cacheTag formats one invalidation key, e.g. "section:3".
func cacheTag(kind string, id int64) string {
	return kind + ":" + strconv.FormatInt(id, 10)
}

// Table names in the content schema.
const (
	TableElements          = "elements"
	TableElementSites      = "elements_sites"
	TableEntries           = "entries"
	TableSections          = "sections"
	TableEntryTypes        = "entry_types"
	TableUserGroups        = "user_groups"
	TableGroupMembership   = "user_groups_users"
	TableStructures        = "structures"
	TableStructureElements = "structure_elements"
)

// Join is one INNER JOIN in a prepared query.
type Join struct {
	Table string
	Alias string
	On    string
}

// Descriptor is the executable output of query preparation: a full
// description of the SELECT to run, plus the cache tags governing
// invalidation of its result set. Once a Descriptor has been derived the
// query that produced it must not be mutated further.
//
// A Descriptor with None set matches nothing; executors must return zero
// rows without touching the store.
type Descriptor struct {
	Table     string
	Joins     []Join
	Columns   []string
	Conds     sq.And
	OrderBy   []string
	Limit     int64
	Offset    int64
	CacheTags []string
	None      bool
}

func newDescriptor() *Descriptor {
	return &Descriptor{Limit: -1, Offset: -1}
}

func emptyDescriptor() *Descriptor {
	d := newDescriptor()
	d.None = true
	return d
}

func (d *Descriptor) where(cond sq.Sqlizer) {
	if cond != nil {
		d.Conds = append(d.Conds, cond)
	}
}

// join registers a join exactly once per alias.
func (d *Descriptor) join(table, alias, on string) {
	for _, j := range d.Joins {
		if j.Alias == alias {
			return
		}
	}
	d.Joins = append(d.Joins, Join{Table: table, Alias: alias, On: on})
}

func (d *Descriptor) joined(alias string) bool {
	for _, j := range d.Joins {
		if j.Alias == alias {
			return true
		}
	}
	return false
}

// Builder assembles the descriptor into a squirrel SELECT, ready for
// ToSql() and execution by the store.
func (d *Descriptor) Builder() sq.SelectBuilder {
	b := sq.Select(d.Columns...).From(d.Table)
	for _, j := range d.Joins {
		clause := j.Table
		if j.Alias != j.Table {
			clause += " " + j.Alias
		}
		b = b.Join(clause + " ON " + j.On)
	}
	if len(d.Conds) > 0 {
		b = b.Where(d.Conds)
	}
	if len(d.OrderBy) > 0 {
		b = b.OrderBy(d.OrderBy...)
	}
	if d.Limit >= 0 {
		b = b.Limit(uint64(d.Limit))
	}
	if d.Offset > 0 {
		b = b.Offset(uint64(d.Offset))
	}
	return b
}
