/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package query

import (
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/dburkart/quarry/pkg/model"
	"github.com/dburkart/quarry/pkg/query/param"
)

var ErrPrepared = errors.New("query has already been prepared")

// EntryQuery builds a fetch of entry elements. Construct one with
// NewEntryQuery, chain filter setters, then call Prepare to derive the
// executable Descriptor.
//
//	d, err := query.NewEntryQuery().
//		Section("news").
//		Status(query.StatusLive).
//		Limit(10).
//		Prepare(ctx)
type EntryQuery struct {
	ElementQuery

	section     any
	entryType   any
	authorID    any
	authorGroup any
	postDate    any
	expiryDate  any
	before      any
	after       any
	ref         any
	editable    bool

	structureID  int64
	structureSet bool

	prepared bool

	// Resolved during preparation.
	sectionIDs param.IDSet
	typeIDs    param.IDSet
	groupIDs   param.IDSet
	structure  structureRef
}

func NewEntryQuery() *EntryQuery {
	return &EntryQuery{ElementQuery: newElementQuery()}
}

// Section filters by section: IDs, handles, model.Section values, or any
// mix of those.
func (q *EntryQuery) Section(v any) *EntryQuery {
	q.section = v
	return q
}

// Type filters by entry type, with the same accepted shapes as Section.
func (q *EntryQuery) Type(v any) *EntryQuery {
	q.entryType = v
	return q
}

// Author filters by author user ID. Only numeric operands are accepted;
// the filter is a no-op outside the Pro edition.
func (q *EntryQuery) Author(v any) *EntryQuery {
	q.authorID = v
	return q
}

// AuthorGroup filters by the author's user group. No-op outside the Pro
// edition.
func (q *EntryQuery) AuthorGroup(v any) *EntryQuery {
	q.authorGroup = v
	return q
}

// PostDate filters on the post date with the full expression grammar.
// When set, Before and After are ignored.
func (q *EntryQuery) PostDate(v any) *EntryQuery {
	q.postDate = v
	return q
}

// ExpiryDate filters on the expiry date.
func (q *EntryQuery) ExpiryDate(v any) *EntryQuery {
	q.expiryDate = v
	return q
}

// Before keeps entries posted strictly before the given instant.
func (q *EntryQuery) Before(v any) *EntryQuery {
	q.before = v
	return q
}

// After keeps entries posted at or after the given instant.
func (q *EntryQuery) After(v any) *EntryQuery {
	q.after = v
	return q
}

// Ref filters by reference tokens: "section/slug" or bare "slug", a comma
// separated string or a list.
func (q *EntryQuery) Ref(v any) *EntryQuery {
	q.ref = v
	return q
}

// Editable restricts results to entries the current actor may edit.
func (q *EntryQuery) Editable(editable bool) *EntryQuery {
	q.editable = editable
	return q
}

// StructureID pins the ordering tree explicitly, overriding derivation
// from a single resolved section.
func (q *EntryQuery) StructureID(id int64) *EntryQuery {
	q.structureID = id
	q.structureSet = true
	return q
}

// SiteID scopes the query to one site.
func (q *EntryQuery) SiteID(id int64) *EntryQuery {
	q.siteID = id
	return q
}

// Slug filters on the element slug.
func (q *EntryQuery) Slug(v any) *EntryQuery {
	q.slug = v
	return q
}

// UID filters on the element UID.
func (q *EntryQuery) UID(v any) *EntryQuery {
	q.uid = v
	return q
}

// Status selects named statuses, comma separated or as a list. The
// default is live only.
func (q *EntryQuery) Status(v any) *EntryQuery {
	q.status = v
	q.anyStatus = false
	return q
}

// AnyStatus disables status filtering entirely.
func (q *EntryQuery) AnyStatus() *EntryQuery {
	q.status = nil
	q.anyStatus = true
	return q
}

// OrderBy overrides the default ordering (structure order when the query
// is structured, otherwise post date descending).
func (q *EntryQuery) OrderBy(clauses ...string) *EntryQuery {
	q.orderBy = clauses
	return q
}

func (q *EntryQuery) Limit(n int64) *EntryQuery {
	q.limit = n
	return q
}

func (q *EntryQuery) Offset(n int64) *EntryQuery {
	q.offset = n
	return q
}

// Prepare runs the preparation pass and derives the Descriptor. The
// evaluation instant, actor, edition and lookup all come from ctx; nothing
// ambient is consulted. After Prepare returns, the query is spent.
func (q *EntryQuery) Prepare(ctx Context) (*Descriptor, error) {
	if q.prepared {
		return nil, ErrPrepared
	}
	q.prepared = true

	log := ctx.logger()
	now := ctx.now()

	var err error
	if q.sectionIDs, err = normalizeIDs(ctx, TableSections, q.section); err != nil {
		return nil, paramErr("section", "%v", err)
	}
	if q.typeIDs, err = normalizeIDs(ctx, TableEntryTypes, q.entryType); err != nil {
		return nil, paramErr("type", "%v", err)
	}

	// A parameter that resolved to nothing can never match; skip the
	// round-trip instead of issuing an impossible IN ().
	if q.sectionIDs.IsEmpty() || q.typeIDs.IsEmpty() {
		log.Debug().
			Stringer("sections", q.sectionIDs).
			Stringer("types", q.typeIDs).
			Msg("entry query short-circuited by an empty ID set")
		return emptyDescriptor(), nil
	}

	d := newDescriptor()
	joinEntries(d)

	if err := q.applyDates(d); err != nil {
		return nil, err
	}

	if !q.typeIDs.IsUnset() {
		d.where(sq.Eq{TableEntries + ".type_id": q.typeIDs.Values()})
	}

	if ctx.Edition == model.EditionPro {
		empty, err := q.applyAuthorParams(ctx, d)
		if err != nil {
			return nil, err
		}
		if empty {
			log.Debug().Msg("entry query short-circuited by an empty author group")
			return emptyDescriptor(), nil
		}
	}

	if q.editable {
		if aborted := q.applyEditable(ctx, d); aborted {
			log.Debug().Msg("editable entry query without an eligible actor yields nothing")
			return emptyDescriptor(), nil
		}
	}

	if !q.sectionIDs.IsUnset() {
		d.where(sq.Eq{TableEntries + ".section_id": q.sectionIDs.Values()})
	}
	if q.structure, err = deriveStructure(ctx, q.structureID, q.structureSet, q.sectionIDs); err != nil {
		return nil, err
	}

	refCond, needsSections, err := resolveRefs(q.ref)
	if err != nil {
		return nil, paramErr("ref", "%v", err)
	}
	if needsSections {
		joinSections(d)
	}
	d.where(refCond)

	if err := q.applySlugAndUID(d); err != nil {
		return nil, err
	}
	q.applySite(d)
	if err := q.applyStatus(d, now); err != nil {
		return nil, err
	}
	q.applyOrder(d)
	q.applyPagination(d)

	d.CacheTags = q.cacheTags()
	return d, nil
}

// applyDates applies the date-range parameters. An explicit post date
// expression wins outright; before/after only apply as a fallback, and
// combine conjunctively when both are present.
func (q *EntryQuery) applyDates(d *Descriptor) error {
	postDate := TableEntries + ".post_date"

	if q.postDate != nil {
		cond, err := q.dateCond("postDate", postDate, q.postDate)
		if err != nil {
			return err
		}
		d.where(cond)
	} else {
		if q.before != nil {
			ts, err := asTimestamp(q.before)
			if err != nil {
				return paramErr("before", "%v", err)
			}
			d.where(sq.Lt{postDate: ts})
		}
		if q.after != nil {
			ts, err := asTimestamp(q.after)
			if err != nil {
				return paramErr("after", "%v", err)
			}
			d.where(sq.GtOrEq{postDate: ts})
		}
	}

	if q.expiryDate != nil {
		cond, err := q.dateCond("expiryDate", TableEntries+".expiry_date", q.expiryDate)
		if err != nil {
			return err
		}
		d.where(cond)
	}
	return nil
}

func (q *EntryQuery) dateCond(name, column string, raw any) (sq.Sqlizer, error) {
	e, err := param.Parse(raw)
	if err != nil {
		return nil, paramErr(name, "%v", err)
	}
	cond, err := compileDate(column, e)
	if err != nil {
		return nil, paramErr(name, "%v", err)
	}
	return cond, nil
}

// applyAuthorParams handles the Pro-only author and author-group filters.
// It reports true when the group parameter normalized to the empty set.
func (q *EntryQuery) applyAuthorParams(ctx Context, d *Descriptor) (bool, error) {
	if q.authorID != nil {
		e, err := param.Parse(q.authorID)
		if err != nil {
			return false, paramErr("author", "%v", err)
		}
		cond, err := compileNumeric(TableEntries+".author_id", e)
		if err != nil {
			return false, paramErr("author", "%v", err)
		}
		d.where(cond)
	}

	var err error
	if q.groupIDs, err = normalizeIDs(ctx, TableUserGroups, q.authorGroup); err != nil {
		return false, paramErr("authorGroup", "%v", err)
	}
	if q.groupIDs.IsEmpty() {
		return true, nil
	}
	if !q.groupIDs.IsUnset() {
		joinUserGroups(d)
		d.where(sq.Eq{TableGroupMembership + ".group_id": q.groupIDs.Values()})
	}
	return false, nil
}

// applyEditable restricts the query to entries the actor may edit. With no
// actor signed in, or no editable sections at all, the whole query yields
// nothing; the caller short-circuits when this returns true.
//
// For an editable non-single section where the actor may not touch peer
// content, a per-section guard admits a row only if it lives elsewhere or
// the actor authored it.
func (q *EntryQuery) applyEditable(ctx Context, d *Descriptor) bool {
	if ctx.Actor == nil || ctx.Perms == nil {
		return true
	}

	sections := ctx.Perms.EditableSections()
	if len(sections) == 0 {
		return true
	}

	ids := make([]int64, len(sections))
	for i, s := range sections {
		ids[i] = s.ID
	}
	d.where(sq.Eq{TableEntries + ".section_id": ids})

	for _, s := range sections {
		if s.Type == model.SectionSingle || ctx.Perms.CanEditPeerEntries(s) {
			continue
		}
		d.where(sq.Or{
			sq.NotEq{TableEntries + ".section_id": s.ID},
			sq.Eq{TableEntries + ".author_id": ctx.Actor.ID},
		})
	}
	return false
}

func (q *EntryQuery) applyOrder(d *Descriptor) {
	if q.structure.structured() {
		joinStructure(d, q.structure.id)
	}
	if len(q.orderBy) > 0 {
		d.OrderBy = q.orderBy
		return
	}
	if q.structure.structured() {
		d.OrderBy = []string{TableStructureElements + ".lft ASC"}
		return
	}
	d.OrderBy = []string{TableEntries + ".post_date DESC"}
}

// cacheTags derives the invalidation tags for the result set. Type-level
// tags are narrower than section-level ones and take precedence.
func (q *EntryQuery) cacheTags() []string {
	if !q.typeIDs.IsUnset() {
		tags := make([]string, 0, len(q.typeIDs.Values()))
		for _, id := range q.typeIDs.Values() {
			tags = append(tags, cacheTag("entryType", id))
		}
		return tags
	}
	if !q.sectionIDs.IsUnset() {
		tags := make([]string, 0, len(q.sectionIDs.Values()))
		for _, id := range q.sectionIDs.Values() {
			tags = append(tags, cacheTag("section", id))
		}
		return tags
	}
	return nil
}
