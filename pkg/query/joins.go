/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package query

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/dburkart/quarry/pkg/query/param"
)

// structureRef is the tri-state outcome of structure derivation: undecided
// until resolved; once resolved, either "definitely not structured" (id
// zero) or the id of the tree to order by.
type structureRef struct {
	resolved bool
	id       int64
}

func (s structureRef) structured() bool { return s.resolved && s.id > 0 }

// deriveStructure decides structure-awareness for this preparation pass.
// An explicit structure id wins. Otherwise a query scoped to exactly one
// section inherits that section's structure; a section without one pins
// the query to "not structured" rather than leaving the question open.
func deriveStructure(ctx Context, explicit int64, explicitSet bool, sections param.IDSet) (structureRef, error) {
	if explicitSet {
		return structureRef{resolved: true, id: explicit}, nil
	}

	id, ok := sections.Single()
	if !ok {
		return structureRef{}, nil
	}

	structureID, found, err := ctx.Lookup.ScalarInt(TableSections, "structure_id", sq.Eq{"id": id})
	if err != nil {
		return structureRef{}, err
	}
	if !found {
		return structureRef{resolved: true}, nil
	}
	return structureRef{resolved: true, id: structureID}, nil
}

// joinEntries registers the base join and projection for entry queries.
func joinEntries(d *Descriptor) {
	d.Table = TableElements
	d.join(TableEntries, TableEntries, TableEntries+".id = "+TableElements+".id")
	d.join(TableElementSites, TableElementSites, TableElementSites+".element_id = "+TableElements+".id")
	d.Columns = []string{
		TableElements + ".id",
		TableElements + ".uid",
		TableElements + ".enabled",
		TableElementSites + ".site_id",
		TableElementSites + ".slug",
		TableElementSites + ".enabled AS site_enabled",
		TableEntries + ".section_id",
		TableEntries + ".type_id",
		TableEntries + ".author_id",
		TableEntries + ".title",
		TableEntries + ".post_date",
		TableEntries + ".expiry_date",
	}
}

// joinSections makes the section relation available, for ref tokens and
// anything else filtering on section columns.
func joinSections(d *Descriptor) {
	d.join(TableSections, TableSections, TableSections+".id = "+TableEntries+".section_id")
}

// joinUserGroups brings in the group-membership relation keyed on the
// entry author.
func joinUserGroups(d *Descriptor) {
	d.join(TableGroupMembership, TableGroupMembership,
		TableGroupMembership+".user_id = "+TableEntries+".author_id")
}

// joinStructure attaches the ordering tree for a structured query.
func joinStructure(d *Descriptor, structureID int64) {
	d.join(TableStructureElements, TableStructureElements,
		fmt.Sprintf("%s.element_id = %s.id AND %s.structure_id = %d",
			TableStructureElements, TableElements, TableStructureElements, structureID))
}
