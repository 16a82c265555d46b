/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package store

import (
	"database/sql"
	"time"

	"github.com/dburkart/quarry/pkg/model"
	"github.com/pkg/errors"
)

// Writers for the reference tables. The query engine never writes; these
// exist for the seed tool, tests, and whatever control surface ends up
// owning content.

func (s *Store) AddSite(site model.Site) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO sites (handle, name, is_primary) VALUES (?, ?, ?)`,
		site.Handle, site.Name, site.Primary,
	)
	if err != nil {
		return 0, errors.Wrapf(err, "inserting site %s", site.Handle)
	}
	return res.LastInsertId()
}

func (s *Store) AddStructure() (int64, error) {
	res, err := s.db.Exec(`INSERT INTO structures DEFAULT VALUES`)
	if err != nil {
		return 0, errors.Wrap(err, "inserting structure")
	}
	return res.LastInsertId()
}

func (s *Store) AddSection(sec model.Section) (int64, error) {
	var structureID any
	if sec.StructureID > 0 {
		structureID = sec.StructureID
	}
	res, err := s.db.Exec(
		`INSERT INTO sections (structure_id, handle, name, type) VALUES (?, ?, ?, ?)`,
		structureID, sec.Handle, sec.Name, string(sec.Type),
	)
	if err != nil {
		return 0, errors.Wrapf(err, "inserting section %s", sec.Handle)
	}
	return res.LastInsertId()
}

func (s *Store) AddEntryType(t model.EntryType) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO entry_types (section_id, handle, name) VALUES (?, ?, ?)`,
		t.SectionID, t.Handle, t.Name,
	)
	if err != nil {
		return 0, errors.Wrapf(err, "inserting entry type %s", t.Handle)
	}
	return res.LastInsertId()
}

func (s *Store) AddUser(username string) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO users (username) VALUES (?)`, username)
	if err != nil {
		return 0, errors.Wrapf(err, "inserting user %s", username)
	}
	return res.LastInsertId()
}

func (s *Store) AddUserGroup(g model.UserGroup, memberIDs ...int64) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO user_groups (handle, name) VALUES (?, ?)`,
		g.Handle, g.Name,
	)
	if err != nil {
		return 0, errors.Wrapf(err, "inserting user group %s", g.Handle)
	}
	groupID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, userID := range memberIDs {
		_, err = s.db.Exec(
			`INSERT INTO user_groups_users (group_id, user_id) VALUES (?, ?)`,
			groupID, userID,
		)
		if err != nil {
			return 0, errors.Wrap(err, "inserting group membership")
		}
	}
	return groupID, nil
}

// NewEntry is the insert shape for AddEntry. SiteEnabled defaults follow
// Enabled unless DisabledForSite is set.
type NewEntry struct {
	UID             string
	SiteID          int64
	SectionID       int64
	TypeID          int64
	AuthorID        int64
	Title           string
	Slug            string
	PostDate        time.Time
	ExpiryDate      *time.Time
	Disabled        bool
	DisabledForSite bool
}

// AddEntry inserts the element, site, and entry rows for one entry,
// returning the element ID.
func (s *Store) AddEntry(e NewEntry) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO elements (uid, enabled, date_created) VALUES (?, ?, ?)`,
		e.UID, !e.Disabled, time.Now().Unix(),
	)
	if err != nil {
		return 0, errors.Wrapf(err, "inserting element for %s", e.Slug)
	}
	elementID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	_, err = s.db.Exec(
		`INSERT INTO elements_sites (element_id, site_id, slug, enabled) VALUES (?, ?, ?, ?)`,
		elementID, e.SiteID, e.Slug, !e.DisabledForSite,
	)
	if err != nil {
		return 0, errors.Wrapf(err, "inserting site row for %s", e.Slug)
	}

	var authorID, expiry any
	if e.AuthorID > 0 {
		authorID = e.AuthorID
	}
	if e.ExpiryDate != nil {
		expiry = e.ExpiryDate.Unix()
	}
	_, err = s.db.Exec(
		`INSERT INTO entries (id, section_id, type_id, author_id, title, post_date, expiry_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		elementID, e.SectionID, e.TypeID, authorID, e.Title, e.PostDate.Unix(), expiry,
	)
	if err != nil {
		return 0, errors.Wrapf(err, "inserting entry for %s", e.Slug)
	}

	return elementID, nil
}

// AppendToStructure places an element at the end of a structure's root
// level.
func (s *Store) AppendToStructure(structureID, elementID int64) error {
	var maxRgt sql.NullInt64
	err := s.db.QueryRow(
		`SELECT MAX(rgt) FROM structure_elements WHERE structure_id = ?`, structureID,
	).Scan(&maxRgt)
	if err != nil {
		return errors.Wrap(err, "finding structure tail")
	}

	lft := maxRgt.Int64 + 1
	_, err = s.db.Exec(
		`INSERT INTO structure_elements (structure_id, element_id, lft, rgt, level) VALUES (?, ?, ?, ?, 1)`,
		structureID, elementID, lft, lft+1,
	)
	return errors.Wrap(err, "inserting structure placement")
}

// Sections lists all sections, for permission wiring and tooling.
func (s *Store) Sections() ([]model.Section, error) {
	rows, err := s.db.Query(`SELECT id, COALESCE(structure_id, 0), handle, name, type FROM sections ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "listing sections")
	}
	defer rows.Close()

	var out []model.Section
	for rows.Next() {
		var (
			sec model.Section
			typ string
		)
		if err := rows.Scan(&sec.ID, &sec.StructureID, &sec.Handle, &sec.Name, &typ); err != nil {
			return nil, err
		}
		sec.Type = model.SectionType(typ)
		out = append(out, sec)
	}
	return out, rows.Err()
}
