/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package store

import (
	"github.com/pkg/errors"
)

// SchemaVersion is the version of the content schema as recorded in the
// database. This is primarily used for migration.
const SchemaVersion = 1

var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS schema_info (
		version INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sites (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		handle TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		is_primary INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS structures (
		id INTEGER PRIMARY KEY AUTOINCREMENT
	)`,
	`CREATE TABLE IF NOT EXISTS sections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		structure_id INTEGER REFERENCES structures(id),
		handle TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT 'channel'
	)`,
	`CREATE TABLE IF NOT EXISTS entry_types (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		section_id INTEGER NOT NULL REFERENCES sections(id),
		handle TEXT NOT NULL,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS user_groups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		handle TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_groups_users (
		group_id INTEGER NOT NULL REFERENCES user_groups(id),
		user_id INTEGER NOT NULL REFERENCES users(id),
		PRIMARY KEY (group_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS elements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uid TEXT NOT NULL UNIQUE,
		enabled INTEGER NOT NULL DEFAULT 1,
		date_created INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS elements_sites (
		element_id INTEGER NOT NULL REFERENCES elements(id),
		site_id INTEGER NOT NULL REFERENCES sites(id),
		slug TEXT NOT NULL,
		enabled INTEGER NOT NULL DEFAULT 1,
		PRIMARY KEY (element_id, site_id)
	)`,
	`CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY REFERENCES elements(id),
		section_id INTEGER NOT NULL REFERENCES sections(id),
		type_id INTEGER NOT NULL REFERENCES entry_types(id),
		author_id INTEGER REFERENCES users(id),
		title TEXT NOT NULL,
		post_date INTEGER NOT NULL,
		expiry_date INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS structure_elements (
		structure_id INTEGER NOT NULL REFERENCES structures(id),
		element_id INTEGER NOT NULL REFERENCES elements(id),
		lft INTEGER NOT NULL,
		rgt INTEGER NOT NULL,
		level INTEGER NOT NULL,
		PRIMARY KEY (structure_id, element_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_entries_section ON entries(section_id)`,
	`CREATE INDEX IF NOT EXISTS idx_entries_type ON entries(type_id)`,
	`CREATE INDEX IF NOT EXISTS idx_entries_post_date ON entries(post_date)`,
	`CREATE INDEX IF NOT EXISTS idx_elements_sites_slug ON elements_sites(slug)`,
}

func (s *Store) detectVersion() (int, error) {
	var exists int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_info'`,
	).Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, nil
	}

	var version int
	err = s.db.QueryRow(`SELECT version FROM schema_info`).Scan(&version)
	if err != nil {
		return 0, nil
	}
	return version, nil
}

func (s *Store) migrate() error {
	version, err := s.detectVersion()
	if err != nil {
		return errors.Wrap(err, "detecting schema version")
	}
	if version >= SchemaVersion {
		return nil
	}

	s.log.Debug().Int("from", version).Int("to", SchemaVersion).Msg("migrating content schema")

	for _, ddl := range schemaDDL {
		if _, err := s.db.Exec(ddl); err != nil {
			return errors.Wrap(err, "applying content schema")
		}
	}

	if _, err := s.db.Exec(`DELETE FROM schema_info`); err != nil {
		return err
	}
	if _, err := s.db.Exec(`INSERT INTO schema_info (version) VALUES (?)`, SchemaVersion); err != nil {
		return err
	}
	return nil
}
