/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

// Package store is the SQLite-backed persistence layer: it owns the content
// schema, answers the query engine's lookup reads, and executes prepared
// query descriptors.
package store

import (
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type Store struct {
	db   *sql.DB
	path string
	log  zerolog.Logger
}

// Open opens (creating if necessary) the content database at path and
// brings its schema up to date.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening content database")
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		log.Debug().Err(err).Msg("could not set busy_timeout")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		log.Debug().Err(err).Msg("could not enable foreign keys")
	}

	s := &Store{db: db, path: path, log: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// IDs implements query.Lookup.
func (s *Store) IDs(table string, cond sq.Sqlizer) ([]int64, error) {
	stmt, args, err := sq.Select("id").From(table).Where(cond).ToSql()
	if err != nil {
		return nil, errors.Wrapf(err, "building id lookup against %s", table)
	}

	rows, err := s.db.Query(stmt, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "looking up ids in %s", table)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ScalarInt implements query.Lookup.
func (s *Store) ScalarInt(table, column string, cond sq.Sqlizer) (int64, bool, error) {
	stmt, args, err := sq.Select(column).From(table).Where(cond).Limit(1).ToSql()
	if err != nil {
		return 0, false, errors.Wrapf(err, "building scalar lookup against %s", table)
	}

	var val sql.NullInt64
	err = s.db.QueryRow(stmt, args...).Scan(&val)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrapf(err, "looking up %s.%s", table, column)
	}
	return val.Int64, true, nil
}
