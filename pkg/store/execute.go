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
	"github.com/dburkart/quarry/pkg/query"
	"github.com/pkg/errors"
)

// Entries executes a prepared descriptor and hydrates the matching rows.
// A short-circuited descriptor yields nothing without touching the
// database.
func (s *Store) Entries(d *query.Descriptor) ([]model.Entry, error) {
	if d.None {
		return nil, nil
	}

	stmt, args, err := d.Builder().ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building entry query")
	}
	s.log.Trace().Str("sql", stmt).Msg("executing entry query")

	rows, err := s.db.Query(stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "executing entry query")
	}
	defer rows.Close()

	var out []model.Entry
	for rows.Next() {
		var (
			e        model.Entry
			post     int64
			expiry   sql.NullInt64
			authorID sql.NullInt64
		)
		err = rows.Scan(
			&e.ID, &e.UID, &e.Enabled,
			&e.SiteID, &e.Slug, &e.SiteEnabled,
			&e.SectionID, &e.TypeID, &authorID,
			&e.Title, &post, &expiry,
		)
		if err != nil {
			return nil, errors.Wrap(err, "scanning entry row")
		}
		e.AuthorID = authorID.Int64
		e.PostDate = time.Unix(post, 0).UTC()
		if expiry.Valid {
			tm := time.Unix(expiry.Int64, 0).UTC()
			e.ExpiryDate = &tm
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Count executes a descriptor as a COUNT(*), honoring the short-circuit.
func (s *Store) Count(d *query.Descriptor) (int64, error) {
	if d.None {
		return 0, nil
	}

	counted := *d
	counted.Columns = []string{"COUNT(*)"}
	counted.OrderBy = nil
	counted.Limit = -1
	counted.Offset = -1

	stmt, args, err := counted.Builder().ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building entry count")
	}

	var n int64
	if err := s.db.QueryRow(stmt, args...).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "executing entry count")
	}
	return n, nil
}
