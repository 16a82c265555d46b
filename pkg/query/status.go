/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package query

import (
	"time"

	sq "github.com/Masterminds/squirrel"
)

// Element-generic statuses.
const (
	StatusEnabled  = "enabled"
	StatusDisabled = "disabled"
)

// Entry statuses. At any single instant the three temporal states
// partition the enabled rows: live, pending and expired never overlap and
// leave no enabled row unclassified.
const (
	StatusLive    = "live"
	StatusPending = "pending"
	StatusExpired = "expired"
)

// enabledCond matches rows enabled both globally and for the current site.
func enabledCond() sq.Sqlizer {
	return sq.Eq{
		TableElements + ".enabled":     true,
		TableElementSites + ".enabled": true,
	}
}

// elementStatusCond resolves the element-generic statuses. Unknown names
// fall out as a ParamError; entry-specific names never reach here.
func elementStatusCond(status string) (sq.Sqlizer, error) {
	switch status {
	case StatusEnabled:
		return enabledCond(), nil
	case StatusDisabled:
		return sq.Or{
			sq.Eq{TableElements + ".enabled": false},
			sq.Eq{TableElementSites + ".enabled": false},
		}, nil
	}
	return nil, paramErr("status", "unknown status '%s'", status)
}

// entryStatusCond resolves an entry status name into its predicate,
// relative to the single instant now captured for this preparation pass.
func entryStatusCond(status string, now time.Time) (sq.Sqlizer, error) {
	ts := now.Unix()
	postDate := TableEntries + ".post_date"
	expiryDate := TableEntries + ".expiry_date"

	switch status {
	case StatusLive:
		return sq.And{
			enabledCond(),
			sq.LtOrEq{postDate: ts},
			sq.Or{
				sq.Eq{expiryDate: nil},
				sq.Gt{expiryDate: ts},
			},
		}, nil
	case StatusPending:
		return sq.And{
			enabledCond(),
			sq.Gt{postDate: ts},
		}, nil
	case StatusExpired:
		return sq.And{
			enabledCond(),
			sq.NotEq{expiryDate: nil},
			sq.LtOrEq{expiryDate: ts},
		}, nil
	}

	return elementStatusCond(status)
}

// applyStatus ORs together the requested statuses. An explicit "any
// status" request contributes nothing.
func (q *EntryQuery) applyStatus(d *Descriptor, now time.Time) error {
	names := q.statusNames()
	if len(names) == 0 {
		return nil
	}

	or := make(sq.Or, 0, len(names))
	for _, name := range names {
		cond, err := entryStatusCond(name, now)
		if err != nil {
			return err
		}
		or = append(or, cond)
	}
	if len(or) == 1 {
		d.where(or[0])
		return nil
	}
	d.where(or)
	return nil
}
