/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package query

import (
	"fmt"
	"net/url"
	"strconv"
)

// FromValues maps string key/value filters (HTTP query params, shell
// arguments) onto an entry query. Unknown keys are rejected so callers
// hear about typos instead of silently unfiltered fetches.
func FromValues(vals url.Values) (*EntryQuery, error) {
	q := NewEntryQuery()

	for key := range vals {
		v := vals.Get(key)
		if v == "" {
			continue
		}
		switch key {
		case "section":
			q.Section(v)
		case "type":
			q.Type(v)
		case "author":
			q.Author(v)
		case "authorGroup":
			q.AuthorGroup(v)
		case "slug":
			q.Slug(v)
		case "uid":
			q.UID(v)
		case "ref":
			q.Ref(v)
		case "postDate":
			q.PostDate(v)
		case "expiryDate":
			q.ExpiryDate(v)
		case "before":
			q.Before(v)
		case "after":
			q.After(v)
		case "status":
			if v == "any" {
				q.AnyStatus()
			} else {
				q.Status(v)
			}
		case "editable":
			enabled, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("editable must be a boolean")
			}
			q.Editable(enabled)
		case "site":
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("site must be a site ID")
			}
			q.SiteID(id)
		case "structure":
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("structure must be a structure ID")
			}
			q.StructureID(id)
		case "orderBy":
			q.OrderBy(v)
		case "limit":
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("limit must be a non-negative integer")
			}
			q.Limit(n)
		case "offset":
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("offset must be a non-negative integer")
			}
			q.Offset(n)
		default:
			return nil, fmt.Errorf("unknown filter %q", key)
		}
	}

	return q, nil
}
