/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package query

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/dburkart/quarry/pkg/query/param"
)

// resolveRefs compiles reference tokens into a disjunctive predicate. A
// bare "slug" token matches on slug alone; a "section/slug" token pins the
// section handle as well and requires the section join. An empty token
// list contributes nothing.
func resolveRefs(raw any) (sq.Sqlizer, bool, error) {
	tokens := param.Strings(raw)
	if len(tokens) == 0 {
		return nil, false, nil
	}

	var needsSections bool
	or := make(sq.Or, 0, len(tokens))

	for _, token := range tokens {
		var segments []string
		for _, seg := range strings.Split(token, "/") {
			if seg = strings.TrimSpace(seg); seg != "" {
				segments = append(segments, seg)
			}
		}

		switch {
		case len(segments) == 0:
			continue
		case len(segments) == 1:
			or = append(or, sq.Eq{TableElementSites + ".slug": segments[0]})
		default:
			needsSections = true
			or = append(or, sq.And{
				sq.Eq{TableSections + ".handle": segments[0]},
				sq.Eq{TableElementSites + ".slug": segments[1]},
			})
		}
	}

	if len(or) == 0 {
		return nil, false, nil
	}
	if len(or) == 1 {
		return or[0], needsSections, nil
	}
	return or, needsSections, nil
}
