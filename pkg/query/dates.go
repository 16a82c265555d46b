/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package query

import (
	"fmt"
	"time"
	"unicode"
	"unicode/utf8"
)

var numberFormats = [...]string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC822,
	time.RFC822Z,
	"2006/01/02",
	"02/01/2006",
}

var letterFormats = [...]string{
	"Jan 02, 2006",
	time.RFC850,
	time.UnixDate,
	time.RFC1123,
	time.RFC1123Z,
	time.Stamp,
}

// ParseVagueDateTime accepts the timestamp spellings tolerated in date
// parameters and returns the instant they name.
func ParseVagueDateTime(some string) (time.Time, error) {
	first, _ := utf8.DecodeRuneInString(some)
	var found time.Time

	switch {
	case unicode.IsDigit(first):
		for _, theFmt := range numberFormats {
			tm, err := time.Parse(theFmt, some)
			if err == nil {
				found = tm
				break
			}
		}
	default:
		for _, theFmt := range letterFormats {
			tm, err := time.Parse(theFmt, some)
			if err == nil {
				found = tm
				break
			}
		}
	}

	if found.IsZero() {
		return found, fmt.Errorf("specified time '%s' did not match a known timestamp", some)
	}

	return found, nil
}

// asTimestamp converts a date operand to unix seconds, the representation
// date columns are stored and compared in.
func asTimestamp(v any) (int64, error) {
	switch val := v.(type) {
	case time.Time:
		return val.Unix(), nil
	case *time.Time:
		if val == nil {
			return 0, fmt.Errorf("nil time in date parameter")
		}
		return val.Unix(), nil
	case int:
		return int64(val), nil
	case int64:
		return val, nil
	case string:
		tm, err := ParseVagueDateTime(val)
		if err != nil {
			return 0, err
		}
		return tm.Unix(), nil
	}
	return 0, fmt.Errorf("unsupported date operand of type %T", v)
}
