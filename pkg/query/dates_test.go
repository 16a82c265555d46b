/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package query

import (
	"testing"
	"time"
)

func TestParseVagueDateTime(t *testing.T) {
	tests := []string{
		"2024-03-01T12:30:00Z",
		"2024-03-01 12:30:00",
		"2024-03-01 12:30",
		"2024-03-01",
		"2024/03/01",
		"Mar 01, 2024",
	}

	for _, test := range tests {
		t.Run(test, func(t *testing.T) {
			tm, err := ParseVagueDateTime(test)
			if err != nil {
				t.Fatal(err)
			}
			if tm.Year() != 2024 || tm.Month() != time.March || tm.Day() != 1 {
				t.Errorf("parsed to unexpected date %s", tm)
			}
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		if _, err := ParseVagueDateTime("first thing tomorrow"); err == nil {
			t.Error("expected an error for an unknown timestamp")
		}
	})
}

func TestAsTimestamp(t *testing.T) {
	want := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	for _, input := range []any{want, "2024-03-01T12:30:00Z", want.Unix(), int(want.Unix())} {
		ts, err := asTimestamp(input)
		if err != nil {
			t.Fatal(err)
		}
		if ts != want.Unix() {
			t.Errorf("asTimestamp(%v) = %d, wanted %d", input, ts, want.Unix())
		}
	}

	if _, err := asTimestamp(3.14); err == nil {
		t.Error("expected an error for an unsupported operand type")
	}
}
