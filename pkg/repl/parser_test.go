/*
 * Copyright (c) 2024, Gideon Williams gideon@gideonw.com
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package repl

import (
	"testing"
)

func TestParseREPLCommand(t *testing.T) {
	t.Run("fetch with filters", func(t *testing.T) {
		cmd, err := ParseREPLCommand("fetch section=news status=live limit=10")
		if err != nil {
			t.Fatal(err)
		}
		if cmd.Verb != VerbFetch {
			t.Errorf("wanted verb FETCH, got %s", cmd.Verb)
		}
		if got := cmd.Filters.Get("section"); got != "news" {
			t.Errorf("wanted section=news, got %q", got)
		}
		if got := cmd.Filters.Get("limit"); got != "10" {
			t.Errorf("wanted limit=10, got %q", got)
		}
	})

	t.Run("quoted values keep spaces", func(t *testing.T) {
		cmd, err := ParseREPLCommand(`count type="article, review"`)
		if err != nil {
			t.Fatal(err)
		}
		if cmd.Verb != VerbCount {
			t.Errorf("wanted verb COUNT, got %s", cmd.Verb)
		}
		if got := cmd.Filters.Get("type"); got != "article, review" {
			t.Errorf("wanted quoted value intact, got %q", got)
		}
	})

	t.Run("exit aliases quit", func(t *testing.T) {
		cmd, err := ParseREPLCommand("exit")
		if err != nil {
			t.Fatal(err)
		}
		if cmd.Verb != VerbQuit {
			t.Errorf("wanted verb QUIT, got %s", cmd.Verb)
		}
	})

	t.Run("bare words are rejected", func(t *testing.T) {
		if _, err := ParseREPLCommand("fetch news"); err == nil {
			t.Error("expected an error for a filter without '='")
		}
	})

	t.Run("unterminated quote is rejected", func(t *testing.T) {
		if _, err := ParseREPLCommand(`fetch slug="half`); err == nil {
			t.Error("expected an error for an unterminated quote")
		}
	})
}
