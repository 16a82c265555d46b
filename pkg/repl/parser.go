/*
 * Copyright (c) 2024, Gideon Williams gideon@gideonw.com
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package repl

import (
	"fmt"
	"net/url"
	"strings"
)

// Shell verbs.
const (
	VerbFetch = "FETCH"
	VerbCount = "COUNT"
	VerbTags  = "TAGS"
	VerbHelp  = "HELP"
	VerbQuit  = "QUIT"
)

// Command is one parsed shell line: a verb plus its key=value filters.
type Command struct {
	Verb    string
	Filters url.Values
}

// ParseREPLCommand parses input from the command line, e.g.
//
//	fetch section=news status=live limit=10
//	count type="article, review"
//
// This function assumes there is no '\n'.
func ParseREPLCommand(line string) (Command, error) {
	cmd := Command{Filters: url.Values{}}

	fields, err := splitQuoted(line)
	if err != nil {
		return cmd, err
	}
	if len(fields) == 0 {
		return cmd, fmt.Errorf("empty command")
	}

	cmd.Verb = strings.ToUpper(fields[0])
	switch cmd.Verb {
	case VerbFetch, VerbCount, VerbTags, VerbHelp, VerbQuit:
	case "EXIT":
		cmd.Verb = VerbQuit
	default:
		return cmd, fmt.Errorf("unknown command %q", fields[0])
	}

	for _, field := range fields[1:] {
		key, value, found := strings.Cut(field, "=")
		if !found || key == "" {
			return cmd, fmt.Errorf("expected key=value, got %q", field)
		}
		cmd.Filters.Set(key, value)
	}

	return cmd, nil
}

// splitQuoted splits on spaces, honoring double quotes so values can carry
// spaces and commas: type="article, review".
func splitQuoted(line string) ([]string, error) {
	var fields []string
	var cur strings.Builder
	inQuote := false

	flush := func() {
		if cur.Len() > 0 {
			fields = append(fields, cur.String())
			cur.Reset()
		}
	}

	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == ' ' && !inQuote:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated quote")
	}
	flush()

	return fields, nil
}
