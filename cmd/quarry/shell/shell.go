/*
 * Copyright (c) 2024, Gideon Williams <gideon@gideonw.com>
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package shell

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dburkart/quarry/pkg/model"
	"github.com/dburkart/quarry/pkg/query"
	"github.com/dburkart/quarry/pkg/repl"
	"github.com/dburkart/quarry/pkg/store"
)

var log zerolog.Logger

var (
	Command = &cobra.Command{
		Use:   "shell",
		Short: "Interactive terminal for querying the content database",

		Run: func(cmd *cobra.Command, args []string) {
			log := viper.Get("logger").(zerolog.Logger)
			output := viper.GetString("quarry.output")
			if len(filterStringSlice([]string{"csv", "text", "json"}, output)) != 1 {
				log.Fatal().Msg("unsupported output format")
			}

			st, err := store.Open(viper.GetString("quarry.database"), log)
			if err != nil {
				log.Fatal().Err(err).Msg("unable to open content database")
			}
			defer st.Close()

			readlinePrompt(st, edition(), output)
		},
	}
)

func init() {
	log = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).
		With().
		Timestamp().
		Caller().
		Logger()

	// Flags for this command
	Command.Flags().StringP("output", "o", "text", "Output format of results [csv, json, text]")

	// Bind flags to viper
	viper.BindPFlag("quarry.output", Command.Flags().Lookup("output"))
}

func edition() model.Edition {
	if viper.GetString("quarry.edition") == "pro" {
		return model.EditionPro
	}
	return model.EditionSolo
}

func filterStringSlice(s []string, prefix string) []string {
	retList := []string{}
	for i := range s {
		if strings.HasPrefix(s[i], prefix) {
			retList = append(retList, s[i])
		}
	}
	return retList
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

// listSectionFilters completes "section=" with the handles in the store.
func listSectionFilters(st *store.Store) func(string) []string {
	return func(line string) []string {
		sections, err := st.Sections()
		if err != nil {
			return []string{}
		}
		options := make([]string, 0, len(sections))
		for _, s := range sections {
			options = append(options, "section="+s.Handle)
		}
		return options
	}
}

func filterKeys() []readline.PrefixCompleterInterface {
	keys := []string{
		"section=", "type=", "author=", "authorGroup=", "slug=", "uid=",
		"ref=", "postDate=", "expiryDate=", "before=", "after=",
		"status=", "site=", "editable=", "limit=", "offset=", "orderBy=",
	}

	ret := []readline.PrefixCompleterInterface{}
	for i := range keys {
		ret = append(ret, readline.PcItem(keys[i]))
	}
	return ret
}

func readlinePrompt(st *store.Store, ed model.Edition, output string) {
	// Configure the completer
	sectionItem := readline.PcItemDynamic(listSectionFilters(st))
	filters := append(filterKeys(), sectionItem)

	completer := readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("fetch", filters...),
		readline.PcItem("count", filters...),
		readline.PcItem("tags", filters...),
		readline.PcItem("exit"),
	)

	// Setup the readline executor
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31m>\033[0m ",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("unable to configure readline")
	}
	defer rl.Close()

	writer := repl.NewOutputWriter(os.Stdout, output)

	for {
		line, err := rl.Readline()
		if err != nil {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		cmd, err := repl.ParseREPLCommand(line)
		if err != nil {
			fmt.Println(err)
			continue
		}

		switch cmd.Verb {
		case repl.VerbQuit:
			return
		case repl.VerbHelp:
			fmt.Println("commands: fetch, count, tags [key=value ...], exit")
			continue
		}

		q, err := query.FromValues(cmd.Filters)
		if err != nil {
			fmt.Println(err)
			continue
		}

		start := time.Now()
		d, err := q.Prepare(prepContext(st, ed))
		if err != nil {
			fmt.Println(err)
			continue
		}

		switch cmd.Verb {
		case repl.VerbTags:
			for _, tag := range d.CacheTags {
				fmt.Println(tag)
			}
		case repl.VerbCount:
			n, err := st.Count(d)
			if err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Printf("%s entries in %s\n", humanize.Comma(n), time.Since(start))
		case repl.VerbFetch:
			entries, err := st.Entries(d)
			if err != nil {
				fmt.Println(err)
				continue
			}
			writer.Write(repl.EntryList(entries))
			fmt.Printf("%s entries in %s\n", humanize.Comma(int64(len(entries))), time.Since(start))
		}
	}
}

// prepContext grants the shell a fully permissive evaluation context. The
// shell is an operator tool; editable scoping still works, treating every
// section as editable by the synthetic operator actor.
func prepContext(st *store.Store, ed model.Edition) query.Context {
	sections, err := st.Sections()
	if err != nil {
		log.Warn().Err(err).Msg("could not enumerate sections for permissions")
	}
	peers := make(map[int64]bool, len(sections))
	for _, s := range sections {
		peers[s.ID] = true
	}

	return query.Context{
		Lookup:  st,
		Actor:   &model.Actor{ID: 1, Username: "operator"},
		Perms:   query.StaticPermissions{Sections: sections, Peers: peers},
		Edition: ed,
		Now:     time.Now().UTC(),
		Log:     &log,
	}
}
