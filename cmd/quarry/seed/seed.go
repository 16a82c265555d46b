/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package seed

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dburkart/quarry/pkg/model"
	"github.com/dburkart/quarry/pkg/store"
)

var (
	Command = &cobra.Command{
		Use:   "seed",
		Short: "Populate a demo content database",

		Run: func(cmd *cobra.Command, args []string) {
			log := viper.Get("logger").(zerolog.Logger)

			st, err := store.Open(viper.GetString("quarry.database"), log)
			if err != nil {
				log.Fatal().Err(err).Msg("unable to open content database")
			}
			defer st.Close()

			count := viper.GetInt("quarry.seed-count")
			start := time.Now()
			if err := seed(st, count); err != nil {
				log.Fatal().Err(err).Msg("seeding failed")
			}

			fmt.Printf("seeded %s entries in %s\n", humanize.Comma(int64(count)), time.Since(start))
		},
	}
)

func init() {
	// Flags for this command
	Command.Flags().IntP("count", "n", 500, "Number of entries to create")

	// Bind flags to viper
	viper.BindPFlag("quarry.seed-count", Command.Flags().Lookup("count"))
}

func seed(st *store.Store, count int) error {
	siteID, err := st.AddSite(model.Site{Handle: "default", Name: "Default", Primary: true})
	if err != nil {
		return err
	}

	structureID, err := st.AddStructure()
	if err != nil {
		return err
	}

	newsID, err := st.AddSection(model.Section{Handle: "news", Name: "News", Type: model.SectionChannel})
	if err != nil {
		return err
	}
	docsID, err := st.AddSection(model.Section{
		Handle: "docs", Name: "Documentation", Type: model.SectionStructure, StructureID: structureID,
	})
	if err != nil {
		return err
	}

	articleID, err := st.AddEntryType(model.EntryType{SectionID: newsID, Handle: "article", Name: "Article"})
	if err != nil {
		return err
	}
	pageID, err := st.AddEntryType(model.EntryType{SectionID: docsID, Handle: "page", Name: "Page"})
	if err != nil {
		return err
	}

	authorID, err := st.AddUser("author")
	if err != nil {
		return err
	}
	if _, err = st.AddUserGroup(model.UserGroup{Handle: "writers", Name: "Writers"}, authorID); err != nil {
		return err
	}

	now := time.Now().UTC()
	for i := 0; i < count; i++ {
		entry := store.NewEntry{
			UID:       uuid.NewString(),
			SiteID:    siteID,
			SectionID: newsID,
			TypeID:    articleID,
			AuthorID:  authorID,
			Title:     fmt.Sprintf("Article %d", i),
			Slug:      fmt.Sprintf("article-%d", i),
			PostDate:  now.Add(-time.Duration(i) * time.Hour),
		}

		// Sprinkle in some docs pages, future posts, and expired posts so
		// every status has rows to match.
		switch {
		case i%5 == 0:
			entry.SectionID = docsID
			entry.TypeID = pageID
			entry.Title = fmt.Sprintf("Page %d", i)
			entry.Slug = fmt.Sprintf("page-%d", i)
		case i%7 == 0:
			entry.PostDate = now.Add(time.Duration(i) * time.Hour)
		case i%11 == 0:
			expiry := now.Add(-time.Duration(i) * time.Minute)
			entry.ExpiryDate = &expiry
		}

		elementID, err := st.AddEntry(entry)
		if err != nil {
			return err
		}
		if entry.SectionID == docsID {
			if err := st.AppendToStructure(structureID, elementID); err != nil {
				return err
			}
		}
	}

	return nil
}
