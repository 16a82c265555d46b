/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/dburkart/quarry/pkg/model"
	"github.com/dburkart/quarry/pkg/query"
	"github.com/rs/zerolog"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store *Store

	siteID    int64
	newsID    int64
	docsID    int64
	articleID int64
	pageID    int64
	authorID  int64
	otherID   int64
	groupID   int64
}

// newFixture opens a fresh database and seeds a small content set: a news
// channel with one entry in each temporal state plus a disabled one, and a
// structured docs section with two pages.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "content.db"), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	f := &fixture{store: s}

	if f.siteID, err = s.AddSite(model.Site{Handle: "default", Name: "Default", Primary: true}); err != nil {
		t.Fatal(err)
	}

	structureID, err := s.AddStructure()
	if err != nil {
		t.Fatal(err)
	}

	if f.newsID, err = s.AddSection(model.Section{Handle: "news", Name: "News", Type: model.SectionChannel}); err != nil {
		t.Fatal(err)
	}
	if f.docsID, err = s.AddSection(model.Section{StructureID: structureID, Handle: "docs", Name: "Docs", Type: model.SectionStructure}); err != nil {
		t.Fatal(err)
	}

	if f.articleID, err = s.AddEntryType(model.EntryType{SectionID: f.newsID, Handle: "article", Name: "Article"}); err != nil {
		t.Fatal(err)
	}
	if f.pageID, err = s.AddEntryType(model.EntryType{SectionID: f.docsID, Handle: "page", Name: "Page"}); err != nil {
		t.Fatal(err)
	}

	if f.authorID, err = s.AddUser("alice"); err != nil {
		t.Fatal(err)
	}
	if f.otherID, err = s.AddUser("bob"); err != nil {
		t.Fatal(err)
	}
	if f.groupID, err = s.AddUserGroup(model.UserGroup{Handle: "writers", Name: "Writers"}, f.authorID); err != nil {
		t.Fatal(err)
	}

	past := fixedNow.Add(-24 * time.Hour)
	longPast := fixedNow.Add(-48 * time.Hour)
	future := fixedNow.Add(24 * time.Hour)

	news := func(slug string, post time.Time, expiry *time.Time, disabled bool, author int64) {
		t.Helper()
		_, err := s.AddEntry(NewEntry{
			UID: slug + "-uid", SiteID: f.siteID,
			SectionID: f.newsID, TypeID: f.articleID, AuthorID: author,
			Title: slug, Slug: slug, PostDate: post, ExpiryDate: expiry,
			Disabled: disabled,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	news("welcome", past, nil, false, f.authorID)
	news("upcoming", future, nil, false, f.authorID)
	news("retired", longPast, &past, false, f.otherID)
	news("hidden", past, nil, true, f.otherID)

	for _, slug := range []string{"guide", "intro"} {
		id, err := s.AddEntry(NewEntry{
			UID: slug + "-uid", SiteID: f.siteID,
			SectionID: f.docsID, TypeID: f.pageID, AuthorID: f.authorID,
			Title: slug, Slug: slug, PostDate: past,
		})
		if err != nil {
			t.Fatal(err)
		}
		if err := s.AppendToStructure(structureID, id); err != nil {
			t.Fatal(err)
		}
	}

	return f
}

func (f *fixture) context() query.Context {
	return query.Context{Lookup: f.store, Now: fixedNow}
}

func (f *fixture) fetch(t *testing.T, q *query.EntryQuery, ctx query.Context) []model.Entry {
	t.Helper()
	d, err := q.Prepare(ctx)
	if err != nil {
		t.Fatal(err)
	}
	entries, err := f.store.Entries(d)
	if err != nil {
		t.Fatal(err)
	}
	return entries
}

func slugs(entries []model.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Slug
	}
	return out
}

func TestMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.db")

	s, err := Open(path, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopening a migrated database: %v", err)
	}
	s.Close()
}

func TestSectionHandleResolution(t *testing.T) {
	f := newFixture(t)

	entries := f.fetch(t, query.NewEntryQuery().Section("news"), f.context())
	got := slugs(entries)
	if len(got) != 1 || got[0] != "welcome" {
		t.Errorf("live news entries %v, expected [welcome]", got)
	}
}

func TestStatusesPartitionEnabledEntries(t *testing.T) {
	f := newFixture(t)
	ctx := f.context()

	counts := map[string]int{}
	for _, status := range []string{query.StatusLive, query.StatusPending, query.StatusExpired} {
		entries := f.fetch(t, query.NewEntryQuery().Section("news").Status(status), ctx)
		counts[status] = len(entries)
	}

	enabled := f.fetch(t, query.NewEntryQuery().Section("news").Status(query.StatusEnabled), ctx)
	total := counts[query.StatusLive] + counts[query.StatusPending] + counts[query.StatusExpired]
	if total != len(enabled) {
		t.Errorf("statuses cover %d entries, %d are enabled: %v", total, len(enabled), counts)
	}

	all := f.fetch(t, query.NewEntryQuery().Section("news").AnyStatus(), ctx)
	if len(all) != len(enabled)+1 {
		t.Errorf("expected exactly one disabled entry, got %d of %d", len(all)-len(enabled), len(all))
	}
}

func TestStructureOrder(t *testing.T) {
	f := newFixture(t)

	entries := f.fetch(t, query.NewEntryQuery().Section("docs"), f.context())
	got := slugs(entries)
	if len(got) != 2 || got[0] != "guide" || got[1] != "intro" {
		t.Errorf("structured order %v, expected [guide intro]", got)
	}
}

func TestRefFetch(t *testing.T) {
	f := newFixture(t)

	entries := f.fetch(t, query.NewEntryQuery().Ref("news/welcome"), f.context())
	got := slugs(entries)
	if len(got) != 1 || got[0] != "welcome" {
		t.Errorf("ref fetch %v, expected [welcome]", got)
	}
}

func TestAuthorGroupFetch(t *testing.T) {
	f := newFixture(t)
	ctx := f.context()
	ctx.Edition = model.EditionPro

	entries := f.fetch(t, query.NewEntryQuery().Section("news").AuthorGroup("writers").AnyStatus(), ctx)
	for _, e := range entries {
		if e.AuthorID != f.authorID {
			t.Errorf("entry %s authored by %d, expected only group members", e.Slug, e.AuthorID)
		}
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries by writers, got %v", slugs(entries))
	}
}

func TestEditableFetch(t *testing.T) {
	f := newFixture(t)

	sections, err := f.store.Sections()
	if err != nil {
		t.Fatal(err)
	}

	ctx := f.context()
	ctx.Actor = &model.Actor{ID: f.authorID}
	ctx.Perms = query.StaticPermissions{Sections: sections, Peers: map[int64]bool{}}

	entries := f.fetch(t, query.NewEntryQuery().Section("news").Editable(true).AnyStatus(), ctx)
	for _, e := range entries {
		if e.AuthorID != f.authorID {
			t.Errorf("entry %s is not editable by the actor", e.Slug)
		}
	}
	if len(entries) != 2 {
		t.Errorf("expected the actor's 2 news entries, got %v", slugs(entries))
	}
}

func TestCountMatchesFetch(t *testing.T) {
	f := newFixture(t)
	ctx := f.context()

	d, err := query.NewEntryQuery().Section("news").AnyStatus().Prepare(ctx)
	if err != nil {
		t.Fatal(err)
	}
	entries, err := f.store.Entries(d)
	if err != nil {
		t.Fatal(err)
	}
	n, err := f.store.Count(d)
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(len(entries)) {
		t.Errorf("count %d disagrees with %d fetched rows", n, len(entries))
	}
}

func TestShortCircuitSkipsDatabase(t *testing.T) {
	f := newFixture(t)

	d, err := query.NewEntryQuery().Section("ghost").Prepare(f.context())
	if err != nil {
		t.Fatal(err)
	}
	if !d.None {
		t.Fatal("an unknown handle must short-circuit")
	}

	entries, err := f.store.Entries(d)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("short-circuited descriptor returned %v", slugs(entries))
	}
}
