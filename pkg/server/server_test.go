/*
 * Copyright (c) 2024, Gideon Williams <gideon@gideonw.com>
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/dburkart/quarry/pkg/model"
	"github.com/dburkart/quarry/pkg/store"
	"github.com/rs/zerolog"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "content.db"), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	siteID, err := st.AddSite(model.Site{Handle: "default", Name: "Default", Primary: true})
	if err != nil {
		t.Fatal(err)
	}
	newsID, err := st.AddSection(model.Section{Handle: "news", Name: "News", Type: model.SectionChannel})
	if err != nil {
		t.Fatal(err)
	}
	typeID, err := st.AddEntryType(model.EntryType{SectionID: newsID, Handle: "article", Name: "Article"})
	if err != nil {
		t.Fatal(err)
	}
	_, err = st.AddEntry(store.NewEntry{
		UID: "welcome-uid", SiteID: siteID,
		SectionID: newsID, TypeID: typeID,
		Title: "Welcome", Slug: "welcome",
		PostDate: time.Now().UTC().Add(-time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}

	s := New(zerolog.Nop(), st, model.EditionSolo, 0, 0)
	return &s
}

func getEntries(t *testing.T, s *Server, rawQuery string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/entries?"+rawQuery, nil)
	rec := httptest.NewRecorder()
	s.handleEntries(rec, req)
	return rec
}

func TestEntriesEndpoint(t *testing.T) {
	s := testServer(t)

	rec := getEntries(t, s, "section=news")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var resp entriesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data) != 1 || resp.Data[0].Slug != "welcome" {
		t.Errorf("unexpected payload %+v", resp.Data)
	}
	if len(resp.CacheTags) != 1 || resp.CacheTags[0] == "" {
		t.Errorf("expected a section cache tag, got %v", resp.CacheTags)
	}
}

func TestEntriesEmptyResult(t *testing.T) {
	s := testServer(t)

	rec := getEntries(t, s, "section=ghost")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var resp entriesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	// An unknown handle short-circuits but still answers with an empty
	// list, never null.
	if resp.Data == nil || len(resp.Data) != 0 {
		t.Errorf("expected an empty data list, got %+v", resp.Data)
	}
}

func TestEntriesRejectsUnknownFilter(t *testing.T) {
	s := testServer(t)

	rec := getEntries(t, s, "flavor=spicy")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, expected a bad request", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["error"] == "" {
		t.Error("expected an error message in the body")
	}
}
