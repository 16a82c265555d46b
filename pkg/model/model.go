/*
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

// Package model holds the content model shared by the query engine and the
// backing store: sections, entry types, sites, user groups, and the entry
// row shape produced by query execution.
package model

import "time"

type SectionType string

const (
	SectionSingle    SectionType = "single"
	SectionChannel   SectionType = "channel"
	SectionStructure SectionType = "structure"
)

// Section groups entries under a handle. A section of type "structure"
// carries a StructureID pointing at its ordering tree; for other types
// StructureID is zero.
type Section struct {
	ID          int64
	StructureID int64
	Handle      string
	Name        string
	Type        SectionType
}

type EntryType struct {
	ID        int64
	SectionID int64
	Handle    string
	Name      string
}

type Site struct {
	ID      int64
	Handle  string
	Name    string
	Primary bool
}

type UserGroup struct {
	ID     int64
	Handle string
	Name   string
}

// Actor is the authenticated user on whose behalf a query runs. A nil
// *Actor means no one is signed in.
type Actor struct {
	ID       int64
	Username string
}

// Edition gates the licensed feature set. Author and author-group
// filtering is only honored on the Pro edition.
type Edition int

const (
	EditionSolo Edition = iota
	EditionPro
)

func (e Edition) String() string {
	switch e {
	case EditionPro:
		return "pro"
	}
	return "solo"
}

// Entry is a single fetched row. ExpiryDate is nil for entries that never
// expire.
type Entry struct {
	ID          int64
	UID         string
	SiteID      int64
	SectionID   int64
	TypeID      int64
	AuthorID    int64
	Title       string
	Slug        string
	PostDate    time.Time
	ExpiryDate  *time.Time
	Enabled     bool
	SiteEnabled bool
}
