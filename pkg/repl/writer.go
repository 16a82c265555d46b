/*
 * Copyright (c) 2024, Gideon Williams gideon@gideonw.com
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

// Package repl renders fetched entry rows for the interactive shell.
package repl

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/dburkart/quarry/pkg/model"
	"github.com/olekukonko/tablewriter"
)

// Printable is anything renderable as rows under a header.
type Printable interface {
	Headers() []string
	Values() [][]string
}

type OutputWriter interface {
	Write(v Printable)
}

type CSVWriter struct {
	w io.Writer
}

type TextWriter struct {
	w io.Writer
}

type JSONWriter struct {
	w io.Writer
}

func NewOutputWriter(w io.Writer, t string) OutputWriter {
	switch t {
	case "csv":
		return CSVWriter{
			w,
		}
	case "json":
		return JSONWriter{
			w,
		}
	}
	return TextWriter{
		w,
	}
}

func (w CSVWriter) Write(v Printable) {
	wtr := csv.NewWriter(w.w)
	wtr.Write(v.Headers())
	wtr.WriteAll(v.Values())
}

func (w TextWriter) Write(v Printable) {
	table := tablewriter.NewWriter(w.w)
	table.SetHeader(v.Headers())
	table.AppendBulk(v.Values())
	table.Render()
}

func (w JSONWriter) Write(v Printable) {
	enc := json.NewEncoder(w.w)
	enc.Encode(v)
}

// EntryList adapts fetched entries to the Printable surface.
type EntryList []model.Entry

func (l EntryList) Headers() []string {
	return []string{"id", "section", "type", "slug", "title", "status-dates"}
}

func (l EntryList) Values() [][]string {
	out := make([][]string, 0, len(l))
	for _, e := range l {
		dates := e.PostDate.Format(time.RFC3339)
		if e.ExpiryDate != nil {
			dates += " .. " + e.ExpiryDate.Format(time.RFC3339)
		}
		out = append(out, []string{
			strconv.FormatInt(e.ID, 10),
			strconv.FormatInt(e.SectionID, 10),
			strconv.FormatInt(e.TypeID, 10),
			e.Slug,
			e.Title,
			dates,
		})
	}
	return out
}
