/*
 * Copyright (c) 2024, Gideon Williams <gideon@gideonw.com>
 * Copyright (c) 2024, Dana Burkart <dana.burkart@gmail.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

// Package server exposes the content store over a small read-only JSON API,
// with Prometheus metrics alongside.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dburkart/quarry/pkg/model"
	"github.com/dburkart/quarry/pkg/query"
	"github.com/dburkart/quarry/pkg/store"
	"github.com/rs/zerolog"
)

type Server struct {
	log     zerolog.Logger
	metrics MetricsStore
	store   *store.Store
	edition model.Edition

	apiPort     int
	metricsPort int
}

func New(log zerolog.Logger, st *store.Store, edition model.Edition, apiPort, metricsPort int) Server {
	return Server{
		log:         log,
		metrics:     NewMetricsStore(),
		store:       st,
		edition:     edition,
		apiPort:     apiPort,
		metricsPort: metricsPort,
	}
}

// ServeAPI blocks serving the JSON API.
func (s *Server) ServeAPI() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/entries", s.handleEntries)

	s.log.Info().Int("api-port", s.apiPort).Msg("listening for API requests")
	return http.ListenAndServe(fmt.Sprintf(":%d", s.apiPort), mux)
}

// ServeMetrics blocks serving the Prometheus registry.
func (s *Server) ServeMetrics() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.metrics.Handler())

	s.log.Info().Int("metrics-port", s.metricsPort).Msg("listening for metrics requests")
	return http.ListenAndServe(fmt.Sprintf(":%d", s.metricsPort), mux)
}

type entriesResponse struct {
	Data      []entryJSON `json:"data"`
	CacheTags []string    `json:"cacheTags"`
}

type entryJSON struct {
	ID         int64  `json:"id"`
	UID        string `json:"uid"`
	SiteID     int64  `json:"siteId"`
	SectionID  int64  `json:"sectionId"`
	TypeID     int64  `json:"typeId"`
	AuthorID   int64  `json:"authorId,omitempty"`
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	PostDate   string `json:"postDate"`
	ExpiryDate string `json:"expiryDate,omitempty"`
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.metrics.IncRequests("entries")

	q, err := query.FromValues(r.URL.Query())
	if err != nil {
		s.log.Debug().Err(err).Str("query", r.URL.RawQuery).Msg("rejecting entries request")
		writeError(w, http.StatusBadRequest, err)
		return
	}

	d, err := q.Prepare(query.Context{
		Lookup:  s.store,
		Edition: s.edition,
		Now:     time.Now().UTC(),
		Log:     &s.log,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if d.None {
		s.metrics.IncShortCircuits()
	}

	entries, err := s.store.Entries(d)
	if err != nil {
		s.log.Error().Err(err).Msg("entry fetch failed")
		writeError(w, http.StatusInternalServerError, fmt.Errorf("fetch failed"))
		return
	}

	resp := entriesResponse{Data: []entryJSON{}, CacheTags: d.CacheTags}
	for _, e := range entries {
		row := entryJSON{
			ID:        e.ID,
			UID:       e.UID,
			SiteID:    e.SiteID,
			SectionID: e.SectionID,
			TypeID:    e.TypeID,
			AuthorID:  e.AuthorID,
			Title:     e.Title,
			Slug:      e.Slug,
			PostDate:  e.PostDate.Format(time.RFC3339),
		}
		if e.ExpiryDate != nil {
			row.ExpiryDate = e.ExpiryDate.Format(time.RFC3339)
		}
		resp.Data = append(resp.Data, row)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)

	s.metrics.ObserveFetchNS("entries", time.Since(start).Nanoseconds())
}

func writeError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
