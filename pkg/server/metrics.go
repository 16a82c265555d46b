/*
 * Copyright (c) 2024, Gideon Williams <gideon@gideonw.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MetricsStore interface {
	Registry() *prometheus.Registry
	Handler() http.Handler

	// Collection
	IncRequests(route string)
	IncShortCircuits()
	ObserveFetchNS(route string, t int64)
}

type metricsStore struct {
	registry      *prometheus.Registry
	Requests      *prometheus.CounterVec
	ShortCircuits prometheus.Counter
	FetchNS       *prometheus.HistogramVec
}

var RouteLabel = "route"

func NewMetricsStore() MetricsStore {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(
			collectors.WithGoCollectorRuntimeMetrics(collectors.MetricsAll),
		),
	)

	buckets := []float64{}
	for i := 1; i < 20; i++ {
		buckets = append(buckets, float64(2*i*int(time.Millisecond)))
	}

	factory := promauto.With(reg)
	return &metricsStore{
		registry: reg,
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "quarry_requests",
			Help: "Request counts per API route",
		}, []string{RouteLabel}),
		ShortCircuits: factory.NewCounter(prometheus.CounterOpts{
			Name: "quarry_query_short_circuits",
			Help: "Queries answered empty without reaching the store",
		}),
		FetchNS: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quarry_fetch_ns",
			Help:    "End to end prepare and execute times per API route",
			Buckets: buckets,
		}, []string{RouteLabel}),
	}
}

func (ms *metricsStore) Registry() *prometheus.Registry {
	return ms.registry
}

func (ms *metricsStore) Handler() http.Handler {
	return promhttp.HandlerFor(ms.Registry(), promhttp.HandlerOpts{Registry: ms.Registry()})
}

func (ms *metricsStore) IncRequests(route string) {
	ms.Requests.With(prometheus.Labels{RouteLabel: route}).Inc()
}

func (ms *metricsStore) IncShortCircuits() {
	ms.ShortCircuits.Inc()
}

func (ms *metricsStore) ObserveFetchNS(route string, t int64) {
	ms.FetchNS.
		With(prometheus.Labels{RouteLabel: route}).
		Observe(float64(t))
}
