// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package watch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricActiveRoots = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "treewatch",
		Subsystem: "watch",
		Name:      "active_roots",
		Help:      "Number of watch roots currently running",
	})
	metricBackendEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "treewatch",
		Subsystem: "watch",
		Name:      "backend_events_total",
		Help:      "Total number of events received from the notification backend, by callback",
	}, []string{"backend", "callback"})
	metricFiltered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "treewatch",
		Subsystem: "watch",
		Name:      "filtered_events_total",
		Help:      "Total number of backend events dropped by the name filter",
	})
	metricErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "treewatch",
		Subsystem: "watch",
		Name:      "errors_total",
		Help:      "Total number of watch errors, by type",
	}, []string{"backend", "type"})
)
