// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package events

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricEventsQueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "treewatch",
		Subsystem: "events",
		Name:      "queued_total",
		Help:      "Total number of events queued, by kind",
	}, []string{"kind"})
	metricQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "treewatch",
		Subsystem: "events",
		Name:      "queue_depth",
		Help:      "Number of events waiting to be consumed",
	})
)
