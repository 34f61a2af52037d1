// Copyright (C) 2026 The Syncthing Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package shortname

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var metricCacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "treewatch",
	Subsystem: "shortname",
	Name:      "cache_entries",
	Help:      "Number of long to short path mappings held in memory",
})
