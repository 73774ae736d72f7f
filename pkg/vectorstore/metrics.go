package vectorstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheLookups counts cache probes by outcome.
	// Labels: result (hit, miss, partial, corrupt, unavailable)
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "vectorstore",
			Name:      "cache_lookups_total",
			Help:      "Vector store cache probes by outcome",
		},
		[]string{"result"},
	)

	// Rebuilds counts rebuilds from durable storage.
	// Labels: result (success, not_found, corrupt, unavailable, error)
	Rebuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "vectorstore",
			Name:      "rebuilds_total",
			Help:      "Vector store rebuilds from durable storage",
		},
		[]string{"result"},
	)

	// RebuildDuration tracks how long a rebuild takes end to end.
	RebuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docqa",
			Subsystem: "vectorstore",
			Name:      "rebuild_duration_seconds",
			Help:      "Duration of vector store rebuilds in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// LockWaits counts rebuilds that found another rebuild in flight.
	// Labels: result (served, timeout)
	LockWaits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docqa",
			Subsystem: "vectorstore",
			Name:      "lock_waits_total",
			Help:      "Loads that waited on a concurrent rebuild",
		},
		[]string{"result"},
	)
)
