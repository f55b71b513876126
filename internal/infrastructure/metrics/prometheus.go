// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tvcast"

var (
	// CacheOperationsTotal tracks response cache operations.
	// Labels:
	//   - operation: get, set
	//   - status: hit, miss, success
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Total number of response cache operations",
		},
		[]string{"operation", "status"},
	)

	// CatalogRequestsTotal tracks calls that actually reached the remote
	// catalog (cache misses after retries resolved).
	// Labels:
	//   - operation: resolve, uploads, detail, search, stats
	//   - status: success, not_found, error
	CatalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_requests_total",
			Help:      "Total number of remote catalog requests",
		},
		[]string{"operation", "status"},
	)

	// SingleflightRequestsTotal tracks coalescing of concurrent cache
	// misses for the same key.
	// Labels:
	//   - result: initiated (new execution), shared (reused result)
	SingleflightRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "singleflight_requests_total",
			Help:      "Total number of singleflight requests",
		},
		[]string{"result"},
	)

	// GuideBuildsTotal tracks per-channel schedule assembly.
	// Labels:
	//   - status: ok, degraded (some sources failed), empty (all failed)
	GuideBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guide_builds_total",
			Help:      "Total number of per-channel guide builds",
		},
		[]string{"status"},
	)
)

// Cache operation status constants.
const (
	CacheStatusHit     = "hit"
	CacheStatusMiss    = "miss"
	CacheStatusSuccess = "success"
)

// Cache operation type constants.
const (
	CacheOpGet = "get"
	CacheOpSet = "set"
)

// Catalog operation constants.
const (
	CatalogOpResolve = "resolve"
	CatalogOpUploads = "uploads"
	CatalogOpDetail  = "detail"
	CatalogOpSearch  = "search"
	CatalogOpStats   = "stats"
)

// Catalog request status constants.
const (
	CatalogStatusSuccess  = "success"
	CatalogStatusNotFound = "not_found"
	CatalogStatusError    = "error"
)

// Singleflight result constants.
const (
	SingleflightInitiated = "initiated"
	SingleflightShared    = "shared"
)

// Guide build status constants.
const (
	GuideStatusOK       = "ok"
	GuideStatusDegraded = "degraded"
	GuideStatusEmpty    = "empty"
)
