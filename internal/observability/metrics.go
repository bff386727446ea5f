// Package observability provides prometheus metrics for the application.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PageCacheHits counts full-page cache hits by key prefix.
	PageCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_page_cache_hits_total",
		Help: "Total number of full-page cache hits",
	}, []string{"prefix"})

	// PageCacheMisses counts full-page cache misses by key prefix.
	PageCacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_page_cache_misses_total",
		Help: "Total number of full-page cache misses",
	}, []string{"prefix"})

	// ImageUploads counts image uploads by outcome.
	ImageUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_image_uploads_total",
		Help: "Total number of post image uploads by outcome",
	}, []string{"outcome"})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_error_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})
)
