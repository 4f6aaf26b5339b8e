// Package metrics holds the Prometheus collectors of the module.
// Labels stay low-cardinality: no video ids or URLs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ytstream"

var (
	// CacheRequests counts memoized lookups by cache and result (hit/miss).
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_requests_total",
		Help:      "Memoizing cache lookups, by cache and result.",
	}, []string{"cache", "result"})

	// PipelineDuration observes metadata pipeline stages.
	PipelineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "pipeline_duration_seconds",
		Help:      "Duration of metadata pipeline stages.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"stage"})

	// PipelineErrors counts pipeline failures by stage and error category.
	PipelineErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pipeline_errors_total",
		Help:      "Metadata pipeline failures, by stage and category.",
	}, []string{"stage", "category"})

	// Downloads counts finished download streams by transport and result.
	Downloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "downloads_total",
		Help:      "Finished download streams, by transport and result.",
	}, []string{"transport", "result"})

	// DownloadBytes counts bytes forwarded to output streams.
	DownloadBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "download_bytes_total",
		Help:      "Bytes forwarded to download streams, by transport.",
	}, []string{"transport"})

	// TransportRetries counts segment/chunk request retries.
	TransportRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transport_retries_total",
		Help:      "Transport request retries, by transport.",
	}, []string{"transport"})

	// ActiveStreams tracks streams currently moving bytes.
	ActiveStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_streams",
		Help:      "Download streams currently in the streaming state.",
	})
)
