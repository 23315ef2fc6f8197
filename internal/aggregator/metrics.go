package aggregator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sourceFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devnews_source_fetch_total",
		Help: "Source fetches by outcome",
	}, []string{"source", "status"})

	sourceItems = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "devnews_source_items",
		Help: "Items returned by the last fetch of a source",
	}, []string{"source"})

	aggregateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "devnews_aggregate_duration_seconds",
		Help:    "Time spent fetching from all sources",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms .. ~51s
	})
)
