package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var feedItems = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "devnews_feed_items",
	Help: "Items in the current feed",
})
