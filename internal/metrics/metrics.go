// Package metrics holds the Prometheus collectors for the feed session.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PollTicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "devfeed",
		Name:      "poll_ticks_total",
		Help:      "Scheduled refreshes dispatched, by task.",
	}, []string{"task"})

	FetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "devfeed",
		Name:      "fetch_failures_total",
		Help:      "Failed read requests, by operation.",
	}, []string{"op"})

	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "devfeed",
		Name:      "mutations_total",
		Help:      "Engagement writes, by kind and outcome.",
	}, []string{"kind", "outcome"})

	StaleDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "devfeed",
		Name:      "stale_responses_discarded_total",
		Help:      "Feed responses dropped because a newer one was already applied.",
	})

	SnapshotPosts = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "devfeed",
		Name:      "snapshot_posts",
		Help:      "Posts in the current feed snapshot.",
	})
)
