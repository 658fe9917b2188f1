package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduler_ticks_total",
		Help: "Completed scheduler ticks.",
	})

	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scheduler_tick_duration_seconds",
		Help:    "Wall time spent inside one scheduler tick.",
		Buckets: prometheus.DefBuckets,
	})

	dispatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_dispatches_total",
		Help: "Post dispatch attempts by outcome.",
	}, []string{"outcome"})

	evictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_evictions_total",
		Help: "Posts evicted from the schedule by reason.",
	}, []string{"reason"})
)
