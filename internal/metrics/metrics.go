package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PicksSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "picks_submitted_total",
			Help: "Total accepted pick submissions",
		},
	)

	Finalizations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_finalizations_total",
			Help: "Total matches transitioned to a terminal status",
		},
		[]string{"outcome"}, // completed|completed_no_result
	)

	PointsAwarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "points_awarded_total",
			Help: "Total points credited by finalizations",
		},
	)
	PointsReversed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "points_reversed_total",
			Help: "Total points debited by fixture deletions",
		},
	)

	SchedulerTicks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "promotion_ticks_total",
			Help: "Total promotion scheduler ticks that ran to completion",
		},
	)

	ProjectionRebuilds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projection_rebuilds_total",
			Help: "Total full projection rebuilds per collection",
		},
		[]string{"collection"},
	)

	WorkerQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "worker_queue_depth",
			Help: "Current worker queue depth",
		},
	)
)

var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(PicksSubmitted)
	prometheus.MustRegister(Finalizations)
	prometheus.MustRegister(PointsAwarded)
	prometheus.MustRegister(PointsReversed)
	prometheus.MustRegister(SchedulerTicks)
	prometheus.MustRegister(ProjectionRebuilds)
	prometheus.MustRegister(WorkerQueueDepth)
}
