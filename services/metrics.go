package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	edgesEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pkn_edges_emitted_total",
			Help: "Total number of PKN edges emitted, by resource.",
		},
		[]string{"resource"},
	)

	recordsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pkn_records_dropped_total",
			Help: "Total number of records dropped before merge, by reason.",
		},
		[]string{"reason"},
	)

	buildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pkn_builds_total",
			Help: "Total number of PKN builds, by final status.",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(edgesEmitted, recordsDropped, buildsTotal)
}
