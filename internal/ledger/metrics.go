package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rollcall_scans_total",
		Help: "Scan transitions by outcome.",
	}, []string{"outcome"})

	scanConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rollcall_scan_conflicts_total",
		Help: "Scans that lost a same-key race and were re-evaluated.",
	})
)
