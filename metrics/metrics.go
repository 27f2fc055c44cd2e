/*
Package metrics registers the Prometheus instruments the service exposes.

Counters are registered through promauto at package load and served by
the /metrics endpoint the API mounts.
*/
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SimulationRuns counts executed simulations by accrual basis and
	// by where the configuration came from (request body or stored
	// scenario).
	SimulationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cca_simulation_runs_total",
			Help: "Number of simulation runs executed.",
		},
		[]string{"basis", "source"},
	)

	// CacheLookups counts report cache hits and misses.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cca_report_cache_lookups_total",
			Help: "Report cache lookups by result.",
		},
		[]string{"result"},
	)

	// ScenarioWrites counts scenario create/update/delete operations.
	ScenarioWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cca_scenario_writes_total",
			Help: "Scenario mutations by operation.",
		},
		[]string{"operation"},
	)

	// ExportRequests counts CSV exports by table.
	ExportRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cca_export_requests_total",
			Help: "CSV export requests by table.",
		},
		[]string{"table"},
	)
)
