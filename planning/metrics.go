package planning

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rostersGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roster_generations_total",
			Help: "Rosters generated, by planning kind.",
		},
		[]string{"kind"},
	)

	absenceFlagChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roster_absence_flag_changes_total",
			Help: "Absence flags rewritten by reconciliation, by planning kind.",
		},
		[]string{"kind"},
	)

	manualEdits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roster_manual_edits_total",
			Help: "Manual seat edits, by planning kind and outcome (assignee, substitute, cleared).",
		},
		[]string{"kind", "outcome"},
	)

	regenerationConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roster_regeneration_conflicts_total",
			Help: "Regenerations refused because another one was in flight for the same week.",
		},
	)
)
