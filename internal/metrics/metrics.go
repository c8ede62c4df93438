package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RowsIndexed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "thesaurus_index_rows_created_total",
		Help: "Total number of concept index rows written.",
	})

	BatchesCommitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thesaurus_batches_committed_total",
		Help: "Total number of committed batches, labelled by job.",
	}, []string{"job"})

	SchemesIndexed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thesaurus_schemes_indexed_total",
		Help: "Total number of scheme reindex attempts, labelled by result.",
	}, []string{"result"})

	ReconcileActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thesaurus_reconcile_actions_total",
		Help: "Concept-level actions taken while applying a structure, labelled by action.",
	}, []string{"action"})

	ConceptsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "thesaurus_outline_concepts_created_total",
		Help: "Total number of concepts created from outlines.",
	})

	JobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "thesaurus_job_duration_ms",
		Help:    "Job wall-clock duration in milliseconds, labelled by job.",
		Buckets: []float64{5, 25, 100, 250, 1000, 2500, 10000, 30000, 120000},
	}, []string{"job"})
)

// Result labels for SchemesIndexed
const (
	ResultOK       = "ok"
	ResultEmpty    = "empty"
	ResultFailed   = "failed"
	ResultCanceled = "canceled"
)

// Job labels
const (
	JobReindex     = "reindex"
	JobReindexAll  = "reindex_all"
	JobRestructure = "restructure"
	JobImport      = "import"
)
