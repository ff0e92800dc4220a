package lpgrdf

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mIngestTriples = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lpgrdf_ingest_triples_count",
		Help: "Number of new triples ingested.",
	})
	mIngestDuplicates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lpgrdf_ingest_duplicates_count",
		Help: "Number of ingested triples that were already stored.",
	})
	mIngestSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "lpgrdf_ingest_seconds",
		Help: "Time to ingest a batch of triples.",
	})
	mIngestBusy = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lpgrdf_ingest_busy_count",
		Help: "Number of imports rejected because another import was in progress.",
	})
)
