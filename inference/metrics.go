package inference

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mEdges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lpgrdf_hierarchy_edges_count",
		Help: "Number of hierarchy edges added.",
	}, []string{"kind"})

	mClosureHit = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lpgrdf_closure_cache_hits",
		Help: "Number of closure queries answered from the cache.",
	})
	mClosureMiss = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lpgrdf_closure_cache_miss",
		Help: "Number of closures computed by traversal.",
	})
	mClosureInvalidated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lpgrdf_closure_cache_invalidated",
		Help: "Number of memoized closures dropped by new edges.",
	})

	mUnresolvable = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lpgrdf_unresolvable_labels",
		Help: "Number of label or type queries that could not be resolved.",
	})
)
