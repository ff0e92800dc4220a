package schema

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mResolveHit = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lpgrdf_schema_resolve_cache_hits",
		Help: "Number of term resolutions answered from the handle cache.",
	})
	mResolveMiss = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lpgrdf_schema_resolve_cache_miss",
		Help: "Number of term resolutions that looked up the identifier.",
	})
)
