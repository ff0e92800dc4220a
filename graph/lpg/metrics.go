package lpg

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mNodesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lpgrdf_lpg_nodes_created",
		Help: "Number of property graph nodes created.",
	})
	mRelsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lpgrdf_lpg_relationships_created",
		Help: "Number of property graph relationships created.",
	})
)
