package kv

import (
	"context"

	"github.com/hidal-go/hidalgo/kv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mKVGet = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lpgrdf_kv_get_count",
		Help: "Number of get KV calls.",
	})
	mKVGetMiss = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lpgrdf_kv_get_miss",
		Help: "Number of get KV calls that found no value.",
	})
	mKVGetSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "lpgrdf_kv_get_size",
		Help: "Size of values returned from KV.",
	})
	mKVPut = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lpgrdf_kv_put_count",
		Help: "Number of put KV calls.",
	})
	mKVPutSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "lpgrdf_kv_put_size",
		Help: "Size of values put to KV.",
	})
	mKVDel = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lpgrdf_kv_del_count",
		Help: "Number of del KV calls.",
	})
	mKVScan = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lpgrdf_kv_scan_count",
		Help: "Number of scan KV calls.",
	})
	mKVCommit = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lpgrdf_kv_commit",
		Help: "Number of KV commits.",
	})
	mKVCommitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "lpgrdf_kv_commit_seconds",
		Help: "Time to commit a snapshot to KV.",
	})
	mKVRollback = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lpgrdf_kv_rollback",
		Help: "Number of KV transactions closed without a commit.",
	})
)

func wrapTx(tx kv.Tx) kv.Tx {
	return &mTx{tx: tx}
}

type mTx struct {
	tx   kv.Tx
	done bool
}

func (tx *mTx) Commit(ctx context.Context) error {
	if !tx.done {
		tx.done = true
		mKVCommit.Inc()
		defer prometheus.NewTimer(mKVCommitSeconds).ObserveDuration()
	}
	return tx.tx.Commit(ctx)
}

func (tx *mTx) Close() error {
	if !tx.done {
		tx.done = true
		mKVRollback.Inc()
	}
	return tx.tx.Close()
}

func (tx *mTx) Get(ctx context.Context, key kv.Key) (kv.Value, error) {
	mKVGet.Inc()
	val, err := tx.tx.Get(ctx, key)
	if err == kv.ErrNotFound {
		mKVGetMiss.Inc()
	} else if err == nil {
		mKVGetSize.Observe(float64(len(val)))
	}
	return val, err
}

func (tx *mTx) GetBatch(ctx context.Context, keys []kv.Key) ([]kv.Value, error) {
	mKVGet.Add(float64(len(keys)))
	vals, err := tx.tx.GetBatch(ctx, keys)
	for _, v := range vals {
		if v == nil {
			mKVGetMiss.Inc()
		} else {
			mKVGetSize.Observe(float64(len(v)))
		}
	}
	return vals, err
}

func (tx *mTx) Put(k kv.Key, v kv.Value) error {
	mKVPut.Inc()
	mKVPutSize.Observe(float64(len(v)))
	return tx.tx.Put(k, v)
}

func (tx *mTx) Del(k kv.Key) error {
	mKVDel.Inc()
	return tx.tx.Del(k)
}

func (tx *mTx) Scan(opts ...kv.IteratorOption) kv.Iterator {
	mKVScan.Inc()
	return tx.tx.Scan(opts...)
}
