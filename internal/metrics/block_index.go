package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	indexChunkScanTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chainverify7000",
		Subsystem: "block_index",
		Name:      "chunk_scans_total",
		Help:      "Count of chunk scans during index construction.",
	}, []string{"status"})

	indexChunkScanDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chainverify7000",
		Subsystem: "block_index",
		Name:      "chunk_scan_duration_seconds",
		Help:      "Duration of one chunk scan.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"status"})

	indexBackfilledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chainverify7000",
		Subsystem: "block_index",
		Name:      "backfilled_blocks_total",
		Help:      "Count of blocks fetched from the oracle into the missing store.",
	})

	indexHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chainverify7000",
		Subsystem: "block_index",
		Name:      "height",
		Help:      "Highest height the chain walk has indexed.",
	})
)

// BlockIndex tracks index construction progress.
type BlockIndex struct{}

func NewBlockIndex() *BlockIndex {
	return &BlockIndex{}
}

func (m BlockIndex) ObserveChunkScan(duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	indexChunkScanTotal.WithLabelValues(status).Inc()
	indexChunkScanDuration.WithLabelValues(status).Observe(duration.Seconds())
}

func (m BlockIndex) IncBackfilledBlocks() {
	indexBackfilledTotal.Inc()
}

func (m BlockIndex) SetIndexedHeight(height uint32) {
	indexHeight.Set(float64(height))
}
