// Package metrics exposes application metrics collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	extractorHeight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "chainverify7000",
		Subsystem: "extractor",
		Name:      "height",
		Help:      "Highest block height extracted so far.",
	}, []string{"kind"})

	extractorRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chainverify7000",
		Subsystem: "extractor",
		Name:      "records_total",
		Help:      "Count of extracted records.",
	}, []string{"kind"})
)

// Extractor tracks record extraction progress per record kind.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (m Extractor) SetExtractedHeight(kind string, height uint32) {
	extractorHeight.WithLabelValues(kind).Set(float64(height))
}

func (m Extractor) AddExtractedRecords(kind string, n int) {
	extractorRecordsTotal.WithLabelValues(kind).Add(float64(n))
}
