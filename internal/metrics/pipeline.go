package metrics

import (
	"time"

	"github.com/goodnatureofminers/chainverify7000-backend/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pipelineStagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chainverify7000",
		Subsystem: "pipeline",
		Name:      "stage_runs_total",
		Help:      "Count of pipeline stage runs.",
	}, []string{"stage", "network", "status"})

	pipelineStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chainverify7000",
		Subsystem: "pipeline",
		Name:      "stage_duration_seconds",
		Help:      "Duration of one pipeline stage run.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 16),
	}, []string{"stage", "network", "status"})
)

// Pipeline tracks stage runs of the verification pipeline.
type Pipeline struct {
	network model.Network
}

func NewPipeline(network model.Network) *Pipeline {
	if network == "" {
		network = "unknown"
	}
	return &Pipeline{network: network}
}

func (m Pipeline) ObserveStage(stage string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	pipelineStagesTotal.WithLabelValues(stage, string(m.network), status).Inc()
	pipelineStageDuration.WithLabelValues(stage, string(m.network), status).
		Observe(time.Since(started).Seconds())
}
