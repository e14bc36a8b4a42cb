package metrics

import (
	"time"

	"github.com/goodnatureofminers/chainverify7000-backend/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	clickhouseRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chainverify7000",
		Subsystem: "clickhouse_repository",
		Name:      "operations_total",
		Help:      "Count of ClickHouse repository operations.",
	}, []string{"operation", "network", "status"})
	clickhouseRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chainverify7000",
		Subsystem: "clickhouse_repository",
		Name:      "operation_duration_seconds",
		Help:      "Duration of ClickHouse repository operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "network", "status"})
)

// ClickhouseRepository tracks outcome repository operations.
type ClickhouseRepository struct{}

func NewClickhouseRepository() *ClickhouseRepository {
	return &ClickhouseRepository{}
}

func (m ClickhouseRepository) Observe(operation string, network model.Network, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	if network == "" {
		network = "unknown"
	}

	clickhouseRequestsTotal.WithLabelValues(operation, string(network), status).Inc()
	clickhouseRequestDuration.WithLabelValues(operation, string(network), status).Observe(time.Since(started).Seconds())
}
