package metrics

import (
	"github.com/goodnatureofminers/chainverify7000-backend/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	verifierOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chainverify7000",
		Subsystem: "verifier",
		Name:      "input_outcomes_total",
		Help:      "Count of verified inputs by outcome.",
	}, []string{"network", "outcome"})

	verifierHeight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "chainverify7000",
		Subsystem: "verifier",
		Name:      "height",
		Help:      "Highest block height verified so far.",
	}, []string{"network"})
)

// Verifier tallies script verification outcomes.
type Verifier struct {
	network model.Network
}

func NewVerifier(network model.Network) *Verifier {
	if network == "" {
		network = "unknown"
	}
	return &Verifier{network: network}
}

func (m Verifier) AddOutcomes(outcome string, n int) {
	verifierOutcomesTotal.WithLabelValues(string(m.network), outcome).Add(float64(n))
}

func (m Verifier) SetVerifiedHeight(height uint32) {
	verifierHeight.WithLabelValues(string(m.network)).Set(float64(height))
}
