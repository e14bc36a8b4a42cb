package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	joinerJoinedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chainverify7000",
		Subsystem: "joiner",
		Name:      "joined_records_total",
		Help:      "Count of inputs matched with their creating output.",
	})

	joinerUnmatchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chainverify7000",
		Subsystem: "joiner",
		Name:      "unmatched_inputs_total",
		Help:      "Count of inputs with no creating output in the processed range.",
	})
)

// Joiner tracks merge-join throughput and consistency faults.
type Joiner struct{}

func NewJoiner() *Joiner {
	return &Joiner{}
}

func (m Joiner) AddJoinedRecords(n int) {
	joinerJoinedTotal.Add(float64(n))
}

func (m Joiner) AddUnmatchedInputs(n int) {
	joinerUnmatchedTotal.Add(float64(n))
}
