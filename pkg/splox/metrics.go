package splox

import (
	"github.com/prometheus/client_golang/prometheus"

	"splox-go/internal/infra/metrics"
)

// RegisterMetrics exposes the client's request, stream and run-and-wait
// instruments through reg. Without it the instruments are recorded but
// never registered anywhere visible to the host.
func RegisterMetrics(reg prometheus.Registerer) error {
	return metrics.Register(reg)
}
