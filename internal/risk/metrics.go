package risk

import (
	"context"
	"time"

	"travel_risk/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "risk_analyses_total",
		Help: "Risk analyses by outcome (success, error).",
	}, []string{"outcome"})

	analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "risk_analysis_duration_seconds",
		Help:    "Time spent waiting on the risk provider.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	})
)

// instrumented records outcome and latency of every call to the wrapped provider
type instrumented struct {
	next Provider
}

// Instrument wraps p with Prometheus metrics
func Instrument(p Provider) Provider {
	return &instrumented{next: p}
}

func (i *instrumented) Assess(ctx context.Context, req Request) (*domain.RiskReport, error) {
	start := time.Now()
	report, err := i.next.Assess(ctx, req)
	analysisDuration.Observe(time.Since(start).Seconds())
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	analysesTotal.WithLabelValues(outcome).Inc()
	return report, err
}
