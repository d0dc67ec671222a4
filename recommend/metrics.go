package recommend

import (
	"errors"

	"go.opentelemetry.io/otel/metric"
)

type engineMetrics struct {
	requests      metric.Int64Counter
	results       metric.Int64Counter
	oracleCalls   metric.Int64Counter
	oracleLatency metric.Float64Histogram
	candidates    metric.Int64Histogram
}

func newEngineMetrics(meter metric.Meter) (*engineMetrics, error) {
	var m engineMetrics
	var errs [5]error
	m.requests, errs[0] = meter.Int64Counter("recommend_requests_total",
		metric.WithDescription("Total number of recommendation requests received"))
	m.results, errs[1] = meter.Int64Counter("recommend_results_total",
		metric.WithDescription("Total number of recommendation results by fallback strategy"))
	m.oracleCalls, errs[2] = meter.Int64Counter("oracle_calls_total",
		metric.WithDescription("Total number of oracle calls by outcome"))
	m.oracleLatency, errs[3] = meter.Float64Histogram("oracle_latency_seconds",
		metric.WithDescription("Time taken to receive a response from the oracle in seconds"),
		metric.WithUnit("s"))
	m.candidates, errs[4] = meter.Int64Histogram("recommend_candidates",
		metric.WithDescription("Number of candidates offered to the oracle"))
	if err := errors.Join(errs[:]...); err != nil {
		return nil, err
	}
	return &m, nil
}
