package breaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"dishmatch"
)

// Settings tune when the breaker opens and how it recovers.
type Settings struct {
	Name string
	// MinRequests is the number of calls in an interval before the failure
	// ratio is considered.
	MinRequests  uint32
	FailureRatio float64
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
	// Interval is the cyclic period after which closed-state counts reset.
	Interval         time.Duration
	HalfOpenRequests uint32
}

// FromConfig maps environment configuration onto breaker settings.
func FromConfig(name string, cfg dishmatch.BreakerConfig) Settings {
	return Settings{
		Name:             name,
		MinRequests:      cfg.MinRequests,
		FailureRatio:     cfg.FailureRatio,
		OpenTimeout:      cfg.OpenTimeout,
		Interval:         cfg.MeasureInterval,
		HalfOpenRequests: cfg.HalfOpenRequests,
	}
}

// Oracle guards another oracle with a circuit breaker. While the breaker is
// open calls fail immediately without reaching the wrapped oracle.
type Oracle struct {
	next dishmatch.Oracle
	cb   *gobreaker.CircuitBreaker[string]
}

func New(next dishmatch.Oracle, s Settings) *Oracle {
	settings := gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.HalfOpenRequests,
		Interval:    s.Interval,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= s.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("ORACLE: Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
		// A caller that went away says nothing about the oracle's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}

	return &Oracle{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[string](settings),
	}
}

func (o *Oracle) Generate(ctx context.Context, instruction string) (string, error) {
	return o.cb.Execute(func() (string, error) {
		return o.next.Generate(ctx, instruction)
	})
}

// State reports the breaker state for diagnostics.
func (o *Oracle) State() string {
	return o.cb.State().String()
}
