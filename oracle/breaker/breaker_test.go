package breaker

import (
	"context"
	"errors"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dishmatch"
)

type scriptedOracle struct {
	errs  []error
	calls int
}

func (s *scriptedOracle) Generate(ctx context.Context, instruction string) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	return "[]", nil
}

func testSettings() Settings {
	return Settings{
		Name:             "test-oracle",
		MinRequests:      3,
		FailureRatio:     0.6,
		OpenTimeout:      time.Hour,
		Interval:         time.Hour,
		HalfOpenRequests: 1,
	}
}

func TestOracle_PassesThrough(t *testing.T) {
	next := &scriptedOracle{}
	o := New(next, testSettings())

	got, err := o.Generate(context.Background(), "pick dishes")
	require.NoError(t, err)
	assert.Equal(t, "[]", got)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, "closed", o.State())
}

func TestOracle_OpensAfterFailures(t *testing.T) {
	fail := errors.New("throttled")
	next := &scriptedOracle{errs: []error{fail, fail, fail}}
	o := New(next, testSettings())

	for range 3 {
		_, err := o.Generate(context.Background(), "pick dishes")
		assert.ErrorIs(t, err, fail)
	}
	assert.Equal(t, "open", o.State())

	_, err := o.Generate(context.Background(), "pick dishes")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, next.calls, "open breaker does not call the oracle")
}

func TestOracle_StaysClosedBelowRatio(t *testing.T) {
	fail := errors.New("timeout")
	next := &scriptedOracle{errs: []error{fail, nil, nil, fail, nil}}
	o := New(next, testSettings())

	for range 5 {
		_, _ = o.Generate(context.Background(), "pick dishes")
	}
	assert.Equal(t, "closed", o.State())
}

func TestOracle_CancellationIsNotAFailure(t *testing.T) {
	next := &scriptedOracle{errs: []error{context.Canceled, context.Canceled, context.Canceled, context.Canceled}}
	o := New(next, testSettings())

	for range 4 {
		_, err := o.Generate(context.Background(), "pick dishes")
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, "closed", o.State())
}

func TestFromConfig(t *testing.T) {
	s := FromConfig("bedrock", dishmatch.BreakerConfig{
		MinRequests:      5,
		FailureRatio:     0.5,
		OpenTimeout:      time.Minute,
		MeasureInterval:  2 * time.Minute,
		HalfOpenRequests: 2,
	})
	assert.Equal(t, Settings{
		Name:             "bedrock",
		MinRequests:      5,
		FailureRatio:     0.5,
		OpenTimeout:      time.Minute,
		Interval:         2 * time.Minute,
		HalfOpenRequests: 2,
	}, s)
}
