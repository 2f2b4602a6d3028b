/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package testutil

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type mockT struct {
	failed bool
}

func (m *mockT) Errorf(format string, args ...interface{}) {
	m.failed = true
}

func (m *mockT) FailNow() {
	m.failed = true
}

func TestRequireErrorIsAny(t *testing.T) {
	err := fmt.Errorf("submit: %w", context.DeadlineExceeded)
	RequireErrorIsAny(t, err, []error{context.Canceled, context.DeadlineExceeded})

	m := &mockT{}
	RequireErrorIsAny(m, err, []error{context.Canceled, errors.New("other")})
	require.True(t, m.failed)
}

func TestSamplesCount(t *testing.T) {
	hist := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "test_duration_seconds"}, []string{"outcome"})
	hist.WithLabelValues("sent").Observe(0.1)
	hist.WithLabelValues("sent").Observe(0.2)
	hist.WithLabelValues("rate_limited").Observe(0)
	RequireSamplesCountInHistogram(t, hist.WithLabelValues("sent"), 2)
	RequireSamplesCountInHistogram(t, hist.WithLabelValues("rate_limited"), 1)

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_total"})
	counter.Add(3)
	RequireSamplesCountInCounter(t, counter, 3)

	m := &mockT{}
	RequireSamplesCountInCounter(m, counter, 4)
	require.True(t, m.failed)
}
