/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package permit

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// NewAvailablePermitsGauge returns a Prometheus gauge that reports the number of permits
// available in the current window of the given pool.
// Registration of the returned collector is up to the caller.
func NewAvailablePermitsGauge(pool *Pool, namespace string) prometheus.GaugeFunc {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "permit_pool_available",
		Help:        "Number of permits available in the current window.",
		ConstLabels: prometheus.Labels{"capacity_per_window": strconv.Itoa(pool.Capacity())},
	}, func() float64 {
		return float64(pool.Available())
	})
}
