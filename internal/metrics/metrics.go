// Package metrics defines the Prometheus collectors the store reports to.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors groups the store's metrics. Construct one per registry with
// New; a nil *Collectors is valid and records nothing.
type Collectors struct {
	// Operations counts store operations by collection and operation name
	// (find_one, find, count_documents, distinct, insert_one, update_one,
	// delete_one, aggregate).
	Operations *prometheus.CounterVec

	// Errors counts operations that returned an error other than
	// "not found".
	Errors *prometheus.CounterVec

	// Records tracks the number of records held per collection.
	Records *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg.
// Use prometheus.NewRegistry() in tests to avoid duplicate registration.
func New(reg prometheus.Registerer) *Collectors {
	factory := promauto.With(reg)
	return &Collectors{
		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sweatz_store_operations_total",
				Help: "Total number of store operations",
			},
			[]string{"collection", "op"},
		),
		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sweatz_store_errors_total",
				Help: "Total number of store operations that failed",
			},
			[]string{"collection", "op"},
		),
		Records: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sweatz_store_records",
				Help: "Number of records per collection",
			},
			[]string{"collection"},
		),
	}
}

// ObserveOp counts one operation, and one error when failed is true.
func (c *Collectors) ObserveOp(collection, op string, failed bool) {
	if c == nil {
		return
	}
	c.Operations.WithLabelValues(collection, op).Inc()
	if failed {
		c.Errors.WithLabelValues(collection, op).Inc()
	}
}

// SetRecords records the current size of a collection.
func (c *Collectors) SetRecords(collection string, n int) {
	if c == nil {
		return
	}
	c.Records.WithLabelValues(collection).Set(float64(n))
}

// DeleteCollection drops the series of a removed collection.
func (c *Collectors) DeleteCollection(collection string) {
	if c == nil {
		return
	}
	c.Records.DeleteLabelValues(collection)
}
