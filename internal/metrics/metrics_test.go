package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveOp(t *testing.T) {
	c := New(prometheus.NewRegistry())

	c.ObserveOp("meals", "find", false)
	c.ObserveOp("meals", "find", false)
	c.ObserveOp("meals", "aggregate", true)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Operations.WithLabelValues("meals", "find")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Operations.WithLabelValues("meals", "aggregate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Errors.WithLabelValues("meals", "aggregate")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.Errors))
}

func TestSetRecordsAndDelete(t *testing.T) {
	c := New(prometheus.NewRegistry())

	c.SetRecords("users", 2)
	assert.Equal(t, 2.0, testutil.ToFloat64(c.Records.WithLabelValues("users")))

	c.DeleteCollection("users")
	assert.Equal(t, 0, testutil.CollectAndCount(c.Records))
}

func TestNilCollectorsAreNoops(t *testing.T) {
	var c *Collectors

	assert.NotPanics(t, func() {
		c.ObserveOp("x", "find", true)
		c.SetRecords("x", 1)
		c.DeleteCollection("x")
	})
}

func TestSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
