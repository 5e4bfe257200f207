package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		IncHTTP("GET", "200")
		ObserveStoreOp("bookings", "list", "success", 15*time.Millisecond)
		IncRefresh("schedules", "success")
	})
}

func TestStoreOperationCounter(t *testing.T) {
	before := testutil.ToFloat64(storeOperations.WithLabelValues("reviews", "create", "failure"))
	ObserveStoreOp("reviews", "create", "failure", time.Millisecond)
	after := testutil.ToFloat64(storeOperations.WithLabelValues("reviews", "create", "failure"))

	assert.Equal(t, before+1, after)
}

func TestHTTPCounter(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("DELETE", "404"))
	IncHTTP("DELETE", "404")
	IncHTTP("DELETE", "404")

	assert.Equal(t, before+2, testutil.ToFloat64(httpRequests.WithLabelValues("DELETE", "404")))
}
