package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestObserveHTTP(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/advocates", "200"))
	ObserveHTTP("GET", "/api/advocates", 200, 15*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/advocates", "200")))

	beforeUnmatched := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404"))
	ObserveHTTP("GET", "", 404, time.Millisecond)
	assert.Equal(t, beforeUnmatched+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestDomainCounters(t *testing.T) {
	created := testutil.ToFloat64(bookingsCreated)
	IncBookingCreated()
	assert.Equal(t, created+1, testutil.ToFloat64(bookingsCreated))

	completed := testutil.ToFloat64(bookingTransitions.WithLabelValues("completed"))
	IncBookingStatus("completed")
	assert.Equal(t, completed+1, testutil.ToFloat64(bookingTransitions.WithLabelValues("completed")))

	reviews := testutil.ToFloat64(reviewsSubmitted)
	IncReviewSubmitted()
	assert.Equal(t, reviews+1, testutil.ToFloat64(reviewsSubmitted))
}
