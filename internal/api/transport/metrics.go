package transport

import (
	"net/http"
	"time"

	"github.com/pribylovaa/car-market/internal/metrics"
)

// WithMetrics считает запросы и их длительность. m == nil - звено пропускается.
func WithMetrics(m *metrics.Metrics) Middleware {
	if m == nil {
		return nil
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()

			resp, err := next.RoundTrip(req)
			status := 0
			if err == nil {
				status = resp.StatusCode
			}
			m.ObserveRequest(req.Method, status, time.Since(start))

			return resp, err
		})
	}
}
