package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRequest("GET", 200, 10*time.Millisecond)
	m.ObserveRequest("GET", 200, 20*time.Millisecond)
	m.ObserveRequest("POST", 401, time.Millisecond)
	m.ObserveRequest("POST", 0, time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("POST", "401")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("POST", "error")))

	require.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestIncRefreshAndSelector(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())

	m.IncRefresh(RefreshOK)
	m.IncRefresh(RefreshCoalesced)
	m.IncRefresh(RefreshCoalesced)
	m.IncSelectorLoad("brand", false)
	m.IncSelectorLoad("brand", true)
	m.AddSelectorDuplicates("model", 3)
	m.AddSelectorDuplicates("model", 0)

	require.Equal(t, 1.0, testutil.ToFloat64(m.refresh.WithLabelValues(RefreshOK)))
	require.Equal(t, 2.0, testutil.ToFloat64(m.refresh.WithLabelValues(RefreshCoalesced)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.selectorLoads.WithLabelValues("brand", "stale")))
	require.Equal(t, 3.0, testutil.ToFloat64(m.selectorDedups.WithLabelValues("model")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	require.NotPanics(t, func() {
		m.ObserveRequest("GET", 200, time.Second)
		m.IncRefresh(RefreshOK)
		m.IncSelectorLoad("brand", false)
		m.AddSelectorDuplicates("brand", 1)
	})
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_ = New(reg)

	require.Panics(t, func() { _ = New(reg) })
}
