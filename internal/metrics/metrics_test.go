package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moods/internal/metrics"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.MoodSelected()
		m.MoodsDeleted(3)
		m.StorageError("read")
		m.SetEntries(4)
		m.ObserveRequest(http.MethodGet, http.StatusOK)
	})
	assert.Nil(t, m.Registry())
}

func TestCountersAndHandler(t *testing.T) {
	m := metrics.New()
	m.MoodSelected()
	m.MoodSelected()
	m.MoodsDeleted(1)
	m.StorageError("write")
	m.SetEntries(1)

	n, err := testutil.GatherAndCount(m.Registry(), "moods_selected_total", "moods_deleted_total", "moods_storage_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "moods_selected_total 2")
	assert.Contains(t, rec.Body.String(), `moods_storage_errors_total{op="write"} 1`)
}
