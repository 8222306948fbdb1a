package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()

	assert.NotNil(t, m.ServicesTotal)
	assert.NotNil(t, m.PagesPublished)
	assert.NotNil(t, m.LinkChecks)
	assert.NotNil(t, m.CatalogRequests)
	assert.NotNil(t, m.RunDuration)

	// Private registries do not clash.
	assert.NotPanics(t, func() { NewMetrics() })
}

func TestCounters(t *testing.T) {
	m := NewMetrics()

	m.ServicesTotal.WithLabelValues("included").Inc()
	m.ServicesTotal.WithLabelValues("included").Inc()
	m.ServicesTotal.WithLabelValues("excluded").Inc()
	m.PagesPublished.WithLabelValues("created").Inc()
	m.CatalogRequests.Add(12)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ServicesTotal.WithLabelValues("included")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ServicesTotal.WithLabelValues("excluded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PagesPublished.WithLabelValues("created")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.CatalogRequests))

	err := testutil.GatherAndCompare(m.Registry, strings.NewReader(`
# HELP svcwiki_catalog_requests_total HTTP requests issued to the service catalog
# TYPE svcwiki_catalog_requests_total counter
svcwiki_catalog_requests_total 12
`), "svcwiki_catalog_requests_total")
	assert.NoError(t, err)
}

func TestObserveRun(t *testing.T) {
	m := NewMetrics()
	start := time.Unix(1700000000, 0)
	m.ObserveRun(start, start.Add(90*time.Second))

	assert.Equal(t, 90.0, testutil.ToFloat64(m.RunDuration))
	assert.Equal(t, 1700000090.0, testutil.ToFloat64(m.LastRunTimestamp))
}

func TestPush(t *testing.T) {
	var (
		mu   sync.Mutex
		path string
		body string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		path, body = r.URL.Path, string(data)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewMetrics()
	m.PagesPublished.WithLabelValues("updated").Inc()

	require.NoError(t, m.Push(context.Background(), srv.URL, "svcwiki", "run-1"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/metrics/job/svcwiki/run_id/run-1", path)
	assert.NotEmpty(t, body)
}

func TestPushError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewMetrics().Push(context.Background(), srv.URL, "svcwiki", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to push metrics")
}
