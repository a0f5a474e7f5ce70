package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Register(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewCollector(Options{})

	require.NoError(t, collector.Register(registry))

	// the adapter does no deduplication; the registry rejects the second attempt
	err := collector.Register(registry)
	require.Error(t, err)
	var already prometheus.AlreadyRegisteredError
	assert.True(t, errors.As(err, &already))
}

func TestRegisterMetrics_DuplicateNamesFail(t *testing.T) {
	registry := prometheus.NewRegistry()

	_, err := RegisterMetrics(registry, Options{Namespace: "api"})
	require.NoError(t, err)

	_, err = RegisterMetrics(registry, Options{Namespace: "api"})
	assert.Error(t, err)

	// a different namespace does not clash
	_, err = RegisterMetrics(registry, Options{Namespace: "other"})
	assert.NoError(t, err)
}

func TestCollector_ObserveRequest(t *testing.T) {
	collector := NewCollector(Options{})

	collector.ObserveRequest(RequestObservation{
		Base:     "https://api.example.com",
		Method:   "GET",
		Path:     "/users/{id}",
		Code:     200,
		Duration: 150 * time.Millisecond,
	})
	collector.ObserveRequest(RequestObservation{
		Base:     "https://api.example.com",
		Method:   "GET",
		Path:     "/users/{id}",
		Code:     NoResponse,
		Duration: time.Second,
	})

	ok := collector.requestsTotal.WithLabelValues("https://api.example.com", "GET", "/users/{id}", "200")
	assert.Equal(t, 1.0, testutil.ToFloat64(ok))

	failed := collector.requestsTotal.WithLabelValues("https://api.example.com", "GET", "/users/{id}", "-1")
	assert.Equal(t, 1.0, testutil.ToFloat64(failed))

	assert.Equal(t, 1, testutil.CollectAndCount(collector.requestDuration))
}

func TestCollector_ObserveStage(t *testing.T) {
	collector := NewCollector(Options{Namespace: "api"})

	collector.ObserveStage("https://api.example.com", "dns", 2*time.Millisecond)
	collector.ObserveStage("https://api.example.com", "connect", 0)
	collector.ObserveStage("https://api.example.com", "tls", -time.Millisecond)

	// only the measured stage produces a series
	assert.Equal(t, 1, testutil.CollectAndCount(collector.stageDuration))
}

func TestCollector_Exposition(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector, err := RegisterMetrics(registry, Options{Namespace: "api"})
	require.NoError(t, err)

	collector.ObserveRequest(RequestObservation{
		Base: "http://localhost", Method: "DELETE", Path: "/users/{id}", Code: 204, Duration: time.Millisecond,
	})

	expected := `
# HELP api_requests_total Total number of logical API requests by outcome code (-1 = no response)
# TYPE api_requests_total counter
api_requests_total{base="http://localhost",code="204",method="DELETE",path="/users/{id}"} 1
`
	err = testutil.GatherAndCompare(registry, strings.NewReader(expected), "api_requests_total")
	assert.NoError(t, err)
}

func TestCollector_NilIsSafe(t *testing.T) {
	var collector *Collector

	assert.NotPanics(t, func() {
		collector.ObserveRequest(RequestObservation{Method: "GET"})
		collector.ObserveStage("base", "dns", time.Millisecond)
	})
}
