package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pscheid92/piezorelay/internal/adapter/metrics"
	"github.com/pscheid92/piezorelay/internal/app"
	"github.com/pscheid92/piezorelay/internal/broadcast"
	"github.com/pscheid92/piezorelay/internal/platform/config"
)

// recordingSubscriber collects relayed frames.
type recordingSubscriber struct {
	frames chan []byte
}

func newRecordingSubscriber() *recordingSubscriber {
	return &recordingSubscriber{frames: make(chan []byte, 16)}
}

func (r *recordingSubscriber) Send(frame []byte) error {
	r.frames <- frame
	return nil
}

func (r *recordingSubscriber) Close(string) {}

type testServer struct {
	*Server
	registry *broadcast.Registry
	metrics  *metrics.Set
}

type testOptions struct {
	config       *config.Config
	healthChecks []HealthCheck
}

func newTestServer(t *testing.T, opts ...func(*testOptions)) *testServer {
	t.Helper()

	o := &testOptions{config: &config.Config{Port: "0", AllowedOrigins: "*"}}
	for _, opt := range opts {
		opt(o)
	}

	promReg := prometheus.NewRegistry()
	set := metrics.NewSet(promReg)
	registry := broadcast.NewRegistry(clockwork.NewRealClock(), set.Broadcast)
	ingress := app.NewIngress(registry, set.Ingress)

	srv := NewServer(o.config, ingress, http.NotFoundHandler(), metrics.Handler(promReg), set.HTTP, o.healthChecks)
	return &testServer{Server: srv, registry: registry, metrics: set}
}

func withHealthChecks(checks ...HealthCheck) func(*testOptions) {
	return func(o *testOptions) {
		o.healthChecks = checks
	}
}

func withMaxUploadSize(size string) func(*testOptions) {
	return func(o *testOptions) {
		o.config.MaxUploadSize = size
	}
}

func withAllowedOrigins(origins string) func(*testOptions) {
	return func(o *testOptions) {
		o.config.AllowedOrigins = origins
	}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}
