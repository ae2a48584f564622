// Package metrics exposes query cache and API client instrumentation as
// Prometheus metrics on a private registry.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmcdole/quill/internal/query"
)

const namespace = "quill"

// Recorder implements query.Recorder
type Recorder struct {
	registry *prometheus.Registry

	lookups       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	discarded     *prometheus.CounterVec

	apiRequests *prometheus.CounterVec
	apiDuration *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		lookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Query cache lookups by origin and outcome",
			},
			[]string{"resource", "origin", "outcome"},
		),
		fetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "cache_fetch_duration_seconds",
				Help:      "Duration of query cache fetches in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"resource", "success"},
		),
		discarded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_discarded_responses_total",
				Help:      "Responses dropped because a newer request superseded them",
			},
			[]string{"resource"},
		),
		apiRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Requests sent to the blog API",
			},
			[]string{"code", "method"},
		),
		apiDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "Duration of blog API requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}
}

func (r *Recorder) Lookup(resource string, origin query.Origin, outcome query.Outcome) {
	r.lookups.WithLabelValues(resource, string(origin), string(outcome)).Inc()
}

func (r *Recorder) FetchFinished(resource string, elapsed time.Duration, err error) {
	success := "true"
	if err != nil {
		success = "false"
	}
	r.fetchDuration.WithLabelValues(resource, success).Observe(elapsed.Seconds())
}

func (r *Recorder) Discarded(resource string) {
	r.discarded.WithLabelValues(resource).Inc()
}

// InstrumentTransport wraps next so every API round trip is counted and timed
func (r *Recorder) InstrumentTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return promhttp.InstrumentRoundTripperCounter(r.apiRequests,
		promhttp.InstrumentRoundTripperDuration(r.apiDuration, next))
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled
func (r *Recorder) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", "error", err)
		}
	}()

	logger.Info("metrics server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
