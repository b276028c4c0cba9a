// Package telemetry exposes scan and backtest pipeline metrics over HTTP.
// The scoring core stays metric-free; instrumentation happens at the
// pipeline boundary where symbols are fetched and scored.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Metrics holds the pipeline instruments.
type Metrics struct {
	registry *prometheus.Registry

	ScoresComputed *prometheus.CounterVec
	ScoreValue     *prometheus.HistogramVec
	FetchErrors    *prometheus.CounterVec
	ScanDuration   prometheus.Histogram
}

// NewMetrics builds and registers the instrument set on a private registry,
// so tests can create as many as they like without collisions.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		ScoresComputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scorerun_scores_total",
			Help: "Scores computed, by category and regime.",
		}, []string{"category", "regime"}),
		ScoreValue: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scorerun_score_value",
			Help:    "Distribution of computed scores.",
			Buckets: prometheus.LinearBuckets(-5, 2.5, 12),
		}, []string{"category"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scorerun_fetch_errors_total",
			Help: "Bar fetch failures, by symbol.",
		}, []string{"symbol"}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scorerun_scan_duration_seconds",
			Help:    "Wall time of full category scans.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.ScoresComputed, m.ScoreValue, m.FetchErrors, m.ScanDuration)
	return m
}

// ObserveScore records one scoring outcome.
func (m *Metrics) ObserveScore(category, regime string, score float64) {
	m.ScoresComputed.WithLabelValues(category, regime).Inc()
	m.ScoreValue.WithLabelValues(category).Observe(score)
}

// Server serves /metrics and /healthz.
type Server struct {
	srv *http.Server
	log zerolog.Logger
}

// NewServer builds the metrics HTTP server on addr.
func NewServer(addr string, m *Metrics, log zerolog.Logger) *Server {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	return &Server{
		srv: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		log: log.With().Str("component", "telemetry").Logger(),
	}
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() {
	s.log.Info().Str("addr", s.srv.Addr).Msg("metrics endpoint up")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.log.Error().Err(err).Msg("metrics server stopped")
	}
}

// Shutdown drains the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
