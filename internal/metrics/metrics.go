// Package metrics exposes use-case telemetry as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/alexanderramin/studyplan/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "studyplan"

// Metrics owns a private registry so tests and multiple instances never clash
// on the global one.
type Metrics struct {
	registry          *prometheus.Registry
	useCases          *prometheus.CounterVec
	durations         *prometheus.HistogramVec
	entriesChanged    *prometheus.CounterVec
	integrityWarnings prometheus.Counter
	cacheLookups      *prometheus.CounterVec
	unlearnedModules  *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		useCases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "use_case_total",
			Help:      "Use-case executions by name and outcome.",
		}, []string{"use_case", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "use_case_duration_seconds",
			Help:      "Use-case latency.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"use_case"}),
		entriesChanged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_status_changed_total",
			Help:      "Plan entries whose status was written, by target status.",
		}, []string{"status"}),
		integrityWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregation_integrity_warnings_total",
			Help:      "Entries dropped from a weekly view because their date is outside the plan.",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_cache_lookups_total",
			Help:      "Aggregation cache lookups by result.",
		}, []string{"result"}),
		unlearnedModules: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unlearned_modules",
			Help:      "Modules of past weeks still not learned, as of the last behind-schedule check.",
		}, []string{"course_id"}),
	}
	m.registry.MustRegister(
		m.useCases, m.durations, m.entriesChanged, m.integrityWarnings, m.cacheLookups, m.unlearnedModules,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveUseCase implements service.UseCaseObserver.
func (m *Metrics) ObserveUseCase(_ context.Context, event service.UseCaseEvent) {
	outcome := "success"
	if !event.Success {
		outcome = "error"
	}
	m.useCases.WithLabelValues(event.Name, outcome).Inc()
	m.durations.WithLabelValues(event.Name).Observe(event.Duration.Seconds())

	if n, ok := event.Fields["changed"].(int); ok && n > 0 {
		status, _ := event.Fields["status"].(string)
		m.entriesChanged.WithLabelValues(status).Add(float64(n))
	}
	if n, ok := event.Fields["warnings"].(int); ok && n > 0 {
		m.integrityWarnings.Add(float64(n))
	}
	if cache, ok := event.Fields["cache"].(string); ok {
		m.cacheLookups.WithLabelValues(cache).Inc()
	}
	if n, ok := event.Fields["unlearned_modules"].(int); ok {
		course, _ := event.Fields["course_id"].(string)
		m.unlearnedModules.WithLabelValues(course).Set(float64(n))
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Router serves /metrics and a /health check.
func (m *Metrics) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry}))
	return r
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           m.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
