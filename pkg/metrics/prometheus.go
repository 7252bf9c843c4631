package metrics

import (
	"compliance_checker/internal/domain"
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MetricsCollector struct {
	registry           *prometheus.Registry
	checksCompleted    prometheus.Counter
	checksFailed       prometheus.Counter
	checkDuration      prometheus.Histogram
	matchesByRisk      *prometheus.CounterVec
	otpSent            *prometheus.CounterVec
	otpVerifications   *prometheus.CounterVec
	sessionTransitions *prometheus.CounterVec
	logger             *slog.Logger
}

func NewMetricsCollector(logger *slog.Logger) *MetricsCollector {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	collector := &MetricsCollector{
		registry: registry,
		checksCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "compliance_checks_completed_total",
			Help: "Total number of completed compliance checks",
		}),
		checksFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "compliance_checks_failed_total",
			Help: "Total number of rejected or failed compliance checks",
		}),
		checkDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "compliance_check_duration_seconds",
			Help:    "Time taken to run a compliance check",
			Buckets: prometheus.DefBuckets,
		}),
		matchesByRisk: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "compliance_matches_total",
			Help: "Applicable compliances returned, by risk level",
		}, []string{"risk_level"}),
		otpSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_otp_sent_total",
			Help: "OTP codes sent, by contact method and outcome",
		}, []string{"method", "outcome"}),
		otpVerifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_otp_verifications_total",
			Help: "OTP verification attempts, by outcome",
		}, []string{"outcome"}),
		sessionTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_session_transitions_total",
			Help: "Session flag changes, by target state",
		}, []string{"state"}),
		logger: logger,
	}

	return collector
}

func (m *MetricsCollector) RecordCheck(duration time.Duration, summary domain.Summary, success bool) {
	if !success {
		m.checksFailed.Inc()
		m.checkDuration.Observe(duration.Seconds())
		return
	}

	m.checksCompleted.Inc()
	m.checkDuration.Observe(duration.Seconds())
	m.matchesByRisk.WithLabelValues(string(domain.RiskCritical)).Add(float64(summary.Critical))
	m.matchesByRisk.WithLabelValues(string(domain.RiskHigh)).Add(float64(summary.High))
	m.matchesByRisk.WithLabelValues(string(domain.RiskMedium)).Add(float64(summary.Medium))
	m.matchesByRisk.WithLabelValues(string(domain.RiskLow)).Add(float64(summary.Low))
}

func (m *MetricsCollector) RecordOTPSent(method domain.ContactMethod, outcome string) {
	m.otpSent.WithLabelValues(string(method), outcome).Inc()
}

func (m *MetricsCollector) RecordOTPVerification(outcome string) {
	m.otpVerifications.WithLabelValues(outcome).Inc()
}

func (m *MetricsCollector) RecordSessionTransition(state domain.SessionState) {
	m.sessionTransitions.WithLabelValues(string(state)).Inc()
}

func (m *MetricsCollector) GetHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *MetricsCollector) StartMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.GetHandler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		m.logger.Info("Starting metrics server", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.logger.Error("Metrics server failed", slog.String("error", err.Error()))
		}
	}()

	return server
}

func (m *MetricsCollector) Shutdown(ctx context.Context) error {
	m.logger.Info("Metrics collector shutdown complete")
	return nil
}
