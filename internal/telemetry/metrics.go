package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "cvpromote"

// Metrics — метрики run.
//
// Регистрируются в собственном registry, а не в глобальном: CLI
// выгружает их в textfile или pushgateway после run, а schedule-режим
// отдаёт на /metrics.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests     *prometheus.CounterVec
	apiDuration     *prometheus.HistogramVec
	pollQueries     *prometheus.CounterVec
	publishes       *prometheus.CounterVec
	publishWait     prometheus.Histogram
	promotions      *prometheus.CounterVec
	runs            *prometheus.CounterVec
	lastSuccess     prometheus.Gauge
	lastViewsPassed prometheus.Gauge
}

// NewMetrics создаёт и регистрирует метрики.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		apiRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Katello API requests by method and outcome",
		}, []string{"method", "outcome"}),
		apiDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Katello API request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		pollQueries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_queries_total",
			Help:      "Content view status queries by reported status",
		}, []string{"status"}),
		publishes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publishes_total",
			Help:      "Content view versions published",
		}, []string{"content_view"}),
		publishWait: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_wait_seconds",
			Help:      "Time spent waiting for a publish to finish",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		promotions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promotions_total",
			Help:      "Content view versions promoted by environment",
		}, []string{"content_view", "environment"}),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Batch runs by result",
		}, []string{"result"}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		}),
		lastViewsPassed: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_content_views",
			Help:      "Content views completed by the last run",
		}),
	}
}

// Registry возвращает registry метрик (для promhttp).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest учитывает запрос к API.
func (m *Metrics) ObserveRequest(method, outcome string, duration time.Duration) {
	m.apiRequests.WithLabelValues(method, outcome).Inc()
	m.apiDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// PollQuery учитывает запрос статуса.
func (m *Metrics) PollQuery(status string) {
	if status == "" {
		status = "unknown"
	}
	m.pollQueries.WithLabelValues(status).Inc()
}

// Published учитывает завершённую публикацию.
func (m *Metrics) Published(contentView string, wait time.Duration) {
	m.publishes.WithLabelValues(contentView).Inc()
	m.publishWait.Observe(wait.Seconds())
}

// Promoted учитывает продвижение.
func (m *Metrics) Promoted(contentView, environment string) {
	m.promotions.WithLabelValues(contentView, environment).Inc()
}

// RunFinished учитывает завершение run.
func (m *Metrics) RunFinished(views int, err error) {
	m.lastViewsPassed.Set(float64(views))
	if err != nil {
		m.runs.WithLabelValues("failure").Inc()
		return
	}
	m.runs.WithLabelValues("success").Inc()
	m.lastSuccess.SetToCurrentTime()
}

// WriteTextfile пишет метрики для node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Push отправляет метрики в Prometheus Pushgateway.
func (m *Metrics) Push(url, job string) error {
	if err := push.New(url, job).Gatherer(m.registry).Push(); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
