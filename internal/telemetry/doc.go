// Package telemetry обеспечивает наблюдаемость cvpromote.
//
// Включает:
//   - logging.go — structured logging через slog (tint для консоли, JSON для машин)
//   - metrics.go — Prometheus метрики run (textfile, pushgateway, /metrics)
package telemetry
