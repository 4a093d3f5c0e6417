package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	UsersCreatedTotal       metric.Int64Counter
	AuthAttemptsTotal       metric.Int64Counter
	ActivityLogEntriesTotal metric.Int64Counter
	DBQueryErrorsTotal      metric.Int64Counter
	RequestDurationSeconds  metric.Float64Histogram
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// Get returns the global metrics instance, initializing the instruments
// exactly once from the globally configured MeterProvider.
func Get() *AppMetrics {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("BetUserAPI")
		var err error
		m := &AppMetrics{}

		m.UsersCreatedTotal, err = meter.Int64Counter(
			"users_created_total",
			metric.WithDescription("Total number of users created"),
			metric.WithUnit("{user}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create users_created_total: %v", err)
		}

		m.AuthAttemptsTotal, err = meter.Int64Counter(
			"auth_attempts_total",
			metric.WithDescription("Total number of authentication attempts"),
			metric.WithUnit("{attempt}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create auth_attempts_total: %v", err)
		}

		m.ActivityLogEntriesTotal, err = meter.Int64Counter(
			"activity_log_entries_total",
			metric.WithDescription("Total number of activity log entries appended"),
			metric.WithUnit("{entry}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create activity_log_entries_total: %v", err)
		}

		m.DBQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of failed database queries"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_errors_total: %v", err)
		}

		m.RequestDurationSeconds, err = meter.Float64Histogram(
			"request_duration_seconds",
			metric.WithDescription("Duration of HTTP requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create request_duration_seconds: %v", err)
		}

		appMetrics = m
	})
	return appMetrics
}
