package config

import (
	"context"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	configMetricsOnce sync.Once
	configCounter     metric.Int64Counter
)

func recordConfigValidationEvent(ctx context.Context, environment, outcome, errorClass string) {
	configMetricsOnce.Do(func() {
		counter, err := otel.Meter("makechat").Int64Counter("config.validation.events")
		if err == nil {
			configCounter = counter
		}
	})
	if configCounter == nil {
		return
	}
	configCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("environment", normalizeEnvironment(environment)),
		attribute.String("outcome", outcome),
		attribute.String("error_class", errorClass),
	))
}

func normalizeEnvironment(environment string) string {
	v := strings.TrimSpace(strings.ToLower(environment))
	if v == "" {
		return "unknown"
	}
	return v
}

func classifyConfigError(err error) string {
	if err == nil {
		return "none"
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "required"):
		return "missing"
	case strings.Contains(msg, "must"):
		return "validation"
	default:
		return "load"
	}
}
