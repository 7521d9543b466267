package observability

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "makechat"

var (
	repoOnce    sync.Once
	repoCounter metric.Int64Counter

	authOnce    sync.Once
	authCounter metric.Int64Counter

	guardOnce    sync.Once
	guardCounter metric.Int64Counter

	sessionOnce    sync.Once
	sessionCounter metric.Int64Counter
)

// RecordRepositoryOperation counts one store operation per collection and
// outcome (success, not_found, error).
func RecordRepositoryOperation(ctx context.Context, collection, operation, outcome string) {
	repoOnce.Do(func() {
		counter, err := otel.Meter(meterName).Int64Counter("repository.operations")
		if err == nil {
			repoCounter = counter
		}
	})
	if repoCounter == nil {
		return
	}
	repoCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("collection", collection),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

// RecordAuthAttempt counts login, register and logout outcomes.
func RecordAuthAttempt(ctx context.Context, action, outcome string) {
	authOnce.Do(func() {
		counter, err := otel.Meter(meterName).Int64Counter("auth.attempts")
		if err == nil {
			authCounter = counter
		}
	})
	if authCounter == nil {
		return
	}
	authCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("outcome", outcome),
	))
}

// RecordGuardDecision counts pre-handler guard outcomes per guard kind and
// credential source (cookie, header, none).
func RecordGuardDecision(ctx context.Context, guard, source, outcome string) {
	guardOnce.Do(func() {
		counter, err := otel.Meter(meterName).Int64Counter("guard.decisions")
		if err == nil {
			guardCounter = counter
		}
	})
	if guardCounter == nil {
		return
	}
	guardCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("guard", guard),
		attribute.String("source", source),
		attribute.String("outcome", outcome),
	))
}

// RecordSessionEvent counts session store events (create, resolve, delete).
func RecordSessionEvent(ctx context.Context, event, outcome string) {
	sessionOnce.Do(func() {
		counter, err := otel.Meter(meterName).Int64Counter("session.events")
		if err == nil {
			sessionCounter = counter
		}
	})
	if sessionCounter == nil {
		return
	}
	sessionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", event),
		attribute.String("outcome", outcome),
	))
}
