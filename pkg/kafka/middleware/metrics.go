package kafka_middleware

import (
	"context"

	"dormitory/pkg/kafka"
	"dormitory/pkg/metrics"
)

// MetricsProducerMiddleware counts publishes by outcome.
func MetricsProducerMiddleware(m *metrics.Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		err := next(ctx, msg)
		m.ObservePublish(err)
		return err
	}
}
