package kafka_middleware

import (
	"context"
	"time"

	"msktravels/pkg/kafka"
	"msktravels/pkg/logger"
)

// LoggingProducerMiddleware logs each relay publish with its outcome.
func LoggingProducerMiddleware(log *logger.Logger) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		fields := []any{
			"topic", msg.Topic,
			"key", msg.Key,
			"event_id", msg.EventID(),
			"template_id", msg.TemplateID(),
		}
		log.Debug("Publishing relay message", fields...)

		start := time.Now()
		err := next(ctx, msg)
		fields = append(fields, "duration", time.Since(start))

		if err != nil {
			log.Error("Failed to publish relay message", append(fields, "error", err)...)
			return err
		}
		log.Info("Relay message published", fields...)
		return nil
	}
}
