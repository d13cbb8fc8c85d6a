package webclient

import (
	"fmt"

	"msktravels/pkg/client"
	"msktravels/pkg/config"
	"msktravels/pkg/kafka"
	kafka_config "msktravels/pkg/kafka/config"
	kafka_middleware "msktravels/pkg/kafka/middleware"
)

// NewRelay builds the notification relay shared by all visitors. The
// returned close function releases the transport.
func NewRelay(cfg *config.Config, source string) (client.Relay, func() error, error) {
	noop := func() error { return nil }

	if !cfg.UsesRelay() {
		return nil, noop, nil
	}

	switch cfg.RelayTransport {
	case config.TransportEmailJS:
		cfg.Log.Info("Relay transport configured", "transport", config.TransportEmailJS, "endpoint", cfg.EmailJSEndpoint)
		return client.NewEmailJSRelay(client.EmailJSConfig{
			Endpoint:    cfg.EmailJSEndpoint,
			ServiceID:   cfg.EmailJSServiceID,
			PublicKey:   cfg.EmailJSPublicKey,
			AccessToken: cfg.EmailJSAccessToken,
			Timeout:     cfg.APITimeout,
		}), noop, nil

	case config.TransportKafka:
		kafkaCfg, err := kafka_config.Load()
		if err != nil {
			return nil, noop, fmt.Errorf("invalid kafka configuration: %w", err)
		}
		kafkaCfg.LogConfiguration(cfg.Log.Info)

		producer, err := kafka.NewProducer(kafkaCfg, cfg.Log)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create kafka producer: %w", err)
		}
		if kafkaCfg.EnableMiddleware {
			producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		}

		cfg.Log.Info("Relay transport configured", "transport", config.TransportKafka, "topic", producer.Topic())
		return client.NewKafkaRelay(producer, source), producer.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown relay transport %q", cfg.RelayTransport)
	}
}
