package kafka_config

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

var compressions = []string{"none", "gzip", "snappy", "lz4", "zstd"}

// Config holds the settings of the notification relay producer.
type Config struct {
	Brokers  []string
	ClientID string

	RelayTopic    string
	RelayDLQTopic string

	ProducerMaxAttempts  int
	ProducerBatchTimeout time.Duration
	ProducerWriteTimeout time.Duration
	ProducerRequireAcks  int    // -1 = all, 0 = none, 1 = leader only
	ProducerCompression  string // one of compressions

	EnableMiddleware bool
}

// Load reads the relay producer settings from the environment. Values that
// are set but unparsable fail the load instead of falling back silently.
func Load() (*Config, error) {
	env := &envReader{}

	cfg := &Config{
		Brokers:  splitBrokers(env.str(EnvKafkaBrokers, DefaultKafkaBrokers)),
		ClientID: env.str(EnvKafkaClientID, DefaultClientID),

		RelayTopic:    env.str(EnvKafkaRelayTopic, DefaultRelayTopic),
		RelayDLQTopic: env.str(EnvKafkaRelayDLQTopic, DefaultRelayDLQTopic),

		ProducerMaxAttempts:  env.num(EnvKafkaProducerMaxAttempts, DefaultProducerMaxAttempts),
		ProducerBatchTimeout: env.duration(EnvKafkaProducerBatchTimeout, DefaultProducerBatchTimeout),
		ProducerWriteTimeout: env.duration(EnvKafkaProducerWriteTimeout, DefaultProducerWriteTimeout),
		ProducerRequireAcks:  env.num(EnvKafkaProducerRequireAcks, DefaultProducerRequireAcks),
		ProducerCompression:  strings.ToLower(env.str(EnvKafkaProducerCompression, DefaultProducerCompression)),

		EnableMiddleware: env.boolean(EnvKafkaEnableMiddleware, DefaultEnableMiddleware),
	}

	problems := append(env.problems, cfg.problems()...)
	if len(problems) > 0 {
		return nil, joinProblems(problems)
	}
	return cfg, nil
}

func splitBrokers(list string) []string {
	brokers := strings.Split(list, ",")
	for i, broker := range brokers {
		brokers[i] = strings.TrimSpace(broker)
	}
	return brokers
}

func (cfg *Config) Validate() error {
	if problems := cfg.problems(); len(problems) > 0 {
		return joinProblems(problems)
	}
	return nil
}

func (cfg *Config) problems() []string {
	var problems []string

	if len(cfg.Brokers) == 0 {
		problems = append(problems, "At least one Kafka broker is required")
	}
	for i, broker := range cfg.Brokers {
		if broker == "" {
			problems = append(problems, fmt.Sprintf("Broker %d cannot be empty", i))
		}
	}

	if cfg.RelayTopic == "" {
		problems = append(problems, "RelayTopic cannot be empty")
	}
	if cfg.RelayDLQTopic != "" && cfg.RelayDLQTopic == cfg.RelayTopic {
		problems = append(problems, "RelayDLQTopic must differ from RelayTopic")
	}

	if cfg.ProducerMaxAttempts <= 0 {
		problems = append(problems, fmt.Sprintf("ProducerMaxAttempts must be positive, got: %d", cfg.ProducerMaxAttempts))
	}
	if cfg.ProducerBatchTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("ProducerBatchTimeout must be positive, got: %s", cfg.ProducerBatchTimeout))
	}
	if cfg.ProducerWriteTimeout < 0 {
		problems = append(problems, fmt.Sprintf("ProducerWriteTimeout cannot be negative, got: %s", cfg.ProducerWriteTimeout))
	}
	if !slices.Contains(compressions, cfg.ProducerCompression) {
		problems = append(problems, fmt.Sprintf("ProducerCompression must be one of %v, got: %s", compressions, cfg.ProducerCompression))
	}
	if cfg.ProducerRequireAcks < -1 || cfg.ProducerRequireAcks > 1 {
		problems = append(problems, fmt.Sprintf("ProducerRequireAcks must be -1, 0, or 1, got: %d", cfg.ProducerRequireAcks))
	}

	return problems
}

func joinProblems(problems []string) error {
	var b strings.Builder
	b.WriteString("Kafka configuration validation failed:\n")
	for i, p := range problems {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, p)
	}
	return fmt.Errorf("%s", b.String())
}

func (cfg *Config) LogConfiguration(logFunc func(msg string, keysAndValues ...any)) {
	if logFunc == nil {
		return
	}

	logFunc("Kafka relay configuration loaded",
		"brokers", cfg.Brokers,
		"client_id", cfg.ClientID,
		"relay_topic", cfg.RelayTopic,
		"relay_dlq_topic", cfg.RelayDLQTopic,
		"producer_max_attempts", cfg.ProducerMaxAttempts,
		"producer_batch_timeout", cfg.ProducerBatchTimeout,
		"producer_write_timeout", cfg.ProducerWriteTimeout,
		"producer_require_acks", cfg.ProducerRequireAcks,
		"producer_compression", cfg.ProducerCompression,
		"enable_middleware", cfg.EnableMiddleware,
	)
}
