package kafka_config

import "time"

const (
	DefaultKafkaBrokers = "localhost:9092"
	DefaultClientID     = "msk-webclient"

	DefaultRelayTopic    = "msk.notifications"
	DefaultRelayDLQTopic = ""

	// The relay is synchronous: the caller needs the delivery outcome to
	// decide between confirmed and failed.
	DefaultProducerMaxAttempts  = 1
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerWriteTimeout = 10 * time.Second
	DefaultProducerRequireAcks  = -1
	DefaultProducerCompression  = "snappy"

	DefaultEnableMiddleware = true
)
