package config

import "time"

const (
	SubmissionREST  = "rest"
	SubmissionRelay = "relay"

	EndpointBook   = "book"
	EndpointDirect = "direct"

	TransportEmailJS = "emailjs"
	TransportKafka   = "kafka"
)

const (
	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultAPIBaseURL    = "http://localhost:8000/api"
	DefaultAPITimeout    = 15 * time.Second
	DefaultSubmitTimeout = 30 * time.Second

	DefaultSubmissionBackend   = SubmissionREST
	DefaultRestBookingEndpoint = EndpointBook
	DefaultContactBackend      = SubmissionRelay
	DefaultRelayTransport      = TransportEmailJS
	DefaultSearchRequiresAuth  = false

	DefaultEmailJSEndpoint        = "https://api.emailjs.com/api/v1.0/email/send"
	DefaultEmailJSServiceID       = "service_zcu7dsa"
	DefaultEmailJSPublicKey       = "VcbYcAWCdtw78Bqj4"
	DefaultEmailJSBookingTemplate = "template_vbrpk7s"
	DefaultEmailJSContactTemplate = "template_t9y97se"

	DefaultVisitorIdleTTL      = 2 * time.Hour
	DefaultVisitorCookieSecure = false
	DefaultHandoffTTL          = 30 * time.Minute

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 45 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)
