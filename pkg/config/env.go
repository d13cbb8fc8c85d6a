package config

const (
	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvAPIBaseURL    = "API_BASE_URL"
	EnvAPITimeout    = "API_TIMEOUT"
	EnvSubmitTimeout = "SUBMIT_TIMEOUT"

	EnvSubmissionBackend   = "SUBMISSION_BACKEND"
	EnvRestBookingEndpoint = "REST_BOOKING_ENDPOINT"
	EnvContactBackend      = "CONTACT_BACKEND"
	EnvRelayTransport      = "RELAY_TRANSPORT"
	EnvSearchRequiresAuth  = "SEARCH_REQUIRES_AUTH"

	EnvEmailJSEndpoint        = "EMAILJS_ENDPOINT"
	EnvEmailJSServiceID       = "EMAILJS_SERVICE_ID"
	EnvEmailJSPublicKey       = "EMAILJS_PUBLIC_KEY"
	EnvEmailJSAccessToken     = "EMAILJS_ACCESS_TOKEN"
	EnvEmailJSBookingTemplate = "EMAILJS_BOOKING_TEMPLATE_ID"
	EnvEmailJSContactTemplate = "EMAILJS_CONTACT_TEMPLATE_ID"

	EnvVisitorSecret       = "VISITOR_SECRET"
	EnvVisitorIdleTTL      = "VISITOR_IDLE_TTL"
	EnvVisitorCookieSecure = "VISITOR_COOKIE_SECURE"
	EnvHandoffTTL          = "HANDOFF_TTL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
