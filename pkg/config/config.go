package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"msktravels/pkg/logger"
)

type Config struct {
	Port string

	APIBaseURL    string
	APITimeout    time.Duration
	SubmitTimeout time.Duration

	SubmissionBackend   string
	RestBookingEndpoint string
	ContactBackend      string
	RelayTransport      string
	SearchRequiresAuth  bool

	EmailJSEndpoint        string
	EmailJSServiceID       string
	EmailJSPublicKey       string
	EmailJSAccessToken     string
	EmailJSBookingTemplate string
	EmailJSContactTemplate string

	VisitorSecret       string
	VisitorIdleTTL      time.Duration
	VisitorCookieSecure bool
	HandoffTTL          time.Duration

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Log *logger.Logger
}

func Load(serviceName string) *Config {
	cfg := &Config{
		Port: getEnvStr(EnvPort, DefaultPort),

		APIBaseURL:    strings.TrimRight(getEnvStr(EnvAPIBaseURL, DefaultAPIBaseURL), "/"),
		APITimeout:    getEnvDuration(EnvAPITimeout, DefaultAPITimeout),
		SubmitTimeout: getEnvDuration(EnvSubmitTimeout, DefaultSubmitTimeout),

		SubmissionBackend:   strings.ToLower(getEnvStr(EnvSubmissionBackend, DefaultSubmissionBackend)),
		RestBookingEndpoint: strings.ToLower(getEnvStr(EnvRestBookingEndpoint, DefaultRestBookingEndpoint)),
		ContactBackend:      strings.ToLower(getEnvStr(EnvContactBackend, DefaultContactBackend)),
		RelayTransport:      strings.ToLower(getEnvStr(EnvRelayTransport, DefaultRelayTransport)),
		SearchRequiresAuth:  getEnvBool(EnvSearchRequiresAuth, DefaultSearchRequiresAuth),

		EmailJSEndpoint:        getEnvStr(EnvEmailJSEndpoint, DefaultEmailJSEndpoint),
		EmailJSServiceID:       getEnvStr(EnvEmailJSServiceID, DefaultEmailJSServiceID),
		EmailJSPublicKey:       getEnvStr(EnvEmailJSPublicKey, DefaultEmailJSPublicKey),
		EmailJSAccessToken:     getEnvStr(EnvEmailJSAccessToken, ""),
		EmailJSBookingTemplate: getEnvStr(EnvEmailJSBookingTemplate, DefaultEmailJSBookingTemplate),
		EmailJSContactTemplate: getEnvStr(EnvEmailJSContactTemplate, DefaultEmailJSContactTemplate),

		VisitorSecret:       getEnvStr(EnvVisitorSecret, ""),
		VisitorIdleTTL:      getEnvDuration(EnvVisitorIdleTTL, DefaultVisitorIdleTTL),
		VisitorCookieSecure: getEnvBool(EnvVisitorCookieSecure, DefaultVisitorCookieSecure),
		HandoffTTL:          getEnvDuration(EnvHandoffTTL, DefaultHandoffTTL),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
	}

	if cfg.VisitorSecret == "" {
		cfg.VisitorSecret = randomSecret()
		cfg.Log.Warn("VISITOR_SECRET not set, generated an ephemeral one; visitor cookies will not survive a restart")
	}

	err := cfg.Validate()
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// UsesRelay reports whether any delivery path needs the notification relay.
func (cfg *Config) UsesRelay() bool {
	return cfg.SubmissionBackend == SubmissionRelay || cfg.ContactBackend == SubmissionRelay
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if u, err := url.Parse(cfg.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errors = append(errors, fmt.Sprintf("APIBaseURL must be an absolute URL, got: %s", cfg.APIBaseURL))
	}

	if cfg.SubmissionBackend != SubmissionREST && cfg.SubmissionBackend != SubmissionRelay {
		errors = append(errors, fmt.Sprintf("SubmissionBackend must be one of [rest, relay], got: %s", cfg.SubmissionBackend))
	}
	if cfg.ContactBackend != SubmissionREST && cfg.ContactBackend != SubmissionRelay {
		errors = append(errors, fmt.Sprintf("ContactBackend must be one of [rest, relay], got: %s", cfg.ContactBackend))
	}
	if cfg.RestBookingEndpoint != EndpointBook && cfg.RestBookingEndpoint != EndpointDirect {
		errors = append(errors, fmt.Sprintf("RestBookingEndpoint must be one of [book, direct], got: %s", cfg.RestBookingEndpoint))
	}

	if cfg.UsesRelay() {
		switch cfg.RelayTransport {
		case TransportEmailJS:
			if cfg.EmailJSServiceID == "" {
				errors = append(errors, "EmailJSServiceID cannot be empty when the emailjs relay is used")
			}
			if cfg.EmailJSPublicKey == "" {
				errors = append(errors, "EmailJSPublicKey cannot be empty when the emailjs relay is used")
			}
			if u, err := url.Parse(cfg.EmailJSEndpoint); err != nil || u.Scheme == "" || u.Host == "" {
				errors = append(errors, fmt.Sprintf("EmailJSEndpoint must be an absolute URL, got: %s", cfg.EmailJSEndpoint))
			}
		case TransportKafka:
		default:
			errors = append(errors, fmt.Sprintf("RelayTransport must be one of [emailjs, kafka], got: %s", cfg.RelayTransport))
		}
		if cfg.SubmissionBackend == SubmissionRelay && cfg.EmailJSBookingTemplate == "" {
			errors = append(errors, "EmailJSBookingTemplate cannot be empty when bookings go through the relay")
		}
		if cfg.ContactBackend == SubmissionRelay && cfg.EmailJSContactTemplate == "" {
			errors = append(errors, "EmailJSContactTemplate cannot be empty when contact messages go through the relay")
		}
	}

	if len(cfg.VisitorSecret) < 32 {
		errors = append(errors, "VisitorSecret must be at least 32 characters")
	}

	if cfg.APITimeout <= 0 {
		errors = append(errors, fmt.Sprintf("APITimeout must be positive, got: %s", cfg.APITimeout))
	}
	if cfg.SubmitTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("SubmitTimeout must be positive, got: %s", cfg.SubmitTimeout))
	}
	if cfg.VisitorIdleTTL <= 0 {
		errors = append(errors, fmt.Sprintf("VisitorIdleTTL must be positive, got: %s", cfg.VisitorIdleTTL))
	}
	if cfg.HandoffTTL <= 0 {
		errors = append(errors, fmt.Sprintf("HandoffTTL must be positive, got: %s", cfg.HandoffTTL))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.RequestTimeout > 0 && cfg.SubmitTimeout > cfg.RequestTimeout {
		errors = append(errors, fmt.Sprintf("SubmitTimeout (%s) must not exceed RequestTimeout (%s)", cfg.SubmitTimeout, cfg.RequestTimeout))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"port", cfg.Port,
		"api_base_url", cfg.APIBaseURL,
		"api_timeout", cfg.APITimeout,
		"submit_timeout", cfg.SubmitTimeout,
		"submission_backend", cfg.SubmissionBackend,
		"rest_booking_endpoint", cfg.RestBookingEndpoint,
		"contact_backend", cfg.ContactBackend,
		"relay_transport", cfg.RelayTransport,
		"search_requires_auth", cfg.SearchRequiresAuth,
		"emailjs_service_id", cfg.EmailJSServiceID,
		"emailjs_access_token_set", cfg.EmailJSAccessToken != "",
		"visitor_idle_ttl", cfg.VisitorIdleTTL,
		"visitor_cookie_secure", cfg.VisitorCookieSecure,
		"handoff_ttl", cfg.HandoffTTL,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
