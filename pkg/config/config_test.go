package config

import (
	"strings"
	"testing"
	"time"

	"msktravels/pkg/logger"
)

func validConfig() *Config {
	return &Config{
		Port:                   DefaultPort,
		APIBaseURL:             DefaultAPIBaseURL,
		APITimeout:             DefaultAPITimeout,
		SubmitTimeout:          DefaultSubmitTimeout,
		SubmissionBackend:      DefaultSubmissionBackend,
		RestBookingEndpoint:    DefaultRestBookingEndpoint,
		ContactBackend:         DefaultContactBackend,
		RelayTransport:         DefaultRelayTransport,
		EmailJSEndpoint:        DefaultEmailJSEndpoint,
		EmailJSServiceID:       DefaultEmailJSServiceID,
		EmailJSPublicKey:       DefaultEmailJSPublicKey,
		EmailJSBookingTemplate: DefaultEmailJSBookingTemplate,
		EmailJSContactTemplate: DefaultEmailJSContactTemplate,
		VisitorSecret:          strings.Repeat("s", 32),
		VisitorIdleTTL:         DefaultVisitorIdleTTL,
		HandoffTTL:             DefaultHandoffTTL,
		RateLimitRequests:      DefaultRateLimitRequests,
		RateLimitWindow:        DefaultRateLimitWindow,
		RequestTimeout:         DefaultRequestTimeout,
		MaxRequestSize:         DefaultMaxRequestSize,
		ReadTimeout:            DefaultReadTimeout,
		WriteTimeout:           DefaultWriteTimeout,
		IdleTimeout:            DefaultIdleTimeout,
		ShutdownTimeout:        DefaultShutdownTimeout,
		Log:                    logger.Discard(),
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(cfg *Config) {}},
		{name: "relay over kafka", mutate: func(cfg *Config) {
			cfg.SubmissionBackend = SubmissionRelay
			cfg.RelayTransport = TransportKafka
		}},
		{name: "bad port", mutate: func(cfg *Config) { cfg.Port = "99999" }, wantErr: "Port must be between"},
		{name: "relative api url", mutate: func(cfg *Config) { cfg.APIBaseURL = "/api" }, wantErr: "APIBaseURL"},
		{name: "unknown backend", mutate: func(cfg *Config) { cfg.SubmissionBackend = "fax" }, wantErr: "SubmissionBackend"},
		{name: "unknown endpoint", mutate: func(cfg *Config) { cfg.RestBookingEndpoint = "bulk" }, wantErr: "RestBookingEndpoint"},
		{name: "unknown transport", mutate: func(cfg *Config) { cfg.RelayTransport = "smtp" }, wantErr: "RelayTransport"},
		{name: "unknown transport ignored without relay", mutate: func(cfg *Config) {
			cfg.ContactBackend = SubmissionREST
			cfg.RelayTransport = "smtp"
		}},
		{name: "missing public key", mutate: func(cfg *Config) { cfg.EmailJSPublicKey = "" }, wantErr: "EmailJSPublicKey"},
		{name: "short secret", mutate: func(cfg *Config) { cfg.VisitorSecret = "short" }, wantErr: "VisitorSecret"},
		{name: "submit exceeds request timeout", mutate: func(cfg *Config) {
			cfg.SubmitTimeout = time.Minute
			cfg.RequestTimeout = 10 * time.Second
		}, wantErr: "must not exceed RequestTimeout"},
		{name: "non-positive rate limit", mutate: func(cfg *Config) { cfg.RateLimitRequests = 0 }, wantErr: "RateLimitRequests"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "0"
	cfg.SubmissionBackend = "fax"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "1. ") || !strings.Contains(err.Error(), "2. ") {
		t.Errorf("expected numbered list, got %q", err.Error())
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("MSK_TEST_BOOL", "true")
	t.Setenv("MSK_TEST_DURATION", "90s")
	t.Setenv("MSK_TEST_NUM", "nope")

	if !getEnvBool("MSK_TEST_BOOL", false) {
		t.Errorf("getEnvBool() should parse true")
	}
	if got := getEnvDuration("MSK_TEST_DURATION", time.Second); got != 90*time.Second {
		t.Errorf("getEnvDuration() = %s, want 90s", got)
	}
	if got := getEnvNum("MSK_TEST_NUM", 7); got != 7 {
		t.Errorf("getEnvNum() = %d, want fallback 7", got)
	}
	if got := getEnvStr("MSK_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("getEnvStr() = %q, want fallback", got)
	}
}
