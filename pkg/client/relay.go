package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"msktravels/pkg/kafka"
)

// Relay delivers a templated notification. Delivery itself is the relay's
// business; a nil error only means the relay accepted the message.
type Relay interface {
	SendMessage(ctx context.Context, templateID string, params map[string]string) error
}

// RelayError is a rejection reported by the relay service.
type RelayError struct {
	StatusCode int
	Text       string
}

func (e *RelayError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("relay returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("relay returned status %d: %s", e.StatusCode, e.Text)
}

type EmailJSConfig struct {
	Endpoint    string
	ServiceID   string
	PublicKey   string
	AccessToken string
	Timeout     time.Duration
}

// EmailJSRelay sends through the EmailJS REST endpoint.
type EmailJSRelay struct {
	cfg        EmailJSConfig
	httpClient *http.Client
}

func NewEmailJSRelay(cfg EmailJSConfig) *EmailJSRelay {
	return &EmailJSRelay{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
	AccessToken    string            `json:"accessToken,omitempty"`
}

func (r *EmailJSRelay) SendMessage(ctx context.Context, templateID string, params map[string]string) error {
	payload, err := json.Marshal(emailJSRequest{
		ServiceID:      r.cfg.ServiceID,
		TemplateID:     templateID,
		UserID:         r.cfg.PublicKey,
		TemplateParams: params,
		AccessToken:    r.cfg.AccessToken,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal relay request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RelayError{StatusCode: resp.StatusCode, Text: strings.TrimSpace(string(body))}
	}
	return nil
}

// Publisher is the part of the kafka producer the relay needs.
type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// KafkaRelay hands notifications to the mailer through a topic.
type KafkaRelay struct {
	publisher Publisher
	source    string
}

func NewKafkaRelay(publisher Publisher, source string) *KafkaRelay {
	return &KafkaRelay{publisher: publisher, source: source}
}

func (r *KafkaRelay) SendMessage(ctx context.Context, templateID string, params map[string]string) error {
	msg, err := kafka.NewNotificationMessage(kafka.Notification{
		TemplateID: templateID,
		Params:     params,
	}, params["email"], r.source)
	if err != nil {
		return fmt.Errorf("failed to build relay message: %w", err)
	}

	return r.publisher.Publish(ctx, msg)
}
