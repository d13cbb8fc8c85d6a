package dispatch

import (
	"context"
	"errors"
	"fmt"

	"msktravels/pkg/client"
	"msktravels/pkg/config"
	apperrors "msktravels/pkg/errors"
	"msktravels/pkg/model"
)

// Dispatcher hands an assembled booking to the configured backend.
type Dispatcher interface {
	Submit(ctx context.Context, intent *model.BookingIntent) (*model.Receipt, error)
}

// BookingAPI is the part of the travel API used for REST submission.
type BookingAPI interface {
	Book(ctx context.Context, req model.BookRequest) (*model.BookingRecord, error)
	DirectBooking(ctx context.Context, intent *model.BookingIntent) (string, error)
}

// New picks the backend once. api is required for the rest backend and
// relay for the relay backend.
func New(cfg *config.Config, api BookingAPI, relay client.Relay) (Dispatcher, error) {
	switch cfg.SubmissionBackend {
	case config.SubmissionREST:
		if api == nil {
			return nil, fmt.Errorf("rest submission needs a booking api")
		}
		return newRESTDispatcher(api, cfg.RestBookingEndpoint, cfg)
	case config.SubmissionRelay:
		if relay == nil {
			return nil, fmt.Errorf("relay submission needs a relay")
		}
		return newRelayDispatcher(relay, cfg.EmailJSBookingTemplate, cfg)
	default:
		return nil, fmt.Errorf("unknown submission backend %q", cfg.SubmissionBackend)
	}
}

// submissionError keeps the backend's own wording when there is one.
func submissionError(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apperrors.Submission(apiErr.Detail(), err)
	}
	var relayErr *client.RelayError
	if errors.As(err, &relayErr) {
		return apperrors.Submission(relayErr.Text, err)
	}
	return apperrors.Submission("", err)
}
