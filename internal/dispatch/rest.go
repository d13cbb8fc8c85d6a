package dispatch

import (
	"context"
	"fmt"

	"msktravels/pkg/client"
	"msktravels/pkg/config"
	"msktravels/pkg/model"
)

type restDispatcher struct {
	api      BookingAPI
	endpoint string
	cfg      *config.Config
}

func newRESTDispatcher(api BookingAPI, endpoint string, cfg *config.Config) (*restDispatcher, error) {
	if endpoint != config.EndpointBook && endpoint != config.EndpointDirect {
		return nil, fmt.Errorf("unknown booking endpoint %q", endpoint)
	}
	return &restDispatcher{api: api, endpoint: endpoint, cfg: cfg}, nil
}

func (d *restDispatcher) Submit(ctx context.Context, intent *model.BookingIntent) (*model.Receipt, error) {
	if d.endpoint == config.EndpointDirect {
		return d.submitDirect(ctx, intent)
	}
	return d.submitBook(ctx, intent)
}

func (d *restDispatcher) submitBook(ctx context.Context, intent *model.BookingIntent) (*model.Receipt, error) {
	record, err := d.api.Book(ctx, model.BookRequest{
		CustomerName:  intent.CustomerName,
		CustomerEmail: intent.CustomerEmail,
		CustomerPhone: intent.CustomerPhone,
		FromLocation:  intent.FromLocation,
		ToLocation:    intent.ToLocation,
		StartDate:     intent.StartDate,
		EndDate:       intent.EndDate,
		Vehicle:       intent.VehicleID,
	})
	if err != nil {
		d.cfg.Log.Warn("Booking rejected by travel API",
			"vehicle_id", intent.VehicleID,
			"error", err,
		)
		return nil, submissionError(err)
	}

	d.cfg.Log.Info("Booking created",
		"booking_id", record.ID,
		"status", record.Status,
	)

	return &model.Receipt{
		ConfirmationID: client.FormatID(record.ID),
		Total:          record.TotalPrice,
		Status:         record.Status,
		StatusDisplay:  record.StatusDisplay,
		CustomerName:   record.CustomerName,
		CustomerEmail:  record.CustomerEmail,
		Vehicle:        record.VehicleDetails,
	}, nil
}

func (d *restDispatcher) submitDirect(ctx context.Context, intent *model.BookingIntent) (*model.Receipt, error) {
	msg, err := d.api.DirectBooking(ctx, intent)
	if err != nil {
		d.cfg.Log.Warn("Direct booking rejected by travel API",
			"vehicle_id", intent.VehicleID,
			"error", err,
		)
		return nil, submissionError(err)
	}

	d.cfg.Log.Info("Direct booking accepted", "vehicle_id", intent.VehicleID)
	return &model.Receipt{Message: msg}, nil
}
