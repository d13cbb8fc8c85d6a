package dispatch

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"msktravels/pkg/client"
	"msktravels/pkg/config"
	"msktravels/pkg/model"
)

const AckBookingRelayed = "Booking request submitted successfully!"

var summaryTemplate = template.Must(template.New("booking").Parse(`New booking request

Customer: {{.CustomerName}}
Email: {{.CustomerEmail}}
Phone: {{.CustomerPhone}}

Trip: {{.FromLocation}} to {{.ToLocation}}
Dates: {{.StartDate}} - {{.EndDate}}
{{- if .Passengers}}
Passengers: {{.Passengers}}
{{- end}}

Vehicle: {{.VehicleName}} ({{.VehicleType}})
Capacity: {{.Capacity}}
Price per day: ₹{{.PricePerDay}}

Package: {{.PackageName}}
Package price: ₹{{.PackagePrice}}
Total cost: ₹{{.TotalCost}}
`))

type relayDispatcher struct {
	relay      client.Relay
	templateID string
	cfg        *config.Config
}

func newRelayDispatcher(relay client.Relay, templateID string, cfg *config.Config) (*relayDispatcher, error) {
	if templateID == "" {
		return nil, fmt.Errorf("relay submission needs a booking template id")
	}
	return &relayDispatcher{relay: relay, templateID: templateID, cfg: cfg}, nil
}

func (d *relayDispatcher) Submit(ctx context.Context, intent *model.BookingIntent) (*model.Receipt, error) {
	params, err := BookingParams(intent)
	if err != nil {
		return nil, err
	}

	if err := d.relay.SendMessage(ctx, d.templateID, params); err != nil {
		d.cfg.Log.Warn("Relay rejected booking notification",
			"template_id", d.templateID,
			"error", err,
		)
		return nil, submissionError(err)
	}

	d.cfg.Log.Info("Booking notification relayed",
		"template_id", d.templateID,
		"vehicle_id", intent.VehicleID,
	)
	return &model.Receipt{Message: AckBookingRelayed}, nil
}

// BookingParams flattens an intent into relay template parameters, with
// the rendered summary under "message".
func BookingParams(intent *model.BookingIntent) (map[string]string, error) {
	var summary strings.Builder
	if err := summaryTemplate.Execute(&summary, intent); err != nil {
		return nil, fmt.Errorf("failed to render booking summary: %w", err)
	}

	params := map[string]string{
		"name":          intent.CustomerName,
		"email":         intent.CustomerEmail,
		"phone":         intent.CustomerPhone,
		"from_location": intent.FromLocation,
		"to_location":   intent.ToLocation,
		"start_date":    intent.StartDate.String(),
		"end_date":      intent.EndDate.String(),
		"vehicle_id":    client.FormatID(intent.VehicleID),
		"vehicle_name":  intent.VehicleName,
		"vehicle_type":  intent.VehicleType,
		"capacity":      intent.Capacity,
		"price_per_day": intent.PricePerDay.String(),
		"package_name":  intent.PackageName,
		"package_price": intent.PackagePrice.String(),
		"total_cost":    intent.TotalCost.String(),
		"subject":       "Booking request: " + intent.VehicleName,
		"message":       summary.String(),
	}
	if intent.Passengers > 0 {
		params["passengers"] = strconv.Itoa(intent.Passengers)
	}
	return params, nil
}
