package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestPrice_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Price
		wantErr bool
	}{
		{name: "decimal string", input: `"3000.00"`, want: NewPrice(3000)},
		{name: "plain number", input: `4500`, want: NewPrice(4500)},
		{name: "fractional number", input: `1250.5`, want: Price(125050)},
		{name: "null", input: `null`, want: 0},
		{name: "garbage string", input: `"abc"`, wantErr: true},
		{name: "empty string", input: `""`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Price
			err := json.Unmarshal([]byte(tt.input), &p)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %s", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p != tt.want {
				t.Errorf("got %d, want %d", p, tt.want)
			}
		})
	}
}

func TestPrice_Format(t *testing.T) {
	if got := NewPrice(4500).String(); got != "4500.00" {
		t.Errorf("String() = %q, want 4500.00", got)
	}
	if got := Price(125050).String(); got != "1250.50" {
		t.Errorf("String() = %q, want 1250.50", got)
	}

	data, err := json.Marshal(NewPrice(3000))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != "3000" {
		t.Errorf("Marshal() = %s, want 3000", data)
	}
}

func TestDate_JSON(t *testing.T) {
	var c SearchCriteria
	body := `{"from_location":"Chennai","to_location":"Bangalore","from_date":"2025-03-01","to_date":"2025-03-04"}`
	if err := json.Unmarshal([]byte(body), &c); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if c.StartDate.String() != "2025-03-01" {
		t.Errorf("StartDate = %s", c.StartDate)
	}
	if !c.StartDate.Before(c.EndDate) {
		t.Errorf("expected start before end")
	}
	if days := c.StartDate.Days(c.EndDate); days != 3 {
		t.Errorf("Days() = %d, want 3", days)
	}

	out, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != body {
		t.Errorf("Marshal() = %s, want %s", out, body)
	}
}

func TestSession_DisplayName(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		want    string
	}{
		{name: "full name", session: Session{Username: "ravi", FirstName: "Ravi", LastName: "Kumar"}, want: "Ravi Kumar"},
		{name: "first name only", session: Session{Username: "ravi", FirstName: "Ravi"}, want: "Ravi"},
		{name: "username fallback", session: Session{Username: "ravi"}, want: "ravi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVehicleOffer_CapacityLabel(t *testing.T) {
	o := VehicleOffer{Capacity: 7}
	if o.CapacityLabel() != "7p" {
		t.Errorf("CapacityLabel() = %q, want 7p", o.CapacityLabel())
	}
	o.CapacityDisplay = "7 Seater"
	if o.CapacityLabel() != "7 Seater" {
		t.Errorf("CapacityLabel() = %q, want display value", o.CapacityLabel())
	}
}

func TestNewConfirmation(t *testing.T) {
	intent := &BookingIntent{TotalCost: NewPrice(3000)}
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("client total without receipt total", func(t *testing.T) {
		c := NewConfirmation(intent, &Receipt{Message: "Booking request submitted successfully!"}, at)
		if c.Total != NewPrice(3000) {
			t.Errorf("Total = %s, want 3000.00", c.Total)
		}
		if c.ConfirmationID != "" {
			t.Errorf("unexpected confirmation id %q", c.ConfirmationID)
		}
	})

	t.Run("server total wins", func(t *testing.T) {
		serverTotal := NewPrice(9000)
		c := NewConfirmation(intent, &Receipt{ConfirmationID: "42", Total: &serverTotal}, at)
		if c.Total != serverTotal {
			t.Errorf("Total = %s, want 9000.00", c.Total)
		}
		if c.ConfirmationID != "42" {
			t.Errorf("ConfirmationID = %q, want 42", c.ConfirmationID)
		}
	})
}
