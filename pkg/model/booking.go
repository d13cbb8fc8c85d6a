package model

import "time"

// BookingIntent is the full request assembled at confirmation time. Its
// JSON form is the direct-booking payload.
type BookingIntent struct {
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
	FromLocation  string `json:"fromLocation"`
	ToLocation    string `json:"toLocation"`
	StartDate     Date   `json:"startDate"`
	EndDate       Date   `json:"endDate"`
	Passengers    int    `json:"passengers,omitempty"`
	VehicleID     int64  `json:"vehicleId"`
	VehicleName   string `json:"vehicleName"`
	VehicleType   string `json:"vehicleType"`
	Capacity      string `json:"capacity"`
	PricePerDay   Price  `json:"pricePerDay"`
	PackageName   string `json:"packageName"`
	PackagePrice  Price  `json:"packagePrice"`
	TotalCost     Price  `json:"totalCost"`
}

// BookRequest is the criteria-plus-vehicle variant accepted by the book endpoint.
type BookRequest struct {
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	FromLocation  string `json:"from_location"`
	ToLocation    string `json:"to_location"`
	StartDate     Date   `json:"start_date"`
	EndDate       Date   `json:"end_date"`
	Vehicle       int64  `json:"vehicle"`
}

// Receipt is what a submission backend reports back. Relay receipts
// carry only the message.
type Receipt struct {
	ConfirmationID string        `json:"confirmation_id,omitempty"`
	Total          *Price        `json:"total,omitempty"`
	Status         string        `json:"status,omitempty"`
	StatusDisplay  string        `json:"status_display,omitempty"`
	CustomerName   string        `json:"customer_name,omitempty"`
	CustomerEmail  string        `json:"customer_email,omitempty"`
	Vehicle        *VehicleOffer `json:"vehicle,omitempty"`
	Message        string        `json:"message,omitempty"`
}

type Confirmation struct {
	Intent         *BookingIntent `json:"intent"`
	Receipt        *Receipt       `json:"receipt"`
	Total          Price          `json:"total"`
	ConfirmationID string         `json:"confirmation_id,omitempty"`
	ConfirmedAt    time.Time      `json:"confirmed_at"`
}

// NewConfirmation prefers the server-computed total when the backend sent one.
func NewConfirmation(intent *BookingIntent, receipt *Receipt, at time.Time) *Confirmation {
	total := intent.TotalCost
	if receipt != nil && receipt.Total != nil {
		total = *receipt.Total
	}
	c := &Confirmation{
		Intent:      intent,
		Receipt:     receipt,
		Total:       total,
		ConfirmedAt: at,
	}
	if receipt != nil {
		c.ConfirmationID = receipt.ConfirmationID
	}
	return c
}

// BookingRecord is a stored booking as the book endpoint returns it.
type BookingRecord struct {
	ID             int64         `json:"id"`
	CustomerName   string        `json:"customer_name"`
	CustomerEmail  string        `json:"customer_email"`
	CustomerPhone  string        `json:"customer_phone"`
	FromLocation   string        `json:"from_location"`
	ToLocation     string        `json:"to_location"`
	StartDate      Date          `json:"start_date"`
	EndDate        Date          `json:"end_date"`
	Vehicle        int64         `json:"vehicle"`
	VehicleDetails *VehicleOffer `json:"vehicle_details,omitempty"`
	TotalPrice     *Price        `json:"total_price,omitempty"`
	Status         string        `json:"status"`
	StatusDisplay  string        `json:"status_display,omitempty"`
	CreatedAt      string        `json:"created_at,omitempty"`
}
