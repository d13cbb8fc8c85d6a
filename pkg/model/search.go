package model

import "fmt"

const (
	VehicleCar    = "car"
	VehicleSUV    = "suv"
	VehicleVan    = "van"
	VehicleBus    = "bus"
	VehicleLuxury = "luxury"

	MinPassengers = 1
	MaxPassengers = 20
)

var VehicleTypes = []string{VehicleCar, VehicleSUV, VehicleVan, VehicleBus, VehicleLuxury}

// SearchCriteria is a validated search request. Field names follow the
// travel API's search endpoint.
type SearchCriteria struct {
	Origin      string `json:"from_location"`
	Destination string `json:"to_location"`
	StartDate   Date   `json:"from_date"`
	EndDate     Date   `json:"to_date"`
	VehicleType string `json:"vehicle_type,omitempty"`
	Passengers  int    `json:"passengers,omitempty"`
}

// RawCriteria is search form input before validation.
type RawCriteria struct {
	Origin      string `json:"from_location"`
	Destination string `json:"to_location"`
	StartDate   string `json:"from_date"`
	EndDate     string `json:"to_date"`
	VehicleType string `json:"vehicle_type,omitempty"`
	Passengers  *int   `json:"passengers,omitempty"`
}

type VehicleOffer struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	VehicleType        string `json:"vehicle_type"`
	VehicleTypeDisplay string `json:"vehicle_type_display,omitempty"`
	PackageType        string `json:"package_type,omitempty"`
	PackageTypeDisplay string `json:"package_type_display,omitempty"`
	PackageDetails     string `json:"package_details,omitempty"`
	Capacity           int    `json:"capacity"`
	CapacityDisplay    string `json:"capacity_display,omitempty"`
	PricePerDay        Price  `json:"price_per_day"`
	Description        string `json:"description,omitempty"`
	ImageURL           string `json:"image_url,omitempty"`
	IsAvailable        bool   `json:"is_available"`
}

// CapacityLabel renders capacity as the catalog shows it, e.g. "7p".
func (o *VehicleOffer) CapacityLabel() string {
	if o.CapacityDisplay != "" {
		return o.CapacityDisplay
	}
	return fmt.Sprintf("%dp", o.Capacity)
}

func (o *VehicleOffer) TypeLabel() string {
	if o.VehicleTypeDisplay != "" {
		return o.VehicleTypeDisplay
	}
	return o.VehicleType
}

type SearchResult struct {
	Vehicles []VehicleOffer `json:"vehicles"`
}
