package workflow

import "msktravels/pkg/model"

// AssembleIntent builds the booking request. With a package the total is
// the package price; without one it is the vehicle's price per day. There
// is no per-day multiplication.
func AssembleIntent(session *model.Session, offer model.VehicleOffer, criteria model.SearchCriteria, pkg *model.Package) *model.BookingIntent {
	intent := &model.BookingIntent{
		FromLocation: criteria.Origin,
		ToLocation:   criteria.Destination,
		StartDate:    criteria.StartDate,
		EndDate:      criteria.EndDate,
		Passengers:   criteria.Passengers,
		VehicleID:    offer.ID,
		VehicleName:  offer.Name,
		VehicleType:  offer.TypeLabel(),
		Capacity:     offer.CapacityLabel(),
		PricePerDay:  offer.PricePerDay,
		PackageName:  model.CustomTripName,
		TotalCost:    offer.PricePerDay,
	}

	if session != nil {
		intent.CustomerName = session.DisplayName()
		intent.CustomerEmail = session.Email
		intent.CustomerPhone = session.Phone
	}

	if pkg != nil {
		intent.PackageName = pkg.Name
		intent.PackagePrice = pkg.Price
		intent.TotalCost = pkg.Price
	}

	return intent
}
