package search

import (
	"errors"
	"strings"

	apperrors "msktravels/pkg/errors"
	"msktravels/pkg/logger"
	"msktravels/pkg/model"
	"msktravels/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

const (
	ReasonMissingFields = "missing required fields"
	ReasonInvalidDate   = "invalid date format"
	ReasonDateOrder     = "end date must be after start date"
	ReasonPassengers    = "passenger count out of range"
	ReasonVehicleType   = "unsupported vehicle type"
)

// criteriaForm carries the struct-tag rules. Dates stay strings here so
// presence and format are reported separately.
type criteriaForm struct {
	Origin      string `validate:"required"`
	Destination string `validate:"required"`
	StartDate   string `validate:"required"`
	EndDate     string `validate:"required"`
	VehicleType string `validate:"omitempty,vehicle_type"`
	Passengers  *int   `validate:"omitempty,min=1,max=20"`
}

type CriteriaValidator struct {
	validate *validator.Validate
	log      *logger.Logger
}

func NewCriteriaValidator(log *logger.Logger) *CriteriaValidator {
	v := validator.New()

	if err := v.RegisterValidation("vehicle_type", validateVehicleType); err != nil {
		log.Fatal("Failed to register 'vehicle_type' validator",
			"error", err,
		)
	}

	return &CriteriaValidator{
		validate: v,
		log:      log,
	}
}

func validateVehicleType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, t := range model.VehicleTypes {
		if value == t {
			return true
		}
	}
	return false
}

// Validate turns raw form input into search criteria. Checks run in a fixed
// order and the first failure is the one reported.
func (v *CriteriaValidator) Validate(raw model.RawCriteria) (*model.SearchCriteria, error) {
	form := criteriaForm{
		Origin:      sanitizer.NormalizeLocation(raw.Origin),
		Destination: sanitizer.NormalizeLocation(raw.Destination),
		StartDate:   strings.TrimSpace(raw.StartDate),
		EndDate:     strings.TrimSpace(raw.EndDate),
		VehicleType: strings.ToLower(strings.TrimSpace(raw.VehicleType)),
		Passengers:  raw.Passengers,
	}

	failed := map[string]string{}
	if err := v.validate.Struct(form); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return nil, apperrors.Internal("Search criteria could not be validated", err)
		}
		for _, fe := range validationErrs {
			failed[fe.Field()] = fe.Tag()
		}
	}

	for _, field := range []string{"Origin", "Destination", "StartDate", "EndDate"} {
		if failed[field] == "required" {
			return nil, v.reject(ReasonMissingFields, raw)
		}
	}

	start, startErr := model.ParseDate(form.StartDate)
	end, endErr := model.ParseDate(form.EndDate)
	if startErr != nil || endErr != nil {
		return nil, v.reject(ReasonInvalidDate, raw)
	}

	if !start.Before(end) {
		return nil, v.reject(ReasonDateOrder, raw)
	}

	if _, ok := failed["Passengers"]; ok {
		return nil, v.reject(ReasonPassengers, raw)
	}

	if _, ok := failed["VehicleType"]; ok {
		return nil, v.reject(ReasonVehicleType, raw)
	}

	criteria := &model.SearchCriteria{
		Origin:      form.Origin,
		Destination: form.Destination,
		StartDate:   start,
		EndDate:     end,
		VehicleType: form.VehicleType,
	}
	if form.Passengers != nil {
		criteria.Passengers = *form.Passengers
	}
	return criteria, nil
}

func (v *CriteriaValidator) reject(reason string, raw model.RawCriteria) error {
	v.log.Debug("Search criteria rejected",
		"reason", reason,
		"from_location", raw.Origin,
		"to_location", raw.Destination,
	)
	return apperrors.ReasonValidation(reason)
}
