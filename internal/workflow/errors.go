package workflow

import (
	"errors"

	apperrors "msktravels/pkg/errors"
)

var (
	ErrNoSearch = errors.New("search for vehicles first")

	ErrNoOffer = errors.New("choose a vehicle first")

	ErrNothingToReview = errors.New("no vehicle selected for review")
)

func invalidState(err error) error {
	appErr := apperrors.InvalidState(err.Error())
	appErr.Err = err
	return appErr
}
