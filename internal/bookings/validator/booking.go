package validator

import (
	"dormitory/pkg/logger"
	"dormitory/pkg/model"
	"dormitory/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: validation.New(),
		logger:   log,
	}
}

// Validate checks a booking request. Both references must be set and the stay
// must end after it starts.
func (v *BookingValidator) Validate(booking *model.Booking) error {
	return validation.Struct(v.validate, booking)
}

// ValidateUpdate checks the dates of a partial edit when both ends are given.
// Ranges that combine a new end with a stored start are checked after merging.
func (v *BookingValidator) ValidateUpdate(update *model.BookingUpdate) error {
	if update.StartDate != nil && update.EndDate != nil && !update.StartDate.Before(update.EndDate.Time) {
		return validation.Field("endDate", "endDate must be after startDate")
	}
	if update.TotalAmount != nil && update.TotalAmount.IsNegative() {
		return validation.Field("totalAmount", "totalAmount cannot be negative")
	}
	return nil
}
