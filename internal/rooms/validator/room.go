package validator

import (
	"dormitory/pkg/logger"
	"dormitory/pkg/model"
	"dormitory/pkg/validation"

	"github.com/go-playground/validator/v10"
)

const maxRateDecimals = 2

type RoomValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewRoomValidator(log *logger.Logger) *RoomValidator {
	log.Info("Room validator initialized successfully")

	return &RoomValidator{
		validate: validation.New(),
		logger:   log,
	}
}

func (v *RoomValidator) Validate(room *model.Room) error {
	if err := validation.Struct(v.validate, room); err != nil {
		return err
	}
	return validateRate(room.RatePerMonth)
}

func (v *RoomValidator) ValidateUpdate(update *model.RoomUpdate) error {
	if err := validation.Struct(v.validate, update); err != nil {
		return err
	}
	if update.RatePerMonth != nil {
		return validateRate(*update.RatePerMonth)
	}
	return nil
}

func validateRate(rate model.Money) error {
	if rate.Exponent() < -maxRateDecimals {
		return validation.Field("ratePerMonth", "ratePerMonth must have at most 2 decimal places")
	}
	return nil
}
