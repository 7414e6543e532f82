package validator

import (
	"dormitory/pkg/logger"
	"dormitory/pkg/model"
	"dormitory/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
)

type TenantValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewTenantValidator(log *logger.Logger) *TenantValidator {
	v := validation.New()

	if err := v.RegisterValidation("e164", validatePhone); err != nil {
		log.Fatal("Failed to register 'e164' validator",
			"error", err,
		)
	}

	log.Info("Tenant validator initialized successfully")

	return &TenantValidator{
		validate: v,
		logger:   log,
	}
}

// validatePhone replaces the built-in e164 pattern check with a full
// number plan check.
func validatePhone(fl validator.FieldLevel) bool {
	phone := fl.Field().String()
	if phone == "" {
		return true
	}
	if phone[0] != '+' {
		return false
	}
	parsed, err := phonenumbers.Parse(phone, "")
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(parsed) && phonenumbers.Format(parsed, phonenumbers.E164) == phone
}

func (v *TenantValidator) Validate(tenant *model.Tenant) error {
	return validation.Struct(v.validate, tenant)
}

func (v *TenantValidator) ValidateUpdate(update *model.TenantUpdate) error {
	return validation.Struct(v.validate, update)
}
