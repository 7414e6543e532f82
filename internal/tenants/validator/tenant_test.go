package validator

import (
	"errors"
	"testing"

	"dormitory/pkg/logger"
	"dormitory/pkg/model"
	"dormitory/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	v := NewTenantValidator(logger.Discard())

	valid := func() *model.Tenant {
		return &model.Tenant{
			LastName:  "Santos",
			FullName:  "Maria Santos",
			Age:       21,
			ContactNo: "+639171234567",
			Address:   "Quezon City",
		}
	}

	tests := []struct {
		name      string
		mutate    func(t *model.Tenant)
		wantField string
	}{
		{"valid tenant", func(t *model.Tenant) {}, ""},
		{"optional contact and age", func(t *model.Tenant) { t.ContactNo = ""; t.Age = 0 }, ""},
		{"missing last name", func(t *model.Tenant) { t.LastName = "" }, "lastName"},
		{"missing full name", func(t *model.Tenant) { t.FullName = "" }, "fullName"},
		{"implausible age", func(t *model.Tenant) { t.Age = 200 }, "age"},
		{"national phone format", func(t *model.Tenant) { t.ContactNo = "09171234567" }, "contactNo"},
		{"unassigned number", func(t *model.Tenant) { t.ContactNo = "+10000000000" }, "contactNo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tenant := valid()
			tt.mutate(tenant)

			err := v.Validate(tenant)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var validationErrs validation.ValidationErrors
			require.True(t, errors.As(err, &validationErrs), "expected ValidationErrors, got %v", err)
			assert.Equal(t, tt.wantField, validationErrs[0].Field)
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	v := NewTenantValidator(logger.Discard())

	age := model.FlexInt(0)
	assert.Error(t, v.ValidateUpdate(&model.TenantUpdate{Age: &age}))

	phone := model.Phone("+12125551234")
	assert.NoError(t, v.ValidateUpdate(&model.TenantUpdate{ContactNo: &phone}))
}
