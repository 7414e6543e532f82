package model

import "time"

type Tenant struct {
	ID        string     `json:"_id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	LastName  string     `json:"lastName" bson:"last_name" validate:"required,min=1,max=100"`
	FullName  string     `json:"fullName" bson:"full_name" validate:"required,min=1,max=200"`
	Age       FlexInt    `json:"age" bson:"age" validate:"omitempty,min=1,max=150"`
	ContactNo Phone      `json:"contactNo" bson:"contact_no" validate:"omitempty,e164"`
	Address   string     `json:"address" bson:"address" validate:"max=300"`
	CreatedAt time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty" bson:"updated_at,omitempty"`
}

type TenantUpdate struct {
	LastName  *string  `json:"lastName,omitempty" validate:"omitempty,min=1,max=100"`
	FullName  *string  `json:"fullName,omitempty" validate:"omitempty,min=1,max=200"`
	Age       *FlexInt `json:"age,omitempty" validate:"omitempty,min=1,max=150"`
	ContactNo *Phone   `json:"contactNo,omitempty" validate:"omitempty,e164"`
	Address   *string  `json:"address,omitempty" validate:"omitempty,max=300"`
}

func (u *TenantUpdate) IsEmpty() bool {
	return u.LastName == nil && u.FullName == nil && u.Age == nil && u.ContactNo == nil && u.Address == nil
}

func (u *TenantUpdate) Apply(tenant Tenant) Tenant {
	if u.LastName != nil {
		tenant.LastName = *u.LastName
	}
	if u.FullName != nil {
		tenant.FullName = *u.FullName
	}
	if u.Age != nil {
		tenant.Age = *u.Age
	}
	if u.ContactNo != nil {
		tenant.ContactNo = *u.ContactNo
	}
	if u.Address != nil {
		tenant.Address = *u.Address
	}
	return tenant
}
