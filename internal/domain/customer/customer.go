package customer

import (
	"strings"
	"time"
)

type Customer struct {
	ID               int64
	FullName         string
	MobileNumber     string
	Address          string
	IDProofReference string
	Notes            string
	DateAdded        time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func NewCustomer(fullName, mobileNumber, address, idProofReference, notes string) *Customer {
	now := time.Now().UTC()
	return &Customer{
		FullName:         strings.TrimSpace(fullName),
		MobileNumber:     strings.TrimSpace(mobileNumber),
		Address:          strings.TrimSpace(address),
		IDProofReference: strings.TrimSpace(idProofReference),
		Notes:            strings.TrimSpace(notes),
		DateAdded:        now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// UpdateFields holds a partial update. Empty values keep the current field.
type UpdateFields struct {
	FullName         string
	MobileNumber     string
	Address          string
	IDProofReference string
	Notes            string
}

// Apply merges the non-empty fields into c and reports whether anything changed.
func (c *Customer) Apply(u UpdateFields) bool {
	changed := false
	set := func(dst *string, v string) {
		v = strings.TrimSpace(v)
		if v != "" && v != *dst {
			*dst = v
			changed = true
		}
	}
	set(&c.FullName, u.FullName)
	set(&c.MobileNumber, u.MobileNumber)
	set(&c.Address, u.Address)
	set(&c.IDProofReference, u.IDProofReference)
	set(&c.Notes, u.Notes)
	if changed {
		c.UpdatedAt = time.Now().UTC()
	}
	return changed
}
