package dto

import (
	"time"

	"loan-admin/internal/domain/customer"
)

type CreateCustomerRequest struct {
	FullName         string `json:"fullName" validate:"required"`
	MobileNumber     string `json:"mobileNumber" validate:"required,max=20"`
	Address          string `json:"address" validate:"required"`
	IDProofReference string `json:"idProofReference,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

func (r CreateCustomerRequest) Params() customer.CreateParams {
	return customer.CreateParams{
		FullName:         r.FullName,
		MobileNumber:     r.MobileNumber,
		Address:          r.Address,
		IDProofReference: r.IDProofReference,
		Notes:            r.Notes,
	}
}

// UpdateCustomerRequest is a partial update; omitted fields keep their value.
type UpdateCustomerRequest struct {
	FullName         string `json:"fullName,omitempty"`
	MobileNumber     string `json:"mobileNumber,omitempty" validate:"max=20"`
	Address          string `json:"address,omitempty"`
	IDProofReference string `json:"idProofReference,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

func (r UpdateCustomerRequest) Fields() customer.UpdateFields {
	return customer.UpdateFields{
		FullName:         r.FullName,
		MobileNumber:     r.MobileNumber,
		Address:          r.Address,
		IDProofReference: r.IDProofReference,
		Notes:            r.Notes,
	}
}

type CustomerResponse struct {
	ID               string    `json:"id"`
	FullName         string    `json:"fullName"`
	MobileNumber     string    `json:"mobileNumber"`
	Address          string    `json:"address"`
	IDProofReference string    `json:"idProofReference,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	DateAdded        time.Time `json:"dateAdded"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func NewCustomerResponse(c *customer.Customer) CustomerResponse {
	return CustomerResponse{
		ID:               formatID(c.ID),
		FullName:         c.FullName,
		MobileNumber:     c.MobileNumber,
		Address:          c.Address,
		IDProofReference: c.IDProofReference,
		Notes:            c.Notes,
		DateAdded:        c.DateAdded,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func NewCustomerListResponse(customers []*customer.Customer) []CustomerResponse {
	resp := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		resp = append(resp, NewCustomerResponse(c))
	}
	return resp
}
