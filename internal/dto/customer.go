package dto

import (
	"time"

	"crm/internal/domain"
)

type CreateCustomerRequest struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone"`
}

type BulkCreateCustomersRequest struct {
	Customers []CreateCustomerRequest `json:"customers"`
}

// UpdateCustomerRequest carries a partial update; nil fields are left unchanged
// and an empty phone clears it.
type UpdateCustomerRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

type CustomerResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CustomerEnvelope struct {
	Customer CustomerResponse `json:"customer"`
	Message  string           `json:"message"`
}

type BulkCreateCustomersResponse struct {
	Customers []CustomerResponse `json:"customers"`
	Errors    []BulkItemError    `json:"errors"`
	Message   string             `json:"message"`
}

type CustomerListResponse struct {
	Customers []CustomerResponse `json:"customers"`
	Count     int                `json:"count"`
}

func NewCustomerResponse(c domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func NewCustomerResponses(customers []domain.Customer) []CustomerResponse {
	out := make([]CustomerResponse, len(customers))
	for i, c := range customers {
		out[i] = NewCustomerResponse(c)
	}
	return out
}
