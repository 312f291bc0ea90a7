package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// Customer is a resolved reference entity in the customer table.
// The matching core only ever reads these.
// Field order matches schema: customer_id, company_name, contact_name, email, phone, ...
type Customer struct {
	CustomerID           string           `json:"customer_id" db:"customer_id"`
	CompanyName          string           `json:"company_name" db:"company_name"`
	ContactName          *string          `json:"contact_name,omitempty" db:"contact_name"`
	Email                *string          `json:"email,omitempty" db:"email"`
	Phone                *string          `json:"phone,omitempty" db:"phone"`
	AddressLine1         *string          `json:"address_line1,omitempty" db:"address_line1"`
	AddressLine2         *string          `json:"address_line2,omitempty" db:"address_line2"`
	City                 *string          `json:"city,omitempty" db:"city"`
	StateProvince        *string          `json:"state_province,omitempty" db:"state_province"`
	PostalCode           *string          `json:"postal_code,omitempty" db:"postal_code"`
	Country              *string          `json:"country,omitempty" db:"country"`
	Industry             *string          `json:"industry,omitempty" db:"industry"`
	AnnualRevenue        *float64         `json:"annual_revenue,omitempty" db:"annual_revenue"`
	EmployeeCount        *int             `json:"employee_count,omitempty" db:"employee_count"`
	Website              *string          `json:"website,omitempty" db:"website"`
	Description          *string          `json:"description,omitempty" db:"description"`
	CompanyNameEmbedding *pgvector.Vector `json:"-" db:"company_name_embedding"`
	FullProfileEmbedding *pgvector.Vector `json:"-" db:"full_profile_embedding"`
	CreatedAt            time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at" db:"updated_at"`
}

// CreateCustomerRequest is the request for creating a reference customer
type CreateCustomerRequest struct {
	CompanyName   string   `json:"company_name" validate:"required"`
	ContactName   *string  `json:"contact_name,omitempty"`
	Email         *string  `json:"email,omitempty" validate:"omitempty,email"`
	Phone         *string  `json:"phone,omitempty"`
	AddressLine1  *string  `json:"address_line1,omitempty"`
	AddressLine2  *string  `json:"address_line2,omitempty"`
	City          *string  `json:"city,omitempty"`
	StateProvince *string  `json:"state_province,omitempty"`
	PostalCode    *string  `json:"postal_code,omitempty"`
	Country       *string  `json:"country,omitempty"`
	Industry      *string  `json:"industry,omitempty"`
	AnnualRevenue *float64 `json:"annual_revenue,omitempty" validate:"omitempty,gte=0"`
	EmployeeCount *int     `json:"employee_count,omitempty" validate:"omitempty,gte=0"`
	Website       *string  `json:"website,omitempty"`
	Description   *string  `json:"description,omitempty"`
}

// UpdateCustomerRequest is the request for updating a reference customer.
// Nil fields are left unchanged.
type UpdateCustomerRequest struct {
	CompanyName   *string  `json:"company_name,omitempty"`
	ContactName   *string  `json:"contact_name,omitempty"`
	Email         *string  `json:"email,omitempty" validate:"omitempty,email"`
	Phone         *string  `json:"phone,omitempty"`
	AddressLine1  *string  `json:"address_line1,omitempty"`
	AddressLine2  *string  `json:"address_line2,omitempty"`
	City          *string  `json:"city,omitempty"`
	StateProvince *string  `json:"state_province,omitempty"`
	PostalCode    *string  `json:"postal_code,omitempty"`
	Country       *string  `json:"country,omitempty"`
	Industry      *string  `json:"industry,omitempty"`
	AnnualRevenue *float64 `json:"annual_revenue,omitempty" validate:"omitempty,gte=0"`
	EmployeeCount *int     `json:"employee_count,omitempty" validate:"omitempty,gte=0"`
	Website       *string  `json:"website,omitempty"`
	Description   *string  `json:"description,omitempty"`
}

// ToCustomer builds the record to persist from the request
func (req *CreateCustomerRequest) ToCustomer() *Customer {
	return &Customer{
		CompanyName:   req.CompanyName,
		ContactName:   req.ContactName,
		Email:         req.Email,
		Phone:         req.Phone,
		AddressLine1:  req.AddressLine1,
		AddressLine2:  req.AddressLine2,
		City:          req.City,
		StateProvince: req.StateProvince,
		PostalCode:    req.PostalCode,
		Country:       req.Country,
		Industry:      req.Industry,
		AnnualRevenue: req.AnnualRevenue,
		EmployeeCount: req.EmployeeCount,
		Website:       req.Website,
		Description:   req.Description,
	}
}

// ImportCustomersRequest is the request for bulk-importing reference customers
type ImportCustomersRequest struct {
	Customers []CreateCustomerRequest `json:"customers" validate:"required,min=1,dive"`
}

// CustomerListResponse is the response for listing customers
type CustomerListResponse struct {
	Items      []Customer `json:"items"`
	TotalCount int        `json:"total_count"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
}
