package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// Processing statuses for incoming customers
const (
	ProcessingStatusPending   = "pending"
	ProcessingStatusProcessed = "processed"
	ProcessingStatusFailed    = "failed"
)

// IncomingCustomer is an unresolved record submitted for matching.
// Field order matches schema: incoming_customer_id, request_id, company_name, ...
type IncomingCustomer struct {
	IncomingCustomerID string           `json:"incoming_customer_id" db:"incoming_customer_id"`
	RequestID          *string          `json:"request_id,omitempty" db:"request_id"`
	CompanyName        string           `json:"company_name" db:"company_name"`
	ContactName        *string          `json:"contact_name,omitempty" db:"contact_name"`
	Email              *string          `json:"email,omitempty" db:"email"`
	Phone              *string          `json:"phone,omitempty" db:"phone"`
	AddressLine1       *string          `json:"address_line1,omitempty" db:"address_line1"`
	AddressLine2       *string          `json:"address_line2,omitempty" db:"address_line2"`
	City               *string          `json:"city,omitempty" db:"city"`
	StateProvince      *string          `json:"state_province,omitempty" db:"state_province"`
	PostalCode         *string          `json:"postal_code,omitempty" db:"postal_code"`
	Country            *string          `json:"country,omitempty" db:"country"`
	Industry           *string          `json:"industry,omitempty" db:"industry"`
	AnnualRevenue      *float64         `json:"annual_revenue,omitempty" db:"annual_revenue"`
	EmployeeCount      *int             `json:"employee_count,omitempty" db:"employee_count"`
	Website            *string          `json:"website,omitempty" db:"website"`
	Description        *string          `json:"description,omitempty" db:"description"`
	ProfileEmbedding   *pgvector.Vector `json:"-" db:"profile_embedding"`
	ProcessingStatus   string           `json:"processing_status" db:"processing_status"`
	RequestDate        time.Time        `json:"request_date" db:"request_date"`
	ProcessedDate      *time.Time       `json:"processed_date,omitempty" db:"processed_date"`
}

// CreateIncomingCustomerRequest is the request for submitting a record to match
type CreateIncomingCustomerRequest struct {
	RequestID     *string  `json:"request_id,omitempty"`
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

// ToRecord builds the record to persist from the request
func (req *CreateIncomingCustomerRequest) ToRecord() *IncomingCustomer {
	return &IncomingCustomer{
		RequestID:     req.RequestID,
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

// IncomingCustomerListResponse is the response for listing incoming customers
type IncomingCustomerListResponse struct {
	Items      []IncomingCustomer `json:"items"`
	TotalCount int                `json:"total_count"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
}
