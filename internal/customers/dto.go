package customers

import (
	"time"

	"github.com/google/uuid"

	"github.com/voltedge/renewals-backend/pkg/db/models"
)

// CustomerDTO exposes customer data in API responses.
type CustomerDTO struct {
	ID                       uuid.UUID  `json:"id"`
	CompanyName              string     `json:"company_name"`
	ContactName              *string    `json:"contact_name,omitempty"`
	Email                    *string    `json:"email,omitempty"`
	Phone                    *string    `json:"phone,omitempty"`
	AssignedSalespersonID    *uuid.UUID `json:"assigned_salesperson_id,omitempty"`
	SalesforceOpportunityURL *string    `json:"salesforce_opportunity_url,omitempty"`
	CreatedAt                time.Time  `json:"created_at"`
}

// CreateCustomerDTO holds creation-time data for a new customer.
type CreateCustomerDTO struct {
	CompanyName              string
	ContactName              *string
	Email                    *string
	Phone                    *string
	AssignedSalespersonID    *uuid.UUID
	SalesforceOpportunityURL *string
}

// FromModel maps the persisted customer into a DTO.
func FromModel(m *models.Customer) *CustomerDTO {
	if m == nil {
		return nil
	}
	return &CustomerDTO{
		ID:                       m.ID,
		CompanyName:              m.CompanyName,
		ContactName:              m.ContactName,
		Email:                    m.Email,
		Phone:                    m.Phone,
		AssignedSalespersonID:    m.AssignedSalespersonID,
		SalesforceOpportunityURL: m.SalesforceOpportunityURL,
		CreatedAt:                m.CreatedAt,
	}
}

// ToModel prepares the GORM model from the creation DTO.
func (c CreateCustomerDTO) ToModel() *models.Customer {
	return &models.Customer{
		CompanyName:              c.CompanyName,
		ContactName:              c.ContactName,
		Email:                    c.Email,
		Phone:                    c.Phone,
		AssignedSalespersonID:    c.AssignedSalespersonID,
		SalesforceOpportunityURL: c.SalesforceOpportunityURL,
	}
}
