package renewals

import (
	"time"

	"github.com/google/uuid"

	"github.com/voltedge/renewals-backend/pkg/db/models"
	"github.com/voltedge/renewals-backend/pkg/enums"
)

// CustomerSummary is the slim customer view embedded in renewal responses.
type CustomerSummary struct {
	ID          uuid.UUID `json:"id"`
	CompanyName string    `json:"company_name"`
	ContactName *string   `json:"contact_name,omitempty"`
	Email       *string   `json:"email,omitempty"`
}

// SalespersonSummary is the slim user view embedded in renewal responses.
type SalespersonSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// RenewalDTO exposes a renewal with its related customer and owner.
type RenewalDTO struct {
	ID                       uuid.UUID           `json:"id"`
	CustomerID               uuid.UUID           `json:"customer_id"`
	Customer                 *CustomerSummary    `json:"customer,omitempty"`
	ServiceType              enums.ServiceType   `json:"service_type"`
	SiteCode                 *string             `json:"site_code,omitempty"`
	ReferenceID              *int                `json:"reference_id,omitempty"`
	Address                  *string             `json:"address,omitempty"`
	LastServiceDate          time.Time           `json:"last_service_date"`
	NextDueDate              time.Time           `json:"next_due_date"`
	IntervalType             enums.IntervalType  `json:"interval_type"`
	CustomIntervalMonths     *int                `json:"custom_interval_months,omitempty"`
	Status                   enums.RenewalStatus `json:"status"`
	Notes                    *string             `json:"notes,omitempty"`
	AssignedSalespersonID    *uuid.UUID          `json:"assigned_salesperson_id,omitempty"`
	AssignedSalesperson      *SalespersonSummary `json:"assigned_salesperson,omitempty"`
	SalesforceOpportunityURL *string             `json:"salesforce_opportunity_url,omitempty"`
	CreatedAt                time.Time           `json:"created_at"`
	UpdatedAt                time.Time           `json:"updated_at"`
}

// FromModel maps the persisted renewal into a DTO without relations.
func FromModel(m *models.Renewal) *RenewalDTO {
	if m == nil {
		return nil
	}
	return &RenewalDTO{
		ID:                       m.ID,
		CustomerID:               m.CustomerID,
		ServiceType:              m.ServiceType,
		SiteCode:                 m.SiteCode,
		ReferenceID:              m.ReferenceID,
		Address:                  m.Address,
		LastServiceDate:          m.LastServiceDate,
		NextDueDate:              m.NextDueDate,
		IntervalType:             m.IntervalType,
		CustomIntervalMonths:     m.CustomIntervalMonths,
		Status:                   m.Status,
		Notes:                    m.Notes,
		AssignedSalespersonID:    m.AssignedSalespersonID,
		SalesforceOpportunityURL: m.SalesforceOpportunityURL,
		CreatedAt:                m.CreatedAt,
		UpdatedAt:                m.UpdatedAt,
	}
}

func customerSummary(m *models.Customer) *CustomerSummary {
	if m == nil {
		return nil
	}
	return &CustomerSummary{
		ID:          m.ID,
		CompanyName: m.CompanyName,
		ContactName: m.ContactName,
		Email:       m.Email,
	}
}

func salespersonSummary(m *models.User) *SalespersonSummary {
	if m == nil {
		return nil
	}
	return &SalespersonSummary{
		ID:    m.ID,
		Name:  m.Name,
		Email: m.Email,
	}
}
