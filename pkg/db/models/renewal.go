package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/voltedge/renewals-backend/pkg/enums"
)

// Renewal is a recurring service obligation tied to one customer.
// NextDueDate is always LastServiceDate plus the interval's month count.
type Renewal struct {
	ID                       uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID               uuid.UUID           `gorm:"column:customer_id;type:uuid;not null"`
	ServiceType              enums.ServiceType   `gorm:"column:service_type;type:text;not null;default:Infrared Thermography Analysis"`
	SiteCode                 *string             `gorm:"column:site_code;type:text"`
	ReferenceID              *int                `gorm:"column:reference_id"`
	Address                  *string             `gorm:"type:text"`
	LastServiceDate          time.Time           `gorm:"column:last_service_date;not null"`
	NextDueDate              time.Time           `gorm:"column:next_due_date;not null"`
	IntervalType             enums.IntervalType  `gorm:"column:interval_type;type:text;not null;default:annual"`
	CustomIntervalMonths     *int                `gorm:"column:custom_interval_months"`
	Status                   enums.RenewalStatus `gorm:"type:text;not null;default:pending"`
	Notes                    *string             `gorm:"type:text"`
	AssignedSalespersonID    *uuid.UUID          `gorm:"column:assigned_salesperson_id;type:uuid"`
	SalesforceOpportunityURL *string             `gorm:"column:salesforce_opportunity_url;type:text"`
	CreatedAt                time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
