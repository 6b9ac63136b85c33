package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a company whose recurring services are tracked.
type Customer struct {
	ID                       uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyName              string     `gorm:"column:company_name;type:text;not null"`
	ContactName              *string    `gorm:"column:contact_name;type:text"`
	Email                    *string    `gorm:"type:text"`
	Phone                    *string    `gorm:"type:text"`
	AssignedSalespersonID    *uuid.UUID `gorm:"column:assigned_salesperson_id;type:uuid"`
	SalesforceOpportunityURL *string    `gorm:"column:salesforce_opportunity_url;type:text"`
	CreatedAt                time.Time  `gorm:"column:created_at;autoCreateTime"`
}
