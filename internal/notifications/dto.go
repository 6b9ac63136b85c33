package notifications

import (
	"time"

	"github.com/google/uuid"

	"github.com/voltedge/renewals-backend/pkg/db/models"
	"github.com/voltedge/renewals-backend/pkg/enums"
)

// NotificationDTO exposes a scheduled reminder in API responses.
type NotificationDTO struct {
	ID               uuid.UUID                `json:"id"`
	RenewalID        uuid.UUID                `json:"renewal_id"`
	SalespersonID    uuid.UUID                `json:"salesperson_id"`
	NotificationType enums.NotificationType   `json:"notification_type"`
	ScheduledDate    time.Time                `json:"scheduled_date"`
	SentAt           *time.Time               `json:"sent_at,omitempty"`
	Status           enums.NotificationStatus `json:"status"`
	CreatedAt        time.Time                `json:"created_at"`
}

// PreferencesDTO exposes a salesperson's reminder-window opt-ins.
type PreferencesDTO struct {
	UserID        uuid.UUID `json:"user_id"`
	Enable2Months bool      `json:"enable_2_months"`
	Enable1Month  bool      `json:"enable_1_month"`
	Enable1Week   bool      `json:"enable_1_week"`
}

// FromModel maps the persisted notification into a DTO.
func FromModel(m *models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:               m.ID,
		RenewalID:        m.RenewalID,
		SalespersonID:    m.SalespersonID,
		NotificationType: m.NotificationType,
		ScheduledDate:    m.ScheduledDate,
		SentAt:           m.SentAt,
		Status:           m.Status,
		CreatedAt:        m.CreatedAt,
	}
}

// PreferencesFromModel maps the persisted preference row into a DTO.
func PreferencesFromModel(m *models.NotificationPreference) *PreferencesDTO {
	if m == nil {
		return nil
	}
	return &PreferencesDTO{
		UserID:        m.UserID,
		Enable2Months: m.Enable2Months,
		Enable1Month:  m.Enable1Month,
		Enable1Week:   m.Enable1Week,
	}
}
