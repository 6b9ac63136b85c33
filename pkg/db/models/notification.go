package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/voltedge/renewals-backend/pkg/enums"
)

// Notification is a scheduled reminder for a renewal's salesperson.
// ScheduledDate sits a fixed offset before the renewal's due date and is
// always strictly in the future at creation time.
type Notification struct {
	ID               uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RenewalID        uuid.UUID                `gorm:"column:renewal_id;type:uuid;not null"`
	SalespersonID    uuid.UUID                `gorm:"column:salesperson_id;type:uuid;not null"`
	NotificationType enums.NotificationType   `gorm:"column:notification_type;type:text;not null"`
	ScheduledDate    time.Time                `gorm:"column:scheduled_date;not null"`
	SentAt           *time.Time               `gorm:"column:sent_at"`
	Status           enums.NotificationStatus `gorm:"type:text;not null;default:pending"`
	CreatedAt        time.Time                `gorm:"column:created_at;autoCreateTime"`
}
