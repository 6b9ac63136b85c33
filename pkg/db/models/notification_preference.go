package models

import "github.com/google/uuid"

// NotificationPreference holds a salesperson's reminder-window opt-ins.
// A missing row means all windows enabled; rows are created lazily.
type NotificationPreference struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Enable2Months bool      `gorm:"column:enable_2_months;not null"`
	Enable1Month  bool      `gorm:"column:enable_1_month;not null"`
	Enable1Week   bool      `gorm:"column:enable_1_week;not null"`
}
