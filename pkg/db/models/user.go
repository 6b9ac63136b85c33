package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/voltedge/renewals-backend/pkg/enums"
)

// User represents an operator of the tracker: an admin or a salesperson.
type User struct {
	ID           uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string           `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string           `gorm:"column:password_hash;not null"`
	Name         string           `gorm:"type:text;not null"`
	Role         enums.UserRole   `gorm:"type:text;not null;default:salesperson"`
	Status       enums.UserStatus `gorm:"type:text;not null;default:active"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
}
