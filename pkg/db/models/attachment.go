package models

import (
	"time"

	"github.com/google/uuid"
)

// Attachment stores metadata for a file uploaded against a renewal.
// FilePath is the object-storage key, not a local path.
type Attachment struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RenewalID  uuid.UUID `gorm:"column:renewal_id;type:uuid;not null"`
	FileName   string    `gorm:"column:file_name;type:text;not null"`
	FilePath   string    `gorm:"column:file_path;type:text;not null"`
	FileSize   int64     `gorm:"column:file_size;not null"`
	UploadedBy uuid.UUID `gorm:"column:uploaded_by;type:uuid;not null"`
	UploadedAt time.Time `gorm:"column:uploaded_at;autoCreateTime"`
}
