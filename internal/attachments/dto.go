package attachments

import (
	"time"

	"github.com/google/uuid"

	"github.com/voltedge/renewals-backend/pkg/db/models"
)

// AttachmentDTO exposes attachment metadata in API responses.
type AttachmentDTO struct {
	ID         uuid.UUID `json:"id"`
	RenewalID  uuid.UUID `json:"renewal_id"`
	FileName   string    `json:"file_name"`
	FileSize   int64     `json:"file_size"`
	UploadedBy uuid.UUID `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// FromModel maps the persisted attachment into a DTO. The object key is
// deliberately not exposed; callers fetch content through signed URLs.
func FromModel(m *models.Attachment) AttachmentDTO {
	return AttachmentDTO{
		ID:         m.ID,
		RenewalID:  m.RenewalID,
		FileName:   m.FileName,
		FileSize:   m.FileSize,
		UploadedBy: m.UploadedBy,
		UploadedAt: m.UploadedAt,
	}
}
