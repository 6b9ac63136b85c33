package attachments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltedge/renewals-backend/pkg/db/models"
)

// Repository exposes attachment persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an attachments repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new attachment row.
func (r *Repository) Create(ctx context.Context, attachment *models.Attachment) (*models.Attachment, error) {
	if err := r.db.WithContext(ctx).Create(attachment).Error; err != nil {
		return nil, err
	}
	return attachment, nil
}

// FindByID loads an attachment by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Attachment, error) {
	var attachment models.Attachment
	if err := r.db.WithContext(ctx).First(&attachment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

// ListByRenewal returns every attachment on a renewal, newest upload first.
func (r *Repository) ListByRenewal(ctx context.Context, renewalID uuid.UUID) ([]models.Attachment, error) {
	var rows []models.Attachment
	err := r.db.WithContext(ctx).
		Where("renewal_id = ?", renewalID).
		Order("uploaded_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Delete removes the attachment row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Attachment{}, "id = ?", id).Error
}
