package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/voltedge/renewals-backend/pkg/db/models"
	"github.com/voltedge/renewals-backend/pkg/enums"
	"github.com/voltedge/renewals-backend/pkg/pagination"
)

// Repository exposes notification persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a notifications repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListParams narrows and pages a notification listing.
type ListParams struct {
	SalespersonID *uuid.UUID
	Status        *enums.NotificationStatus
	Limit         int
	Cursor        *pagination.Cursor
}

// Create inserts a new notification row.
func (r *Repository) Create(ctx context.Context, notification *models.Notification) (*models.Notification, error) {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return nil, err
	}
	return notification, nil
}

// List returns notifications newest first with an optional next cursor.
func (r *Repository) List(ctx context.Context, params ListParams) ([]models.Notification, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Notification{})
	if params.SalespersonID != nil {
		query = query.Where("salesperson_id = ?", *params.SalespersonID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Notification
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		rows = rows[:normalized]
		last := rows[normalized-1]
		return rows, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return rows, nil, nil
}

// ListDue returns pending notifications whose scheduled date has arrived.
func (r *Repository) ListDue(ctx context.Context, now time.Time, limit int) ([]models.Notification, error) {
	var rows []models.Notification
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_date <= ?", enums.NotificationStatusPending, now).
		Order("scheduled_date asc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkSent flips a pending notification to sent, recording the send time.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND status = ?", id, enums.NotificationStatusPending).
		UpdateColumns(map[string]any{
			"status":  enums.NotificationStatusSent,
			"sent_at": sentAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// DeleteSentBefore purges sent notifications older than the cutoff and
// returns the number removed.
func (r *Repository) DeleteSentBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("status = ? AND sent_at < ?", enums.NotificationStatusSent, cutoff).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DeleteByRenewal removes every notification attached to the renewal.
func (r *Repository) DeleteByRenewal(ctx context.Context, renewalID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.Notification{}, "renewal_id = ?", renewalID).Error
}

// PreferencesRepository exposes notification-preference persistence.
type PreferencesRepository struct {
	db *gorm.DB
}

// NewPreferencesRepository constructs a preferences repo bound to the provided GORM DB.
func NewPreferencesRepository(db *gorm.DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// GetByUser loads the preference row for a user.
func (r *PreferencesRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*models.NotificationPreference, error) {
	var pref models.NotificationPreference
	if err := r.db.WithContext(ctx).First(&pref, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &pref, nil
}

// Create inserts a preference row for a user.
func (r *PreferencesRepository) Create(ctx context.Context, pref *models.NotificationPreference) (*models.NotificationPreference, error) {
	if err := r.db.WithContext(ctx).Create(pref).Error; err != nil {
		return nil, err
	}
	return pref, nil
}

// Upsert writes the preference row, replacing the flags if one exists.
func (r *PreferencesRepository) Upsert(ctx context.Context, pref *models.NotificationPreference) (*models.NotificationPreference, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"enable_2_months", "enable_1_month", "enable_1_week"}),
		}).
		Create(pref).Error
	if err != nil {
		return nil, err
	}
	return pref, nil
}
