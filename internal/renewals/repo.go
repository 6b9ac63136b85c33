package renewals

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltedge/renewals-backend/pkg/db/models"
	"github.com/voltedge/renewals-backend/pkg/enums"
	"github.com/voltedge/renewals-backend/pkg/pagination"
)

// Repository exposes renewal persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a renewals repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListParams narrows and pages a renewal listing.
type ListParams struct {
	CustomerID    *uuid.UUID
	SalespersonID *uuid.UUID
	Status        *enums.RenewalStatus
	DueBefore     *time.Time
	DueAfter      *time.Time
	Limit         int
	Cursor        *pagination.Cursor
}

// Create inserts a new renewal row.
func (r *Repository) Create(ctx context.Context, renewal *models.Renewal) (*models.Renewal, error) {
	if err := r.db.WithContext(ctx).Create(renewal).Error; err != nil {
		return nil, err
	}
	return renewal, nil
}

// FindByID loads a renewal by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Renewal, error) {
	var renewal models.Renewal
	if err := r.db.WithContext(ctx).First(&renewal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &renewal, nil
}

// List returns renewals newest first with an optional next cursor.
func (r *Repository) List(ctx context.Context, params ListParams) ([]models.Renewal, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Renewal{})
	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}
	if params.SalespersonID != nil {
		query = query.Where("assigned_salesperson_id = ?", *params.SalespersonID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.DueBefore != nil {
		query = query.Where("next_due_date < ?", *params.DueBefore)
	}
	if params.DueAfter != nil {
		query = query.Where("next_due_date >= ?", *params.DueAfter)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var rows []models.Renewal
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

// ListByCustomer returns every renewal for one customer, soonest due first.
func (r *Repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Renewal, error) {
	var rows []models.Renewal
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("next_due_date asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkOverdue flips past-due renewals that are still awaiting action to
// overdue and returns the number changed. Completed and renewed rows are
// left alone.
func (r *Repository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Renewal{}).
		Where("next_due_date < ? AND status IN ?", asOf,
			[]enums.RenewalStatus{enums.RenewalStatusPending, enums.RenewalStatusContacted}).
		UpdateColumn("status", enums.RenewalStatusOverdue)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Update persists the full renewal model.
func (r *Repository) Update(ctx context.Context, renewal *models.Renewal) error {
	return r.db.WithContext(ctx).Save(renewal).Error
}

// Delete removes the renewal row. Attachments and notifications go with
// it through the schema's cascade rules.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Renewal{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
