package renewals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltedge/renewals-backend/internal/scheduler"
	"github.com/voltedge/renewals-backend/pkg/db/models"
	"github.com/voltedge/renewals-backend/pkg/enums"
	pkgerrors "github.com/voltedge/renewals-backend/pkg/errors"
	"github.com/voltedge/renewals-backend/pkg/pagination"
)

type renewalsRepository interface {
	Create(ctx context.Context, renewal *models.Renewal) (*models.Renewal, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Renewal, error)
	List(ctx context.Context, params ListParams) ([]models.Renewal, *pagination.Cursor, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Renewal, error)
	Update(ctx context.Context, renewal *models.Renewal) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type customersRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Customer, error)
}

type usersRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
}

type renewalScheduler interface {
	ScheduleForRenewal(ctx context.Context, renewal *models.Renewal) error
	RescheduleOnUpdate(ctx context.Context, renewal *models.Renewal) error
}

// Service exposes renewal management operations.
type Service interface {
	Create(ctx context.Context, input CreateRenewalInput) (*RenewalDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*RenewalDTO, error)
	List(ctx context.Context, input ListInput) (*ListResult, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]RenewalDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateRenewalInput) (*RenewalDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo      renewalsRepository
	customers customersRepository
	users     usersRepository
	scheduler renewalScheduler
}

// NewService builds a renewals service with the provided collaborators.
func NewService(repo renewalsRepository, customers customersRepository, users usersRepository, sched renewalScheduler) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("renewals repository required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if sched == nil {
		return nil, fmt.Errorf("scheduler required")
	}
	return &service{repo: repo, customers: customers, users: users, scheduler: sched}, nil
}

// CreateRenewalInput captures the data required to record a renewal.
type CreateRenewalInput struct {
	CustomerID               uuid.UUID
	ServiceType              enums.ServiceType
	SiteCode                 *string
	ReferenceID              *int
	Address                  *string
	LastServiceDate          time.Time
	IntervalType             enums.IntervalType
	CustomIntervalMonths     *int
	Status                   enums.RenewalStatus
	Notes                    *string
	AssignedSalespersonID    *uuid.UUID
	SalesforceOpportunityURL *string
}

// UpdateRenewalInput captures the mutable renewal fields. Nil pointers
// leave the current value untouched.
type UpdateRenewalInput struct {
	ServiceType              *enums.ServiceType
	SiteCode                 *string
	ReferenceID              *int
	Address                  *string
	LastServiceDate          *time.Time
	IntervalType             *enums.IntervalType
	CustomIntervalMonths     *int
	Status                   *enums.RenewalStatus
	Notes                    *string
	AssignedSalespersonID    *uuid.UUID
	ClearAssignedSalesperson bool
	SalesforceOpportunityURL *string
}

// ListInput narrows and pages a renewal listing.
type ListInput struct {
	CustomerID    *uuid.UUID
	SalespersonID *uuid.UUID
	Status        *enums.RenewalStatus
	DueBefore     *time.Time
	DueAfter      *time.Time
	Limit         int
	Cursor        string
}

// ListResult is a page of renewals plus the cursor for the next one.
type ListResult struct {
	Renewals   []RenewalDTO `json:"renewals"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func (s *service) Create(ctx context.Context, input CreateRenewalInput) (*RenewalDTO, error) {
	if input.LastServiceDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "last service date is required")
	}

	serviceType := input.ServiceType
	if serviceType == "" {
		serviceType = enums.ServiceInfraredThermography
	}
	if !serviceType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid service type %q", serviceType))
	}

	status := input.Status
	if status == "" {
		status = enums.RenewalStatusPending
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid renewal status %q", status))
	}

	customer, err := s.customers.FindByID(ctx, input.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer does not exist")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find customer")
	}

	var salesperson *models.User
	if input.AssignedSalespersonID != nil {
		salesperson, err = s.findSalesperson(ctx, *input.AssignedSalespersonID)
		if err != nil {
			return nil, err
		}
	}

	customMonths := input.CustomIntervalMonths
	if input.IntervalType != enums.IntervalCustom {
		customMonths = nil
	}
	nextDueDate, err := scheduler.ComputeNextDueDate(input.LastServiceDate, input.IntervalType, customMonths)
	if err != nil {
		return nil, err
	}

	renewal := &models.Renewal{
		CustomerID:               customer.ID,
		ServiceType:              serviceType,
		SiteCode:                 input.SiteCode,
		ReferenceID:              input.ReferenceID,
		Address:                  input.Address,
		LastServiceDate:          input.LastServiceDate,
		NextDueDate:              nextDueDate,
		IntervalType:             input.IntervalType,
		CustomIntervalMonths:     customMonths,
		Status:                   status,
		Notes:                    input.Notes,
		AssignedSalespersonID:    input.AssignedSalespersonID,
		SalesforceOpportunityURL: input.SalesforceOpportunityURL,
	}
	created, err := s.repo.Create(ctx, renewal)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create renewal")
	}

	if err := s.scheduler.ScheduleForRenewal(ctx, created); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "schedule notifications")
	}

	dto := FromModel(created)
	dto.Customer = customerSummary(customer)
	dto.AssignedSalesperson = salespersonSummary(salesperson)
	return dto, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*RenewalDTO, error) {
	renewal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "renewal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find renewal")
	}
	dtos, err := s.decorate(ctx, []models.Renewal{*renewal})
	if err != nil {
		return nil, err
	}
	return &dtos[0], nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid renewal status %q", *input.Status))
	}
	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.List(ctx, ListParams{
		CustomerID:    input.CustomerID,
		SalespersonID: input.SalespersonID,
		Status:        input.Status,
		DueBefore:     input.DueBefore,
		DueAfter:      input.DueAfter,
		Limit:         input.Limit,
		Cursor:        cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list renewals")
	}

	dtos, err := s.decorate(ctx, rows)
	if err != nil {
		return nil, err
	}
	result := &ListResult{Renewals: dtos}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]RenewalDTO, error) {
	rows, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer renewals")
	}
	return s.decorate(ctx, rows)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateRenewalInput) (*RenewalDTO, error) {
	renewal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "renewal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find renewal")
	}

	if input.ServiceType != nil {
		if !input.ServiceType.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid service type %q", *input.ServiceType))
		}
		renewal.ServiceType = *input.ServiceType
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid renewal status %q", *input.Status))
		}
		renewal.Status = *input.Status
	}
	if input.SiteCode != nil {
		renewal.SiteCode = input.SiteCode
	}
	if input.ReferenceID != nil {
		renewal.ReferenceID = input.ReferenceID
	}
	if input.Address != nil {
		renewal.Address = input.Address
	}
	if input.Notes != nil {
		renewal.Notes = input.Notes
	}
	if input.SalesforceOpportunityURL != nil {
		renewal.SalesforceOpportunityURL = input.SalesforceOpportunityURL
	}
	if input.LastServiceDate != nil {
		renewal.LastServiceDate = *input.LastServiceDate
	}
	if input.IntervalType != nil {
		renewal.IntervalType = *input.IntervalType
	}
	if input.CustomIntervalMonths != nil {
		renewal.CustomIntervalMonths = input.CustomIntervalMonths
	}

	switch {
	case input.ClearAssignedSalesperson:
		renewal.AssignedSalespersonID = nil
	case input.AssignedSalespersonID != nil:
		if _, err := s.findSalesperson(ctx, *input.AssignedSalespersonID); err != nil {
			return nil, err
		}
		renewal.AssignedSalespersonID = input.AssignedSalespersonID
	}

	if renewal.IntervalType != enums.IntervalCustom {
		renewal.CustomIntervalMonths = nil
	}
	nextDueDate, err := scheduler.ComputeNextDueDate(renewal.LastServiceDate, renewal.IntervalType, renewal.CustomIntervalMonths)
	if err != nil {
		return nil, err
	}
	renewal.NextDueDate = nextDueDate

	if err := s.repo.Update(ctx, renewal); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update renewal")
	}

	// Full replace keeps notifications aligned with the current due date
	// and owner, whatever subset of fields changed.
	if err := s.scheduler.RescheduleOnUpdate(ctx, renewal); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reschedule notifications")
	}

	dtos, err := s.decorate(ctx, []models.Renewal{*renewal})
	if err != nil {
		return nil, err
	}
	return &dtos[0], nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "renewal not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete renewal")
	}
	return nil
}

func (s *service) findSalesperson(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "assigned salesperson does not exist")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find salesperson")
	}
	return user, nil
}

// decorate batch-loads the related customers and salespeople so listing
// N renewals costs two extra queries, not 2N.
func (s *service) decorate(ctx context.Context, rows []models.Renewal) ([]RenewalDTO, error) {
	customerIDs := make([]uuid.UUID, 0, len(rows))
	userIDs := make([]uuid.UUID, 0, len(rows))
	seenCustomers := make(map[uuid.UUID]bool, len(rows))
	seenUsers := make(map[uuid.UUID]bool, len(rows))
	for i := range rows {
		if !seenCustomers[rows[i].CustomerID] {
			seenCustomers[rows[i].CustomerID] = true
			customerIDs = append(customerIDs, rows[i].CustomerID)
		}
		if rows[i].AssignedSalespersonID != nil && !seenUsers[*rows[i].AssignedSalespersonID] {
			seenUsers[*rows[i].AssignedSalespersonID] = true
			userIDs = append(userIDs, *rows[i].AssignedSalespersonID)
		}
	}

	customers, err := s.customers.FindByIDs(ctx, customerIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customers")
	}
	users, err := s.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load salespeople")
	}

	customersByID := make(map[uuid.UUID]*models.Customer, len(customers))
	for i := range customers {
		customersByID[customers[i].ID] = &customers[i]
	}
	usersByID := make(map[uuid.UUID]*models.User, len(users))
	for i := range users {
		usersByID[users[i].ID] = &users[i]
	}

	dtos := make([]RenewalDTO, 0, len(rows))
	for i := range rows {
		dto := FromModel(&rows[i])
		dto.Customer = customerSummary(customersByID[rows[i].CustomerID])
		if rows[i].AssignedSalespersonID != nil {
			dto.AssignedSalesperson = salespersonSummary(usersByID[*rows[i].AssignedSalespersonID])
		}
		dtos = append(dtos, *dto)
	}
	return dtos, nil
}
