package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltedge/renewals-backend/pkg/db/models"
	pkgerrors "github.com/voltedge/renewals-backend/pkg/errors"
)

type customersRepository interface {
	Create(ctx context.Context, dto CreateCustomerDTO) (*models.Customer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	List(ctx context.Context) ([]models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type usersRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service exposes customer operations.
type Service interface {
	List(ctx context.Context) ([]CustomerDTO, error)
	Create(ctx context.Context, input CreateCustomerInput) (*CustomerDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo  customersRepository
	users usersRepository
}

// NewService builds a customers service with the provided repositories.
func NewService(repo customersRepository, users usersRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo, users: users}, nil
}

// CreateCustomerInput captures creation-time customer fields.
type CreateCustomerInput struct {
	CompanyName              string
	ContactName              *string
	Email                    *string
	Phone                    *string
	AssignedSalespersonID    *uuid.UUID
	SalesforceOpportunityURL *string
}

// UpdateCustomerInput captures the allowed customer fields for mutation.
// A present pointer overwrites the column, including clearing it.
type UpdateCustomerInput struct {
	CompanyName              *string
	ContactName              *string
	Email                    *string
	Phone                    *string
	AssignedSalespersonID    *uuid.UUID
	ClearAssignedSalesperson bool
	SalesforceOpportunityURL *string
}

func (s *service) List(ctx context.Context) ([]CustomerDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}
	out := make([]CustomerDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, input CreateCustomerInput) (*CustomerDTO, error) {
	companyName := strings.TrimSpace(input.CompanyName)
	if companyName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company_name is required")
	}
	if input.AssignedSalespersonID != nil {
		if err := s.checkSalesperson(ctx, *input.AssignedSalespersonID); err != nil {
			return nil, err
		}
	}

	customer, err := s.repo.Create(ctx, CreateCustomerDTO{
		CompanyName:              companyName,
		ContactName:              input.ContactName,
		Email:                    input.Email,
		Phone:                    input.Phone,
		AssignedSalespersonID:    input.AssignedSalespersonID,
		SalesforceOpportunityURL: input.SalesforceOpportunityURL,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	return FromModel(customer), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*CustomerDTO, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}

	if input.CompanyName != nil {
		companyName := strings.TrimSpace(*input.CompanyName)
		if companyName == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "company_name cannot be empty")
		}
		customer.CompanyName = companyName
	}
	if input.ContactName != nil {
		customer.ContactName = cloneStringPtr(input.ContactName)
	}
	if input.Email != nil {
		customer.Email = cloneStringPtr(input.Email)
	}
	if input.Phone != nil {
		customer.Phone = cloneStringPtr(input.Phone)
	}
	if input.ClearAssignedSalesperson {
		customer.AssignedSalespersonID = nil
	} else if input.AssignedSalespersonID != nil {
		if err := s.checkSalesperson(ctx, *input.AssignedSalespersonID); err != nil {
			return nil, err
		}
		idCopy := *input.AssignedSalespersonID
		customer.AssignedSalespersonID = &idCopy
	}
	if input.SalesforceOpportunityURL != nil {
		customer.SalesforceOpportunityURL = cloneStringPtr(input.SalesforceOpportunityURL)
	}

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer")
	}
	return FromModel(customer), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete customer")
	}
	return nil
}

func (s *service) checkSalesperson(ctx context.Context, id uuid.UUID) error {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "assigned salesperson does not exist")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup salesperson")
	}
	return nil
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cpy := *value
	return &cpy
}
