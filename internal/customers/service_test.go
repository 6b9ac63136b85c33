package customers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltedge/renewals-backend/pkg/db/models"
	pkgerrors "github.com/voltedge/renewals-backend/pkg/errors"
)

type stubCustomersRepo struct {
	byID    map[uuid.UUID]*models.Customer
	created []CreateCustomerDTO
	deleted []uuid.UUID
}

func newStubCustomersRepo() *stubCustomersRepo {
	return &stubCustomersRepo{byID: make(map[uuid.UUID]*models.Customer)}
}

func (s *stubCustomersRepo) Create(ctx context.Context, dto CreateCustomerDTO) (*models.Customer, error) {
	s.created = append(s.created, dto)
	customer := dto.ToModel()
	customer.ID = uuid.New()
	s.byID[customer.ID] = customer
	return customer, nil
}

func (s *stubCustomersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	if customer, ok := s.byID[id]; ok {
		return customer, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCustomersRepo) List(ctx context.Context) ([]models.Customer, error) {
	out := make([]models.Customer, 0, len(s.byID))
	for _, customer := range s.byID {
		out = append(out, *customer)
	}
	return out, nil
}

func (s *stubCustomersRepo) Update(ctx context.Context, customer *models.Customer) error {
	s.byID[customer.ID] = customer
	return nil
}

func (s *stubCustomersRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	delete(s.byID, id)
	return nil
}

type stubUserLookup struct {
	known map[uuid.UUID]bool
}

func (s *stubUserLookup) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.known[id] {
		return &models.User{ID: id}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func TestCreateCustomerRequiresCompanyName(t *testing.T) {
	svc, _ := NewService(newStubCustomersRepo(), &stubUserLookup{})
	_, err := svc.Create(context.Background(), CreateCustomerInput{CompanyName: "   "})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateCustomerUnknownSalesperson(t *testing.T) {
	svc, _ := NewService(newStubCustomersRepo(), &stubUserLookup{})
	unknown := uuid.New()
	_, err := svc.Create(context.Background(), CreateCustomerInput{
		CompanyName:           "Acme Power",
		AssignedSalespersonID: &unknown,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateCustomerTrimsCompanyName(t *testing.T) {
	repo := newStubCustomersRepo()
	salesperson := uuid.New()
	svc, _ := NewService(repo, &stubUserLookup{known: map[uuid.UUID]bool{salesperson: true}})

	dto, err := svc.Create(context.Background(), CreateCustomerInput{
		CompanyName:           "  Acme Power  ",
		AssignedSalespersonID: &salesperson,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.CompanyName != "Acme Power" {
		t.Fatalf("expected trimmed company name, got %q", dto.CompanyName)
	}
	if dto.AssignedSalespersonID == nil || *dto.AssignedSalespersonID != salesperson {
		t.Fatal("expected salesperson preserved")
	}
}

func TestUpdateCustomerClearsAssignment(t *testing.T) {
	repo := newStubCustomersRepo()
	salesperson := uuid.New()
	customer := &models.Customer{
		ID:                    uuid.New(),
		CompanyName:           "Acme Power",
		AssignedSalespersonID: &salesperson,
	}
	repo.byID[customer.ID] = customer
	svc, _ := NewService(repo, &stubUserLookup{})

	dto, err := svc.Update(context.Background(), customer.ID, UpdateCustomerInput{
		ClearAssignedSalesperson: true,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if dto.AssignedSalespersonID != nil {
		t.Fatal("expected assignment cleared")
	}
}

func TestUpdateCustomerNotFound(t *testing.T) {
	svc, _ := NewService(newStubCustomersRepo(), &stubUserLookup{})
	name := "New Co"
	_, err := svc.Update(context.Background(), uuid.New(), UpdateCustomerInput{CompanyName: &name})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteCustomer(t *testing.T) {
	repo := newStubCustomersRepo()
	customer := &models.Customer{ID: uuid.New(), CompanyName: "Acme Power"}
	repo.byID[customer.ID] = customer
	svc, _ := NewService(repo, &stubUserLookup{})

	if err := svc.Delete(context.Background(), customer.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.deleted) != 1 {
		t.Fatal("expected repo delete call")
	}

	err := svc.Delete(context.Background(), customer.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
