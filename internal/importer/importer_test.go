package importer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/voltedge/renewals-backend/internal/customers"
	"github.com/voltedge/renewals-backend/pkg/db/models"
	"github.com/voltedge/renewals-backend/pkg/enums"
)

type stubCustomersRepo struct {
	existing []models.Customer
	created  []*models.Customer
}

func (s *stubCustomersRepo) Create(ctx context.Context, dto customers.CreateCustomerDTO) (*models.Customer, error) {
	customer := &models.Customer{
		ID:          uuid.New(),
		CompanyName: dto.CompanyName,
		ContactName: dto.ContactName,
		Email:       dto.Email,
		Phone:       dto.Phone,
	}
	s.created = append(s.created, customer)
	return customer, nil
}

func (s *stubCustomersRepo) List(ctx context.Context) ([]models.Customer, error) {
	return s.existing, nil
}

type stubUsersRepo struct {
	users []models.User
}

func (s *stubUsersRepo) List(ctx context.Context) ([]models.User, error) {
	return s.users, nil
}

type stubRenewalsRepo struct {
	created []*models.Renewal
}

func (s *stubRenewalsRepo) Create(ctx context.Context, renewal *models.Renewal) (*models.Renewal, error) {
	renewal.ID = uuid.New()
	s.created = append(s.created, renewal)
	return renewal, nil
}

type stubScheduler struct {
	scheduled []uuid.UUID
}

func (s *stubScheduler) ScheduleForRenewal(ctx context.Context, renewal *models.Renewal) error {
	s.scheduled = append(s.scheduled, renewal.ID)
	return nil
}

type fixture struct {
	importer  *Importer
	customers *stubCustomersRepo
	renewals  *stubRenewalsRepo
	scheduler *stubScheduler
}

func newFixture(t *testing.T, existingCustomers []models.Customer, users []models.User) *fixture {
	t.Helper()
	customersRepo := &stubCustomersRepo{existing: existingCustomers}
	renewalsRepo := &stubRenewalsRepo{}
	sched := &stubScheduler{}
	imp, err := New(Params{
		Customers: customersRepo,
		Users:     &stubUsersRepo{users: users},
		Renewals:  renewalsRepo,
		Scheduler: sched,
		Clock:     func() time.Time { return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("new importer: %v", err)
	}
	return &fixture{importer: imp, customers: customersRepo, renewals: renewalsRepo, scheduler: sched}
}

func validRow(company string) Row {
	return Row{
		CompanyName:     company,
		ContactName:     "Jordan Smith",
		LastServiceDate: "2024-01-15",
		NextDueDate:     "2025-01-15",
		IntervalType:    "annual",
		Status:          "pending",
	}
}

func TestImportBatchReusesExistingCustomer(t *testing.T) {
	existing := models.Customer{ID: uuid.New(), CompanyName: "Acme Industrial"}
	f := newFixture(t, []models.Customer{existing}, nil)

	report, err := f.importer.ImportBatch(context.Background(), []Row{validRow("ACME industrial")})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.Success != 1 || report.Failed != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(f.customers.created) != 0 {
		t.Fatal("matching company must not create a duplicate customer")
	}
	if f.renewals.created[0].CustomerID != existing.ID {
		t.Fatal("renewal not linked to the existing customer")
	}
}

func TestImportBatchDeduplicatesNewCompanyWithinBatch(t *testing.T) {
	f := newFixture(t, nil, nil)

	report, err := f.importer.ImportBatch(context.Background(), []Row{
		validRow("Northwind Traders"),
		validRow("northwind TRADERS"),
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.Success != 2 {
		t.Fatalf("expected both rows to succeed, got %+v", report)
	}
	if len(f.customers.created) != 1 {
		t.Fatalf("expected exactly one created customer, got %d", len(f.customers.created))
	}
	if f.renewals.created[0].CustomerID != f.renewals.created[1].CustomerID {
		t.Fatal("both rows must share the created customer")
	}
}

func TestImportBatchIsolatesBadRows(t *testing.T) {
	f := newFixture(t, nil, nil)

	bad := validRow("Fabrikam")
	bad.LastServiceDate = "not-a-date"

	report, err := f.importer.ImportBatch(context.Background(), []Row{
		validRow("Contoso"),
		bad,
		validRow("Tailspin Toys"),
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.Success != 2 || report.Failed != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(report.Errors) != 1 {
		t.Fatalf("expected one error entry, got %d", len(report.Errors))
	}
	entry := report.Errors[0]
	if entry.Row != 3 {
		t.Fatalf("bad row should be reported as spreadsheet row 3, got %d", entry.Row)
	}
	if entry.Data.CompanyName != "Fabrikam" {
		t.Fatal("error entry must carry the original row data")
	}
	if len(f.renewals.created) != 2 {
		t.Fatal("good rows must be persisted despite the bad one")
	}
	if len(f.scheduler.scheduled) != 2 {
		t.Fatal("scheduler must run for each persisted renewal")
	}
}

func TestImportBatchRejectsMultiYearIntervals(t *testing.T) {
	f := newFixture(t, nil, nil)

	row := validRow("Wingtip Power")
	row.IntervalType = "5-year"

	report, err := f.importer.ImportBatch(context.Background(), []Row{row})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.Failed != 1 {
		t.Fatalf("expected rejection, got %+v", report)
	}
	message := report.Errors[0].Error
	for _, allowed := range []string{"annual", "bi-annual", "custom"} {
		if !strings.Contains(message, allowed) {
			t.Fatalf("error must name allowed value %q, got %q", allowed, message)
		}
	}
}

func TestImportBatchCustomInterval(t *testing.T) {
	f := newFixture(t, nil, nil)

	row := validRow("Proseware")
	row.IntervalType = "custom"
	row.CustomIntervalMonths = "9"
	row.NextDueDate = "2024-10-15"

	report, err := f.importer.ImportBatch(context.Background(), []Row{row})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.Success != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	created := f.renewals.created[0]
	if created.IntervalType != enums.IntervalCustom {
		t.Fatalf("unexpected interval %s", created.IntervalType)
	}
	if created.CustomIntervalMonths == nil || *created.CustomIntervalMonths != 9 {
		t.Fatal("custom months not carried through")
	}

	missing := validRow("Proseware")
	missing.IntervalType = "custom"
	report, err = f.importer.ImportBatch(context.Background(), []Row{missing})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.Failed != 1 {
		t.Fatal("custom interval without months must fail the row")
	}
}

func TestImportBatchNewCustomerRequiresContact(t *testing.T) {
	f := newFixture(t, nil, nil)

	row := validRow("Lucerne Publishing")
	row.ContactName = ""

	report, err := f.importer.ImportBatch(context.Background(), []Row{row})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.Failed != 1 {
		t.Fatalf("expected failure, got %+v", report)
	}
	if !strings.Contains(report.Errors[0].Error, "contact name") {
		t.Fatalf("error should mention the missing contact name, got %q", report.Errors[0].Error)
	}
	if len(f.customers.created) != 0 {
		t.Fatal("no customer should be created for the failed row")
	}
}

func TestImportBatchResolvesSalespersonByEmail(t *testing.T) {
	salesperson := models.User{ID: uuid.New(), Email: "dana@voltedge.io", Name: "Dana Reeves", Status: enums.UserStatusActive}
	f := newFixture(t, nil, []models.User{salesperson})

	matched := validRow("Contoso")
	matched.AssignedSalespersonEmail = "DANA@VoltEdge.io"
	unmatched := validRow("Fourth Coffee")
	unmatched.AssignedSalespersonEmail = "nobody@voltedge.io"

	report, err := f.importer.ImportBatch(context.Background(), []Row{matched, unmatched})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.Success != 2 {
		t.Fatalf("unmatched email must not fail the row, got %+v", report)
	}
	if f.renewals.created[0].AssignedSalespersonID == nil || *f.renewals.created[0].AssignedSalespersonID != salesperson.ID {
		t.Fatal("case-insensitive email match should assign the salesperson")
	}
	if f.renewals.created[1].AssignedSalespersonID != nil {
		t.Fatal("unmatched email must leave the renewal unassigned")
	}
}

func TestImportBatchSkipsDisabledSalesperson(t *testing.T) {
	disabled := models.User{ID: uuid.New(), Email: "dana@voltedge.io", Name: "Dana Reeves", Status: enums.UserStatusDisabled}
	f := newFixture(t, nil, []models.User{disabled})

	row := validRow("Contoso")
	row.AssignedSalespersonEmail = "dana@voltedge.io"

	report, err := f.importer.ImportBatch(context.Background(), []Row{row})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.Success != 1 {
		t.Fatalf("disabled owner must not fail the row, got %+v", report)
	}
	if f.renewals.created[0].AssignedSalespersonID != nil {
		t.Fatal("disabled salesperson must not be assigned")
	}
}

func TestImportBatchDateFormats(t *testing.T) {
	f := newFixture(t, nil, nil)

	row := validRow("Contoso")
	row.LastServiceDate = "01/15/2024"
	row.NextDueDate = "2025-01-15"

	report, err := f.importer.ImportBatch(context.Background(), []Row{row})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.Success != 1 {
		t.Fatalf("slash dates should parse, got %+v", report)
	}
	if !f.renewals.created[0].LastServiceDate.Equal(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected parsed date %s", f.renewals.created[0].LastServiceDate)
	}
}
