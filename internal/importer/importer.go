package importer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/voltedge/renewals-backend/internal/customers"
	"github.com/voltedge/renewals-backend/pkg/db/models"
	"github.com/voltedge/renewals-backend/pkg/enums"
	pkgerrors "github.com/voltedge/renewals-backend/pkg/errors"
	"github.com/voltedge/renewals-backend/pkg/metrics"
)

// metricsSource labels every import metric emitted by this package.
const metricsSource = "bulk_upload"

// Dates in upload cells arrive in whatever format the spreadsheet tool
// produced. ISO first, then the formats Excel exports commonly use.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
	"Jan 2, 2006",
}

// The import path accepts a narrower interval set than the interactive
// form; multi-year cadences must be entered through the UI.
var importIntervals = []enums.IntervalType{
	enums.IntervalAnnual,
	enums.IntervalBiAnnual,
	enums.IntervalCustom,
}

type customersRepository interface {
	Create(ctx context.Context, dto customers.CreateCustomerDTO) (*models.Customer, error)
	List(ctx context.Context) ([]models.Customer, error)
}

type usersRepository interface {
	List(ctx context.Context) ([]models.User, error)
}

type renewalsRepository interface {
	Create(ctx context.Context, renewal *models.Renewal) (*models.Renewal, error)
}

type renewalScheduler interface {
	ScheduleForRenewal(ctx context.Context, renewal *models.Renewal) error
}

// Row is one spreadsheet line mapped to its expected columns, untouched.
type Row struct {
	CompanyName              string `json:"company_name"`
	ContactName              string `json:"contact_name"`
	Email                    string `json:"email"`
	Phone                    string `json:"phone"`
	ServiceType              string `json:"service_type"`
	LastServiceDate          string `json:"last_service_date"`
	NextDueDate              string `json:"next_due_date"`
	IntervalType             string `json:"interval_type"`
	CustomIntervalMonths     string `json:"custom_interval_months"`
	Status                   string `json:"status"`
	Notes                    string `json:"notes"`
	AssignedSalespersonEmail string `json:"assigned_salesperson_email"`
}

// RowError records one failed row with its original data.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
	Data  Row    `json:"data"`
}

// Report summarizes one import batch.
type Report struct {
	Success int        `json:"success"`
	Failed  int        `json:"failed"`
	Errors  []RowError `json:"errors"`
}

// Importer turns spreadsheet rows into customers, renewals, and their
// scheduled notifications, isolating each row's failure from the rest.
type Importer struct {
	customers customersRepository
	users     usersRepository
	renewals  renewalsRepository
	scheduler renewalScheduler
	metrics   *metrics.ImportBatchMetrics
	now       func() time.Time
}

// Params bundles the dependencies required to build an importer.
type Params struct {
	Customers customersRepository
	Users     usersRepository
	Renewals  renewalsRepository
	Scheduler renewalScheduler
	Metrics   *metrics.ImportBatchMetrics
	Clock     func() time.Time
}

// New constructs an importer with the provided collaborators.
func New(params Params) (*Importer, error) {
	if params.Customers == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.Renewals == nil {
		return nil, fmt.Errorf("renewals repository required")
	}
	if params.Scheduler == nil {
		return nil, fmt.Errorf("scheduler required")
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Importer{
		customers: params.Customers,
		users:     params.Users,
		renewals:  params.Renewals,
		scheduler: params.Scheduler,
		metrics:   params.Metrics,
		now:       clock,
	}, nil
}

// ImportBatch processes rows sequentially. Each row either produces a
// durable renewal or an error-report entry; a bad row never aborts the
// batch. Rows are reported 1-indexed with the header as row 1, so the
// first data row is row 2.
func (imp *Importer) ImportBatch(ctx context.Context, rows []Row) (*Report, error) {
	started := imp.now()

	customerSnapshot, err := imp.loadCustomerSnapshot(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer snapshot")
	}
	userSnapshot, err := imp.loadUserSnapshot(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user snapshot")
	}

	report := &Report{}
	for i, row := range rows {
		rowNumber := i + 2
		if err := imp.importRow(ctx, row, customerSnapshot, userSnapshot); err != nil {
			report.Failed++
			report.Errors = append(report.Errors, RowError{
				Row:   rowNumber,
				Error: errorMessage(err),
				Data:  row,
			})
			continue
		}
		report.Success++
	}

	imp.metrics.ObserveDuration(metricsSource, imp.now().Sub(started))
	imp.metrics.AddImported(metricsSource, report.Success)
	imp.metrics.AddFailed(metricsSource, report.Failed)
	return report, nil
}

// importRow runs the per-row pipeline. Any returned error is captured
// by the caller as a report entry for this row only.
func (imp *Importer) importRow(ctx context.Context, row Row, customerSnapshot map[string]*models.Customer, userSnapshot map[string]*models.User) error {
	customer, err := imp.resolveCustomer(ctx, row, customerSnapshot)
	if err != nil {
		return err
	}

	var salespersonID *uuid.UUID
	if email := strings.ToLower(strings.TrimSpace(row.AssignedSalespersonEmail)); email != "" {
		// an unmatched email leaves the renewal unassigned, not failed
		if user, ok := userSnapshot[email]; ok {
			id := user.ID
			salespersonID = &id
		}
	}

	lastServiceDate, err := parseDate(row.LastServiceDate)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid last service date %q", row.LastServiceDate))
	}
	nextDueDate, err := parseDate(row.NextDueDate)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid next due date %q", row.NextDueDate))
	}

	intervalType, err := parseImportInterval(row.IntervalType)
	if err != nil {
		return err
	}
	status, err := parseImportStatus(row.Status)
	if err != nil {
		return err
	}

	var customMonths *int
	if intervalType == enums.IntervalCustom {
		months, err := strconv.Atoi(strings.TrimSpace(row.CustomIntervalMonths))
		if err != nil || months <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "custom interval requires a positive custom interval months value")
		}
		customMonths = &months
	}

	serviceType := enums.ServiceInfraredThermography
	if trimmed := strings.TrimSpace(row.ServiceType); trimmed != "" {
		parsed, err := enums.ParseServiceType(trimmed)
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		serviceType = parsed
	}

	var notes *string
	if trimmed := strings.TrimSpace(row.Notes); trimmed != "" {
		notes = &trimmed
	}

	renewal := &models.Renewal{
		CustomerID:            customer.ID,
		ServiceType:           serviceType,
		LastServiceDate:       lastServiceDate,
		NextDueDate:           nextDueDate,
		IntervalType:          intervalType,
		CustomIntervalMonths:  customMonths,
		Status:                status,
		Notes:                 notes,
		AssignedSalespersonID: salespersonID,
	}
	created, err := imp.renewals.Create(ctx, renewal)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create renewal")
	}

	if err := imp.scheduler.ScheduleForRenewal(ctx, created); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "schedule notifications")
	}
	return nil
}

// resolveCustomer matches the row's company against the batch snapshot,
// creating the customer when absent. New customers enter the snapshot
// immediately so later rows in the same batch reuse them.
func (imp *Importer) resolveCustomer(ctx context.Context, row Row, snapshot map[string]*models.Customer) (*models.Customer, error) {
	companyName := strings.TrimSpace(row.CompanyName)
	key := strings.ToLower(companyName)
	if key != "" {
		if existing, ok := snapshot[key]; ok {
			return existing, nil
		}
	}

	contactName := strings.TrimSpace(row.ContactName)
	if companyName == "" || contactName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "new customers require both a company name and a contact name")
	}

	dto := customers.CreateCustomerDTO{
		CompanyName: companyName,
		ContactName: &contactName,
	}
	if email := strings.TrimSpace(row.Email); email != "" {
		dto.Email = &email
	}
	if phone := strings.TrimSpace(row.Phone); phone != "" {
		dto.Phone = &phone
	}

	created, err := imp.customers.Create(ctx, dto)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}
	snapshot[key] = created
	return created, nil
}

func (imp *Importer) loadCustomerSnapshot(ctx context.Context) (map[string]*models.Customer, error) {
	rows, err := imp.customers.List(ctx)
	if err != nil {
		return nil, err
	}
	snapshot := make(map[string]*models.Customer, len(rows))
	for i := range rows {
		snapshot[strings.ToLower(strings.TrimSpace(rows[i].CompanyName))] = &rows[i]
	}
	return snapshot, nil
}

func (imp *Importer) loadUserSnapshot(ctx context.Context) (map[string]*models.User, error) {
	rows, err := imp.users.List(ctx)
	if err != nil {
		return nil, err
	}
	snapshot := make(map[string]*models.User, len(rows))
	for i := range rows {
		if rows[i].Status != enums.UserStatusActive {
			continue
		}
		snapshot[strings.ToLower(strings.TrimSpace(rows[i].Email))] = &rows[i]
	}
	return snapshot, nil
}

func parseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", trimmed)
}

func parseImportInterval(value string) (enums.IntervalType, error) {
	normalized := enums.IntervalType(strings.ToLower(strings.TrimSpace(value)))
	for _, candidate := range importIntervals {
		if candidate == normalized {
			return candidate, nil
		}
	}
	names := make([]string, 0, len(importIntervals))
	for _, candidate := range importIntervals {
		names = append(names, string(candidate))
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation,
		fmt.Sprintf("invalid interval type %q, allowed values: %s", value, strings.Join(names, ", ")))
}

func parseImportStatus(value string) (enums.RenewalStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return enums.RenewalStatusPending, nil
	}
	status, err := enums.ParseRenewalStatus(normalized)
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	return status, nil
}

func errorMessage(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Message()
	}
	return err.Error()
}
