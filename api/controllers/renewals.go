package controllers

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/voltedge/renewals-backend/api/responses"
	"github.com/voltedge/renewals-backend/api/validators"
	"github.com/voltedge/renewals-backend/internal/importer"
	"github.com/voltedge/renewals-backend/internal/renewals"
	"github.com/voltedge/renewals-backend/pkg/config"
	"github.com/voltedge/renewals-backend/pkg/enums"
	pkgerrors "github.com/voltedge/renewals-backend/pkg/errors"
	"github.com/voltedge/renewals-backend/pkg/logger"
)

const templateFileName = "renewals_bulk_upload_template.xlsx"

// RenewalsController exposes renewal CRUD, filtered listings, and the bulk
// spreadsheet import endpoints.
type RenewalsController struct {
	service   renewals.Service
	importer  *importer.Importer
	importCfg config.ImportConfig
	logg      *logger.Logger
}

func NewRenewalsController(service renewals.Service, imp *importer.Importer, importCfg config.ImportConfig, logg *logger.Logger) *RenewalsController {
	return &RenewalsController{service: service, importer: imp, importCfg: importCfg, logg: logg}
}

type createRenewalRequest struct {
	CustomerID               string  `json:"customer_id" validate:"required,uuid"`
	ServiceType              string  `json:"service_type" validate:"omitempty,max=100"`
	SiteCode                 *string `json:"site_code" validate:"omitempty,max=100"`
	ReferenceID              *int    `json:"reference_id"`
	Address                  *string `json:"address" validate:"omitempty,max=500"`
	LastServiceDate          string  `json:"last_service_date" validate:"required"`
	IntervalType             string  `json:"interval_type" validate:"required"`
	CustomIntervalMonths     *int    `json:"custom_interval_months"`
	Status                   string  `json:"status" validate:"omitempty,max=50"`
	Notes                    *string `json:"notes" validate:"omitempty,max=5000"`
	AssignedSalespersonID    *string `json:"assigned_salesperson_id" validate:"omitempty,uuid"`
	SalesforceOpportunityURL *string `json:"salesforce_opportunity_url" validate:"omitempty,url,max=2048"`
}

type updateRenewalRequest struct {
	ServiceType              *string `json:"service_type" validate:"omitempty,max=100"`
	SiteCode                 *string `json:"site_code" validate:"omitempty,max=100"`
	ReferenceID              *int    `json:"reference_id"`
	Address                  *string `json:"address" validate:"omitempty,max=500"`
	LastServiceDate          *string `json:"last_service_date"`
	IntervalType             *string `json:"interval_type"`
	CustomIntervalMonths     *int    `json:"custom_interval_months"`
	Status                   *string `json:"status" validate:"omitempty,max=50"`
	Notes                    *string `json:"notes" validate:"omitempty,max=5000"`
	AssignedSalespersonID    *string `json:"assigned_salesperson_id" validate:"omitempty,uuid"`
	ClearAssignedSalesperson bool    `json:"clear_assigned_salesperson"`
	SalesforceOpportunityURL *string `json:"salesforce_opportunity_url" validate:"omitempty,url,max=2048"`
}

type bulkUploadRequest struct {
	FileData string `json:"fileData" validate:"required"`
}

func (c *RenewalsController) Create(w http.ResponseWriter, r *http.Request) {
	var req createRenewalRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	customerID, err := optionalUUID(&req.CustomerID, "customer_id")
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	lastServiceDate, err := parseDate(req.LastServiceDate, "last_service_date")
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	input := renewals.CreateRenewalInput{
		CustomerID:               *customerID,
		SiteCode:                 sanitizePtr(req.SiteCode, 100),
		ReferenceID:              req.ReferenceID,
		Address:                  sanitizePtr(req.Address, 500),
		LastServiceDate:          lastServiceDate,
		CustomIntervalMonths:     req.CustomIntervalMonths,
		Notes:                    sanitizePtr(req.Notes, 5000),
		SalesforceOpportunityURL: req.SalesforceOpportunityURL,
	}

	if req.ServiceType != "" {
		serviceType, err := enums.ParseServiceType(req.ServiceType)
		if err != nil {
			responses.WriteError(r.Context(), c.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid service type"))
			return
		}
		input.ServiceType = serviceType
	}

	intervalType, err := enums.ParseIntervalType(req.IntervalType)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid interval type"))
		return
	}
	input.IntervalType = intervalType

	if req.Status != "" {
		status, err := enums.ParseRenewalStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), c.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}
		input.Status = status
	}

	salespersonID, err := optionalUUID(req.AssignedSalespersonID, "assigned_salesperson_id")
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	input.AssignedSalespersonID = salespersonID

	result, err := c.service.Create(r.Context(), input)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	responses.WriteSuccessStatus(w, http.StatusCreated, result)
}

func (c *RenewalsController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "renewalID")
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	result, err := c.service.Get(r.Context(), id)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, result)
}

func (c *RenewalsController) List(w http.ResponseWriter, r *http.Request) {
	input := renewals.ListInput{
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}

	limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	input.Limit = limit

	if input.CustomerID, err = queryUUID(r, "customer_id"); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	if input.SalespersonID, err = queryUUID(r, "assigned_salesperson_id"); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	if input.DueBefore, err = queryDate(r, "due_before"); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	if input.DueAfter, err = queryDate(r, "due_after"); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseRenewalStatus(raw)
		if err != nil {
			responses.WriteError(r.Context(), c.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}
		input.Status = &status
	}

	result, err := c.service.List(r.Context(), input)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, result)
}

func (c *RenewalsController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "renewalID")
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	var req updateRenewalRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	input := renewals.UpdateRenewalInput{
		SiteCode:                 sanitizePtr(req.SiteCode, 100),
		ReferenceID:              req.ReferenceID,
		Address:                  sanitizePtr(req.Address, 500),
		CustomIntervalMonths:     req.CustomIntervalMonths,
		Notes:                    sanitizePtr(req.Notes, 5000),
		ClearAssignedSalesperson: req.ClearAssignedSalesperson,
		SalesforceOpportunityURL: req.SalesforceOpportunityURL,
	}

	if req.ServiceType != nil {
		serviceType, err := enums.ParseServiceType(*req.ServiceType)
		if err != nil {
			responses.WriteError(r.Context(), c.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid service type"))
			return
		}
		input.ServiceType = &serviceType
	}
	if req.LastServiceDate != nil {
		parsed, err := parseDate(*req.LastServiceDate, "last_service_date")
		if err != nil {
			responses.WriteError(r.Context(), c.logg, w, err)
			return
		}
		input.LastServiceDate = &parsed
	}
	if req.IntervalType != nil {
		intervalType, err := enums.ParseIntervalType(*req.IntervalType)
		if err != nil {
			responses.WriteError(r.Context(), c.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid interval type"))
			return
		}
		input.IntervalType = &intervalType
	}
	if req.Status != nil {
		status, err := enums.ParseRenewalStatus(*req.Status)
		if err != nil {
			responses.WriteError(r.Context(), c.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}
		input.Status = &status
	}

	salespersonID, err := optionalUUID(req.AssignedSalespersonID, "assigned_salesperson_id")
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	input.AssignedSalespersonID = salespersonID

	result, err := c.service.Update(r.Context(), id, input)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, result)
}

func (c *RenewalsController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "renewalID")
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	if err := c.service.Delete(r.Context(), id); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, map[string]any{"deleted": true})
}

// BulkUpload accepts a base64 encoded spreadsheet and imports its rows.
func (c *RenewalsController) BulkUpload(w http.ResponseWriter, r *http.Request) {
	var req bulkUploadRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	decoded, err := base64.StdEncoding.DecodeString(req.FileData)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file data must be base64 encoded"))
		return
	}

	maxBytes := c.importCfg.MaxUploadMB << 20
	if maxBytes > 0 && len(decoded) > maxBytes {
		responses.WriteError(r.Context(), c.logg, w, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("file exceeds the %d MB upload limit", c.importCfg.MaxUploadMB)))
		return
	}

	rows, err := importer.ParseWorkbook(bytes.NewReader(decoded), c.importCfg.MaxRows)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	report, err := c.importer.ImportBatch(r.Context(), rows)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	ctx := c.logg.WithFields(r.Context(), map[string]any{
		"imported": report.Success,
		"failed":   report.Failed,
	})
	c.logg.Info(ctx, "bulk upload processed")

	responses.WriteSuccess(w, report)
}

// BulkUploadTemplate streams the import template spreadsheet.
func (c *RenewalsController) BulkUploadTemplate(w http.ResponseWriter, r *http.Request) {
	file, err := importer.BuildTemplate()
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build template"))
		return
	}
	defer func() { _ = file.Close() }()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", templateFileName))
	if err := file.Write(w); err != nil {
		c.logg.Error(r.Context(), "write template response", err)
	}
}
