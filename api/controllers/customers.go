package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/voltedge/renewals-backend/api/responses"
	"github.com/voltedge/renewals-backend/api/validators"
	"github.com/voltedge/renewals-backend/internal/customers"
	"github.com/voltedge/renewals-backend/internal/renewals"
	pkgerrors "github.com/voltedge/renewals-backend/pkg/errors"
	"github.com/voltedge/renewals-backend/pkg/logger"
)

// CustomersController exposes customer CRUD plus the per-customer renewal
// history listing.
type CustomersController struct {
	service  customers.Service
	renewals renewals.Service
	logg     *logger.Logger
}

func NewCustomersController(service customers.Service, renewalSvc renewals.Service, logg *logger.Logger) *CustomersController {
	return &CustomersController{service: service, renewals: renewalSvc, logg: logg}
}

type createCustomerRequest struct {
	CompanyName              string  `json:"company_name" validate:"required,max=255"`
	ContactName              *string `json:"contact_name" validate:"omitempty,max=255"`
	Email                    *string `json:"email" validate:"omitempty,email"`
	Phone                    *string `json:"phone" validate:"omitempty,max=50"`
	AssignedSalespersonID    *string `json:"assigned_salesperson_id" validate:"omitempty,uuid"`
	SalesforceOpportunityURL *string `json:"salesforce_opportunity_url" validate:"omitempty,url,max=2048"`
}

type updateCustomerRequest struct {
	CompanyName              *string `json:"company_name" validate:"omitempty,max=255"`
	ContactName              *string `json:"contact_name" validate:"omitempty,max=255"`
	Email                    *string `json:"email" validate:"omitempty,email"`
	Phone                    *string `json:"phone" validate:"omitempty,max=50"`
	AssignedSalespersonID    *string `json:"assigned_salesperson_id" validate:"omitempty,uuid"`
	ClearAssignedSalesperson bool    `json:"clear_assigned_salesperson"`
	SalesforceOpportunityURL *string `json:"salesforce_opportunity_url" validate:"omitempty,url,max=2048"`
}

func (c *CustomersController) List(w http.ResponseWriter, r *http.Request) {
	result, err := c.service.List(r.Context())
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]any{"customers": result})
}

func (c *CustomersController) Create(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	input := customers.CreateCustomerInput{
		CompanyName:              validators.SanitizeString(req.CompanyName, 255),
		ContactName:              sanitizePtr(req.ContactName, 255),
		Email:                    req.Email,
		Phone:                    sanitizePtr(req.Phone, 50),
		SalesforceOpportunityURL: req.SalesforceOpportunityURL,
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

func (c *CustomersController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "customerID")
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	var req updateCustomerRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	input := customers.UpdateCustomerInput{
		CompanyName:              sanitizePtr(req.CompanyName, 255),
		ContactName:              sanitizePtr(req.ContactName, 255),
		Email:                    req.Email,
		Phone:                    sanitizePtr(req.Phone, 50),
		ClearAssignedSalesperson: req.ClearAssignedSalesperson,
		SalesforceOpportunityURL: req.SalesforceOpportunityURL,
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

func (c *CustomersController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "customerID")
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

// ListRenewals returns the customer's renewals ordered by next due date.
func (c *CustomersController) ListRenewals(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "customerID")
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	result, err := c.renewals.ListByCustomer(r.Context(), id)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, map[string]any{"renewals": result})
}

func sanitizePtr(value *string, maxLen int) *string {
	if value == nil {
		return nil
	}
	sanitized := validators.SanitizeString(*value, maxLen)
	return &sanitized
}

func optionalUUID(value *string, field string) (*uuid.UUID, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*value)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid "+field)
	}
	return &id, nil
}
