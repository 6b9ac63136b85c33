package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/voltedge/renewals-backend/api/middleware"
	"github.com/voltedge/renewals-backend/api/responses"
	"github.com/voltedge/renewals-backend/api/validators"
	"github.com/voltedge/renewals-backend/internal/notifications"
	"github.com/voltedge/renewals-backend/pkg/enums"
	pkgerrors "github.com/voltedge/renewals-backend/pkg/errors"
	"github.com/voltedge/renewals-backend/pkg/logger"
)

// NotificationsController exposes reminder listings plus per-user reminder
// preferences.
type NotificationsController struct {
	service notifications.Service
	logg    *logger.Logger
}

func NewNotificationsController(service notifications.Service, logg *logger.Logger) *NotificationsController {
	return &NotificationsController{service: service, logg: logg}
}

type updatePreferencesRequest struct {
	Enable2Months bool `json:"enable_2_months"`
	Enable1Month  bool `json:"enable_1_month"`
	Enable1Week   bool `json:"enable_1_week"`
}

func (c *NotificationsController) List(w http.ResponseWriter, r *http.Request) {
	input := notifications.ListInput{
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}

	limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	input.Limit = limit

	if input.SalespersonID, err = queryUUID(r, "salesperson_id"); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status := enums.NotificationStatus(raw)
		input.Status = &status
	}

	result, err := c.service.List(r.Context(), input)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, result)
}

func (c *NotificationsController) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, err := c.actorID(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	result, err := c.service.GetPreferences(r.Context(), userID)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, result)
}

func (c *NotificationsController) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, err := c.actorID(r)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	var req updatePreferencesRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	result, err := c.service.UpdatePreferences(r.Context(), userID, notifications.UpdatePreferencesInput{
		Enable2Months: req.Enable2Months,
		Enable1Month:  req.Enable1Month,
		Enable1Week:   req.Enable1Week,
	})
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, result)
}

func (c *NotificationsController) actorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid actor id")
	}
	return id, nil
}
