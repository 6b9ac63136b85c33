package controllers

import (
	"net/http"

	"github.com/voltedge/renewals-backend/api/middleware"
	"github.com/voltedge/renewals-backend/api/responses"
	"github.com/voltedge/renewals-backend/api/validators"
	"github.com/voltedge/renewals-backend/internal/auth"
	pkgerrors "github.com/voltedge/renewals-backend/pkg/errors"
	"github.com/voltedge/renewals-backend/pkg/logger"
)

// AuthController exposes login, refresh, and logout endpoints.
type AuthController struct {
	service auth.Service
	logg    *logger.Logger
}

func NewAuthController(service auth.Service, logg *logger.Logger) *AuthController {
	return &AuthController{service: service, logg: logg}
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	result, err := c.service.Login(r.Context(), req)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, result)
}

func (c *AuthController) Refresh(w http.ResponseWriter, r *http.Request) {
	var req auth.RefreshRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	result, err := c.service.Refresh(r.Context(), req)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, result)
}

func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	accessID := middleware.AccessIDFromContext(r.Context())
	if accessID == "" {
		responses.WriteError(r.Context(), c.logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
		return
	}

	if err := c.service.Logout(r.Context(), accessID); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, map[string]any{"logged_out": true})
}
