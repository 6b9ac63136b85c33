package controllers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/voltedge/renewals-backend/api/middleware"
	"github.com/voltedge/renewals-backend/api/responses"
	"github.com/voltedge/renewals-backend/api/validators"
	"github.com/voltedge/renewals-backend/internal/users"
	"github.com/voltedge/renewals-backend/pkg/enums"
	pkgerrors "github.com/voltedge/renewals-backend/pkg/errors"
	"github.com/voltedge/renewals-backend/pkg/logger"
)

// UsersController exposes admin-only user management.
type UsersController struct {
	service users.Service
	logg    *logger.Logger
}

func NewUsersController(service users.Service, logg *logger.Logger) *UsersController {
	return &UsersController{service: service, logg: logg}
}

type createUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=255"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin salesperson"`
}

type updateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,max=255"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin salesperson"`
}

type updateUserStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active disabled"`
}

func (c *UsersController) List(w http.ResponseWriter, r *http.Request) {
	result, err := c.service.List(r.Context())
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, map[string]any{"users": result})
}

func (c *UsersController) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	role, err := enums.ParseUserRole(req.Role)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
		return
	}

	result, err := c.service.Create(r.Context(), users.CreateUserInput{
		Email:    req.Email,
		Name:     validators.SanitizeString(req.Name, 255),
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	responses.WriteSuccessStatus(w, http.StatusCreated, result)
}

func (c *UsersController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "userID")
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	var req updateUserRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	input := users.UpdateUserInput{
		Password: req.Password,
	}
	if req.Name != nil {
		name := validators.SanitizeString(*req.Name, 255)
		input.Name = &name
	}
	if req.Role != nil {
		role, err := enums.ParseUserRole(*req.Role)
		if err != nil {
			responses.WriteError(r.Context(), c.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
			return
		}
		input.Role = &role
	}

	result, err := c.service.Update(r.Context(), id, input)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, result)
}

func (c *UsersController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "userID")
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	var req updateUserStatusRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	status, err := enums.ParseUserStatus(req.Status)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
		return
	}

	result, err := c.service.UpdateStatus(r.Context(), id, status)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, result)
}

func (c *UsersController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "userID")
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	actorRaw := middleware.UserIDFromContext(r.Context())
	if actorRaw == "" {
		responses.WriteError(r.Context(), c.logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
		return
	}
	actorID, err := uuid.Parse(actorRaw)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, fmt.Sprintf("invalid actor id %q", actorRaw)))
		return
	}

	if err := c.service.Delete(r.Context(), actorID, id); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, map[string]any{"deleted": true})
}
