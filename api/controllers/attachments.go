package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/voltedge/renewals-backend/api/middleware"
	"github.com/voltedge/renewals-backend/api/responses"
	"github.com/voltedge/renewals-backend/api/validators"
	"github.com/voltedge/renewals-backend/internal/attachments"
	pkgerrors "github.com/voltedge/renewals-backend/pkg/errors"
	"github.com/voltedge/renewals-backend/pkg/logger"
)

// AttachmentsController exposes presigned upload, listing, download, and
// deletion of renewal attachments.
type AttachmentsController struct {
	service attachments.Service
	logg    *logger.Logger
}

func NewAttachmentsController(service attachments.Service, logg *logger.Logger) *AttachmentsController {
	return &AttachmentsController{service: service, logg: logg}
}

type presignUploadRequest struct {
	FileName  string `json:"file_name" validate:"required,max=255"`
	MimeType  string `json:"mime_type" validate:"required,max=255"`
	SizeBytes int64  `json:"size_bytes" validate:"required,gt=0"`
}

func (c *AttachmentsController) PresignUpload(w http.ResponseWriter, r *http.Request) {
	renewalID, err := pathUUID(r, "renewalID")
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	rawUserID := middleware.UserIDFromContext(r.Context())
	if rawUserID == "" {
		responses.WriteError(r.Context(), c.logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
		return
	}
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid actor id"))
		return
	}

	var req presignUploadRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	result, err := c.service.PresignUpload(r.Context(), userID, renewalID, attachments.PresignInput{
		FileName:  req.FileName,
		MimeType:  req.MimeType,
		SizeBytes: req.SizeBytes,
	})
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	responses.WriteSuccessStatus(w, http.StatusCreated, result)
}

func (c *AttachmentsController) ListByRenewal(w http.ResponseWriter, r *http.Request) {
	renewalID, err := pathUUID(r, "renewalID")
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	result, err := c.service.ListByRenewal(r.Context(), renewalID)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, map[string]any{"attachments": result})
}

func (c *AttachmentsController) DownloadURL(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "attachmentID")
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	result, err := c.service.DownloadURL(r.Context(), id)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	responses.WriteSuccess(w, result)
}

func (c *AttachmentsController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "attachmentID")
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
