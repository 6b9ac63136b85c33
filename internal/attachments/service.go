package attachments

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltedge/renewals-backend/pkg/config"
	"github.com/voltedge/renewals-backend/pkg/db/models"
	pkgerrors "github.com/voltedge/renewals-backend/pkg/errors"
)

const maxUploadBytes = 20 * 1024 * 1024

type attachmentsRepository interface {
	Create(ctx context.Context, attachment *models.Attachment) (*models.Attachment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Attachment, error)
	ListByRenewal(ctx context.Context, renewalID uuid.UUID) ([]models.Attachment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type renewalsRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Renewal, error)
}

type objectStore interface {
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
	SignedReadURL(bucket, object string, expires time.Duration) (string, error)
	DeleteObject(ctx context.Context, bucket, object string) error
}

// Service exposes attachment upload, listing, and download semantics.
type Service interface {
	PresignUpload(ctx context.Context, userID, renewalID uuid.UUID, input PresignInput) (*PresignOutput, error)
	ListByRenewal(ctx context.Context, renewalID uuid.UUID) ([]AttachmentDTO, error)
	DownloadURL(ctx context.Context, id uuid.UUID) (*DownloadOutput, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo        attachmentsRepository
	renewals    renewalsRepository
	store       objectStore
	bucket      string
	uploadTTL   time.Duration
	downloadTTL time.Duration
}

// NewService constructs an attachments service backed by the provided
// repositories and object-storage signer.
func NewService(repo attachmentsRepository, renewals renewalsRepository, store objectStore, cfg config.GCSConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("attachments repository required")
	}
	if renewals == nil {
		return nil, fmt.Errorf("renewals repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("object store required")
	}
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("gcs bucket required")
	}
	if cfg.UploadURLExpiry <= 0 || cfg.DownloadURLExpiry <= 0 {
		return nil, fmt.Errorf("url expiries must be positive")
	}
	return &service{
		repo:        repo,
		renewals:    renewals,
		store:       store,
		bucket:      cfg.BucketName,
		uploadTTL:   cfg.UploadURLExpiry,
		downloadTTL: cfg.DownloadURLExpiry,
	}, nil
}

// PresignInput models the payload required to request an upload URL.
type PresignInput struct {
	FileName  string
	MimeType  string
	SizeBytes int64
}

// PresignOutput contains the signed PUT URL plus the recorded metadata.
type PresignOutput struct {
	AttachmentID uuid.UUID `json:"attachment_id"`
	ObjectKey    string    `json:"object_key"`
	SignedPutURL string    `json:"signed_put_url"`
	ContentType  string    `json:"content_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// DownloadOutput contains a short-lived signed GET URL for one attachment.
type DownloadOutput struct {
	AttachmentID uuid.UUID `json:"attachment_id"`
	FileName     string    `json:"file_name"`
	SignedGetURL string    `json:"signed_get_url"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (s *service) PresignUpload(ctx context.Context, userID, renewalID uuid.UUID, input PresignInput) (*PresignOutput, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}

	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file_name is required")
	}
	mimeType := strings.TrimSpace(input.MimeType)
	if mimeType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mime_type is required")
	}
	if input.SizeBytes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size_bytes must be positive")
	}
	if input.SizeBytes > maxUploadBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("size_bytes must be at most %d bytes", maxUploadBytes))
	}

	if _, err := s.renewals.FindByID(ctx, renewalID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "renewal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find renewal")
	}

	attachmentID := uuid.New()
	objectKey := buildObjectKey(renewalID, attachmentID, fileName)

	row := &models.Attachment{
		ID:         attachmentID,
		RenewalID:  renewalID,
		FileName:   fileName,
		FilePath:   objectKey,
		FileSize:   input.SizeBytes,
		UploadedBy: userID,
	}
	if _, err := s.repo.Create(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist attachment row")
	}

	expiresAt := time.Now().Add(s.uploadTTL)
	signedURL, err := s.store.SignedURL(s.bucket, objectKey, mimeType, s.uploadTTL)
	if err != nil {
		_ = s.repo.Delete(ctx, attachmentID)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}

	return &PresignOutput{
		AttachmentID: attachmentID,
		ObjectKey:    objectKey,
		SignedPutURL: signedURL,
		ContentType:  mimeType,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *service) ListByRenewal(ctx context.Context, renewalID uuid.UUID) ([]AttachmentDTO, error) {
	rows, err := s.repo.ListByRenewal(ctx, renewalID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list attachments")
	}
	dtos := make([]AttachmentDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, FromModel(&rows[i]))
	}
	return dtos, nil
}

func (s *service) DownloadURL(ctx context.Context, id uuid.UUID) (*DownloadOutput, error) {
	attachment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "attachment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find attachment")
	}

	expiresAt := time.Now().Add(s.downloadTTL)
	signedURL, err := s.store.SignedReadURL(s.bucket, attachment.FilePath, s.downloadTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign download url")
	}

	return &DownloadOutput{
		AttachmentID: attachment.ID,
		FileName:     attachment.FileName,
		SignedGetURL: signedURL,
		ExpiresAt:    expiresAt,
	}, nil
}

// Delete removes the stored object first so a storage failure never
// leaves an orphaned row pointing at a live object.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	attachment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "attachment not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find attachment")
	}

	if err := s.store.DeleteObject(ctx, s.bucket, attachment.FilePath); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete stored object")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete attachment row")
	}
	return nil
}

func buildObjectKey(renewalID, attachmentID uuid.UUID, fileName string) string {
	cleanName := sanitizeFileName(fileName)
	if cleanName == "" {
		cleanName = attachmentID.String()
	}
	return fmt.Sprintf("attachments/%s/%s/%s", renewalID, attachmentID, cleanName)
}

func sanitizeFileName(name string) string {
	if name == "" {
		return ""
	}
	clean := path.Base(strings.TrimSpace(name))
	if clean == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r == '/' || r == '\\' || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_.")
}
