package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltedge/renewals-backend/internal/renewals"
	"github.com/voltedge/renewals-backend/pkg/config"
	"github.com/voltedge/renewals-backend/pkg/enums"
	pkgerrors "github.com/voltedge/renewals-backend/pkg/errors"
	"github.com/voltedge/renewals-backend/pkg/logger"
)

type stubRenewalsService struct {
	created   *renewals.CreateRenewalInput
	getResult *renewals.RenewalDTO
	getErr    error
	listInput *renewals.ListInput
}

func (s *stubRenewalsService) Create(_ context.Context, input renewals.CreateRenewalInput) (*renewals.RenewalDTO, error) {
	s.created = &input
	return &renewals.RenewalDTO{ID: uuid.New()}, nil
}

func (s *stubRenewalsService) Get(_ context.Context, id uuid.UUID) (*renewals.RenewalDTO, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if s.getResult != nil {
		return s.getResult, nil
	}
	return &renewals.RenewalDTO{ID: id}, nil
}

func (s *stubRenewalsService) List(_ context.Context, input renewals.ListInput) (*renewals.ListResult, error) {
	s.listInput = &input
	return &renewals.ListResult{}, nil
}

func (s *stubRenewalsService) ListByCustomer(_ context.Context, _ uuid.UUID) ([]renewals.RenewalDTO, error) {
	return nil, nil
}

func (s *stubRenewalsService) Update(_ context.Context, id uuid.UUID, _ renewals.UpdateRenewalInput) (*renewals.RenewalDTO, error) {
	return &renewals.RenewalDTO{ID: id}, nil
}

func (s *stubRenewalsService) Delete(_ context.Context, _ uuid.UUID) error {
	return nil
}

var _ renewals.Service = (*stubRenewalsService)(nil)

func controllerLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func renewalsRouter(svc renewals.Service) (*chi.Mux, *RenewalsController) {
	c := NewRenewalsController(svc, nil, config.ImportConfig{MaxUploadMB: 10, MaxRows: 5000}, controllerLogger())
	router := chi.NewRouter()
	router.Post("/renewals", c.Create)
	router.Get("/renewals", c.List)
	router.Get("/renewals/{renewalID}", c.Get)
	router.Post("/renewals/bulk-upload", c.BulkUpload)
	router.Get("/renewals/bulk-upload/template", c.BulkUploadTemplate)
	return router, c
}

func TestRenewalsCreateForwardsInput(t *testing.T) {
	svc := &stubRenewalsService{}
	router, _ := renewalsRouter(svc)

	customerID := uuid.New()
	body := `{
		"customer_id": "` + customerID.String() + `",
		"last_service_date": "2024-01-15",
		"interval_type": "annual",
		"notes": "  hot spots on panel B  "
	}`

	req := httptest.NewRequest(http.MethodPost, "/renewals", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.created)
	assert.Equal(t, customerID, svc.created.CustomerID)
	assert.Equal(t, enums.IntervalAnnual, svc.created.IntervalType)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), svc.created.LastServiceDate)
	require.NotNil(t, svc.created.Notes)
	assert.Equal(t, "hot spots on panel B", *svc.created.Notes)
}

func TestRenewalsCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "missing customer id",
			body: `{"last_service_date": "2024-01-15", "interval_type": "annual"}`,
		},
		{
			name: "bad interval",
			body: `{"customer_id": "` + uuid.NewString() + `", "last_service_date": "2024-01-15", "interval_type": "weekly"}`,
		},
		{
			name: "bad date",
			body: `{"customer_id": "` + uuid.NewString() + `", "last_service_date": "01-15-2024", "interval_type": "annual"}`,
		},
		{
			name: "unknown field",
			body: `{"customer_id": "` + uuid.NewString() + `", "last_service_date": "2024-01-15", "interval_type": "annual", "bogus": 1}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubRenewalsService{}
			router, _ := renewalsRouter(svc)

			req := httptest.NewRequest(http.MethodPost, "/renewals", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, svc.created, "service should not be called")
		})
	}
}

func TestRenewalsGet(t *testing.T) {
	svc := &stubRenewalsService{}
	router, _ := renewalsRouter(svc)

	t.Run("found", func(t *testing.T) {
		id := uuid.New()
		req := httptest.NewRequest(http.MethodGet, "/renewals/"+id.String(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var envelope struct {
			Data renewals.RenewalDTO `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
		assert.Equal(t, id, envelope.Data.ID)
	})

	t.Run("bad id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/renewals/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		svc.getErr = pkgerrors.New(pkgerrors.CodeNotFound, "renewal not found")
		defer func() { svc.getErr = nil }()

		req := httptest.NewRequest(http.MethodGet, "/renewals/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRenewalsListForwardsFilters(t *testing.T) {
	svc := &stubRenewalsService{}
	router, _ := renewalsRouter(svc)

	customerID := uuid.New()
	url := "/renewals?customer_id=" + customerID.String() + "&status=pending&due_before=2025-01-01&limit=25"
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.listInput)
	require.NotNil(t, svc.listInput.CustomerID)
	assert.Equal(t, customerID, *svc.listInput.CustomerID)
	require.NotNil(t, svc.listInput.Status)
	assert.Equal(t, enums.RenewalStatusPending, *svc.listInput.Status)
	require.NotNil(t, svc.listInput.DueBefore)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *svc.listInput.DueBefore)
	assert.Equal(t, 25, svc.listInput.Limit)
}

func TestBulkUploadRejectsBadBase64(t *testing.T) {
	svc := &stubRenewalsService{}
	router, _ := renewalsRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/renewals/bulk-upload", strings.NewReader(`{"fileData": "%%%not-base64%%%"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBulkUploadTemplateDownload(t *testing.T) {
	svc := &stubRenewalsService{}
	router, _ := renewalsRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/renewals/bulk-upload/template", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), templateFileName)
	assert.NotZero(t, rec.Body.Len())
}
