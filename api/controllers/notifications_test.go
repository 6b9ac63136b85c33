package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltedge/renewals-backend/api/middleware"
	"github.com/voltedge/renewals-backend/internal/notifications"
)

type stubNotificationsService struct {
	prefs       notifications.PreferencesDTO
	updatedWith *notifications.UpdatePreferencesInput
	listInput   *notifications.ListInput
}

func (s *stubNotificationsService) List(_ context.Context, input notifications.ListInput) (*notifications.ListResult, error) {
	s.listInput = &input
	return &notifications.ListResult{}, nil
}

func (s *stubNotificationsService) GetPreferences(_ context.Context, userID uuid.UUID) (*notifications.PreferencesDTO, error) {
	prefs := s.prefs
	prefs.UserID = userID
	return &prefs, nil
}

func (s *stubNotificationsService) UpdatePreferences(_ context.Context, userID uuid.UUID, input notifications.UpdatePreferencesInput) (*notifications.PreferencesDTO, error) {
	s.updatedWith = &input
	return &notifications.PreferencesDTO{
		UserID:        userID,
		Enable2Months: input.Enable2Months,
		Enable1Month:  input.Enable1Month,
		Enable1Week:   input.Enable1Week,
	}, nil
}

var _ notifications.Service = (*stubNotificationsService)(nil)

func notificationsRouter(svc notifications.Service, userID uuid.UUID) *chi.Mux {
	c := NewNotificationsController(svc, controllerLogger())
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := middleware.WithUserID(r.Context(), userID.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	router.Get("/notifications", c.List)
	router.Get("/notifications/preferences", c.GetPreferences)
	router.Put("/notifications/preferences", c.UpdatePreferences)
	return router
}

func TestNotificationsListForwardsFilters(t *testing.T) {
	svc := &stubNotificationsService{}
	router := notificationsRouter(svc, uuid.New())

	salespersonID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/notifications?salesperson_id="+salespersonID.String()+"&status=pending&limit=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.listInput)
	require.NotNil(t, svc.listInput.SalespersonID)
	assert.Equal(t, salespersonID, *svc.listInput.SalespersonID)
	require.NotNil(t, svc.listInput.Status)
	assert.Equal(t, "pending", string(*svc.listInput.Status))
	assert.Equal(t, 10, svc.listInput.Limit)
}

func TestPreferencesRoundtrip(t *testing.T) {
	userID := uuid.New()
	svc := &stubNotificationsService{
		prefs: notifications.PreferencesDTO{Enable2Months: true, Enable1Month: true, Enable1Week: true},
	}
	router := notificationsRouter(svc, userID)

	req := httptest.NewRequest(http.MethodGet, "/notifications/preferences", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var getEnvelope struct {
		Data notifications.PreferencesDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &getEnvelope))
	assert.Equal(t, userID, getEnvelope.Data.UserID)
	assert.True(t, getEnvelope.Data.Enable1Week)

	body := `{"enable_2_months": false, "enable_1_month": true, "enable_1_week": false}`
	req = httptest.NewRequest(http.MethodPut, "/notifications/preferences", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.updatedWith)
	assert.False(t, svc.updatedWith.Enable2Months)
	assert.True(t, svc.updatedWith.Enable1Month)
	assert.False(t, svc.updatedWith.Enable1Week)
}

func TestPreferencesRequireIdentity(t *testing.T) {
	svc := &stubNotificationsService{}
	c := NewNotificationsController(svc, controllerLogger())

	req := httptest.NewRequest(http.MethodGet, "/notifications/preferences", nil)
	rec := httptest.NewRecorder()
	c.GetPreferences(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
