package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRateStore struct {
	counts map[string]int64
	err    error
}

func (s *stubRateStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.counts == nil {
		s.counts = map[string]int64{}
	}
	s.counts[key]++
	return s.counts[key], nil
}

func loginRequest(email string) *http.Request {
	body := strings.NewReader(`{"email":"` + email + `","password":"secret"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.9:51234"
	return req
}

func TestAuthRateLimitEmailLimit(t *testing.T) {
	store := &stubRateStore{}
	policy := AuthRateLimitPolicy{Window: time.Minute, IPLimit: 100, EmailLimit: 2}

	var handled int
	handler := AuthRateLimit(store, policy, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handled++
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest("alice@example.com"))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("alice@example.com"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 2, handled)

	// A different email on the same IP is still allowed.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("bob@example.com"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRateLimitIPLimit(t *testing.T) {
	store := &stubRateStore{}
	policy := AuthRateLimitPolicy{Window: time.Minute, IPLimit: 3, EmailLimit: 0}

	handler := AuthRateLimit(store, policy, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest("alice@example.com"))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("alice@example.com"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAuthRateLimitStoreFailureAllows(t *testing.T) {
	store := &stubRateStore{err: errors.New("redis down")}
	policy := AuthRateLimitPolicy{Window: time.Minute, IPLimit: 1, EmailLimit: 1}

	handler := AuthRateLimit(store, policy, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest("alice@example.com"))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestAuthRateLimitBodyRestored(t *testing.T) {
	store := &stubRateStore{}
	policy := AuthRateLimitPolicy{Window: time.Minute, IPLimit: 10, EmailLimit: 10}

	var seen string
	handler := AuthRateLimit(store, policy, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 1024)
		n, _ := r.Body.Read(buf)
		seen = string(buf[:n])
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("alice@example.com"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, seen, "alice@example.com")
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := loginRequest("alice@example.com")
	req.Header.Set("X-Forwarded-For", "198.51.100.4, 10.0.0.1")
	assert.Equal(t, "198.51.100.4", clientIP(req))

	req.Header.Del("X-Forwarded-For")
	assert.Equal(t, "203.0.113.9", clientIP(req))
}
