package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"priya-cloud/security"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthRouter(t *testing.T) *mux.Router {
	t.Helper()
	repo := security.NewFileTokenRepository(filepath.Join(t.TempDir(), "refresh_tokens.json"))
	google := security.NewGoogleCalendarClient("test-client-id", "test-client-secret", "http://localhost:8080/auth/callback", repo)
	handler := NewGoogleAuthHandler(google, "demo-user")

	r := mux.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func TestHandleAuthURL(t *testing.T) {
	router := newTestAuthRouter(t)

	req := httptest.NewRequest("GET", "/auth", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp AuthURLResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, resp.AuthURL, "accounts.google.com")
	assert.Contains(t, resp.AuthURL, "access_type=offline")
	assert.Contains(t, resp.AuthURL, "client_id=test-client-id")
}

func TestHandleCallback_ProviderError(t *testing.T) {
	router := newTestAuthRouter(t)

	req := httptest.NewRequest("GET", "/auth/callback?error=access_denied", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/?error=access_denied", rr.Header().Get("Location"))
}

func TestHandleCallback_MissingCode(t *testing.T) {
	router := newTestAuthRouter(t)

	req := httptest.NewRequest("GET", "/auth/callback", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusFound, rr.Code)
	assert.Contains(t, rr.Header().Get("Location"), "/?error=")
}

func TestHandleCallback_ExchangeFailure(t *testing.T) {
	// Exchange hits Google's real token endpoint with a bogus code and
	// credentials, which fails; the browser must still get a redirect, not
	// an error page.
	if testing.Short() {
		t.Skip("Skipping network-touching test in short mode")
	}

	router := newTestAuthRouter(t)

	req := httptest.NewRequest("GET", "/auth/callback?code=bogus-code", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusFound, rr.Code)
	assert.Contains(t, rr.Header().Get("Location"), "/?error=")
}
