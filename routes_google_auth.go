package main

import (
	"log"
	"net/http"
	"net/url"

	"priya-cloud/security"

	"github.com/gorilla/mux"
)

// GoogleAuthHandler handles the Google OAuth consent flow for the calendar
// integration. The principal id is fixed at construction; a real identity
// system would supply it per request.
type GoogleAuthHandler struct {
	google      *security.GoogleCalendarClient
	principalID string
}

// NewGoogleAuthHandler creates a new Google auth handler.
func NewGoogleAuthHandler(google *security.GoogleCalendarClient, principalID string) *GoogleAuthHandler {
	return &GoogleAuthHandler{
		google:      google,
		principalID: principalID,
	}
}

// AuthURLResponse is the response for the auth initiation endpoint.
type AuthURLResponse struct {
	Success bool   `json:"success"`
	AuthURL string `json:"authUrl"`
}

// RegisterRoutes registers the OAuth routes.
func (h *GoogleAuthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/auth", h.HandleAuthURL).Methods("GET")
	router.HandleFunc("/auth/callback", h.HandleCallback).Methods("GET")
}

// HandleAuthURL returns the OAuth2 consent URL.
func (h *GoogleAuthHandler) HandleAuthURL(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, AuthURLResponse{
		Success: true,
		AuthURL: h.google.AuthCodeURL(),
	})
}

// HandleCallback handles the OAuth redirect from Google: exchanges the
// authorization code, persists the refresh token, and sends the browser back
// to the landing page with the outcome in a query parameter.
func (h *GoogleAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		log.Printf("OAuth error: %s", errParam)
		h.redirectError(w, r, errParam)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectError(w, r, "No authorization code received")
		return
	}

	token, err := h.google.Exchange(ctx, code)
	if err != nil {
		log.Printf("Failed to exchange code for token: %v", err)
		h.redirectError(w, r, "Failed to authenticate")
		return
	}

	if err := h.google.StoreToken(ctx, h.principalID, token); err != nil {
		log.Printf("Failed to store token: %v", err)
		h.redirectError(w, r, "Failed to authenticate")
		return
	}

	log.Printf("Successfully authenticated principal %s for calendar access", h.principalID)
	http.Redirect(w, r, "/?success=true", http.StatusFound)
}

func (h *GoogleAuthHandler) redirectError(w http.ResponseWriter, r *http.Request, message string) {
	http.Redirect(w, r, "/?error="+url.QueryEscape(message), http.StatusFound)
}
