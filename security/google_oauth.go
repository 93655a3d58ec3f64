package security

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// CalendarScopes covers event read/write on the user's calendars.
var CalendarScopes = []string{
	calendar.CalendarScope,
	calendar.CalendarEventsScope,
}

// ErrNoRefreshToken is returned when the provider's token response omits a
// refresh token. Google only issues one on forced re-consent; AuthCodeURL
// always forces consent so this should not happen in practice.
var ErrNoRefreshToken = errors.New("no refresh token received")

// ErrNotAuthenticated is returned when no token is on file for a principal.
var ErrNotAuthenticated = errors.New("user not authenticated")

// GoogleCalendarClient owns the OAuth2 lifecycle for Google Calendar access:
// consent URL construction, authorization-code exchange, token persistence,
// and building authenticated calendar services per principal.
type GoogleCalendarClient struct {
	config *oauth2.Config
	tokens TokenRepository
}

// NewGoogleCalendarClient creates a client for the given OAuth2 application
// credentials, persisting tokens through the injected repository.
func NewGoogleCalendarClient(clientID, clientSecret, redirectURL string, tokens TokenRepository) *GoogleCalendarClient {
	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       CalendarScopes,
		Endpoint:     google.Endpoint,
	}
	return &GoogleCalendarClient{config: config, tokens: tokens}
}

// AuthCodeURL builds the consent URL. Offline access plus forced approval so
// Google issues a refresh token even when the user has consented before.
func (c *GoogleCalendarClient) AuthCodeURL() string {
	return c.config.AuthCodeURL("", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for tokens at the provider's token
// endpoint. Fails with ErrNoRefreshToken when the response omits one.
func (c *GoogleCalendarClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}
	if token.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}
	return token, nil
}

// StoreToken upserts the token record for a principal, replacing any
// previously stored refresh token.
func (c *GoogleCalendarClient) StoreToken(ctx context.Context, principalID string, token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("token cannot be nil")
	}

	rec := TokenRecord{
		UserID:       principalID,
		RefreshToken: token.RefreshToken,
		AccessToken:  token.AccessToken,
	}
	if !token.Expiry.IsZero() {
		rec.ExpiryDate = token.Expiry.UnixMilli()
	}

	if err := c.tokens.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	log.Printf("Stored refresh token for principal %s", principalID)
	return nil
}

// CalendarService loads the stored refresh token for a principal and returns
// an authenticated Calendar service. The oauth2 transport refreshes the
// access token on demand. Returns ErrNotAuthenticated when no token is on
// file, so callers report "not authenticated" instead of a hard failure.
func (c *GoogleCalendarClient) CalendarService(ctx context.Context, principalID string) (*calendar.Service, error) {
	rec, err := c.tokens.Get(ctx, principalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load token for principal %s: %w", principalID, err)
	}
	if rec == nil || rec.RefreshToken == "" {
		return nil, ErrNotAuthenticated
	}

	httpClient := c.config.Client(ctx, &oauth2.Token{RefreshToken: rec.RefreshToken})

	service, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return service, nil
}
