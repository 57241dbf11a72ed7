package meli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/comparaprecios/backend/internal/domain"
)

const (
	defaultAuthURL  = "https://auth.mercadolibre.com.co/authorization"
	defaultTokenURL = "https://api.mercadolibre.com/oauth/token"

	// refreshSkew: refresh this long before the token actually expires.
	refreshSkew = 60 * time.Second

	defaultExpiresIn = 21600 // seconds, MercadoLibre's usual token lifetime
)

// AuthConfig holds the OAuth application credentials.
type AuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// AuthClient drives the MercadoLibre authorization-code flow and keeps the
// stored token fresh.
type AuthClient struct {
	config     AuthConfig
	store      domain.TokenStore
	httpClient *http.Client
	authURL    string
	tokenURL   string
}

// NewAuthClient creates an OAuth client backed by the given token store.
func NewAuthClient(config AuthConfig, store domain.TokenStore) *AuthClient {
	return &AuthClient{
		config:     config,
		store:      store,
		httpClient: &http.Client{Timeout: 12 * time.Second},
		authURL:    defaultAuthURL,
		tokenURL:   defaultTokenURL,
	}
}

// NewAuthClientWithEndpoints allows pointing the client at test servers.
func NewAuthClientWithEndpoints(config AuthConfig, store domain.TokenStore, authURL, tokenURL string) *AuthClient {
	client := NewAuthClient(config, store)
	client.authURL = authURL
	client.tokenURL = tokenURL
	return client
}

// Configured reports whether the OAuth application credentials are present.
func (c *AuthClient) Configured() bool {
	return c.config.ClientID != "" && c.config.RedirectURI != ""
}

// AuthorizationURL returns the MercadoLibre consent page URL for this app.
func (c *AuthClient) AuthorizationURL() string {
	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", c.config.ClientID)
	params.Set("redirect_uri", c.config.RedirectURI)
	return fmt.Sprintf("%s?%s", c.authURL, params.Encode())
}

// Exchange trades an authorization code for a token and persists it.
func (c *AuthClient) Exchange(ctx context.Context, code string) error {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", c.config.ClientID)
	form.Set("client_secret", c.config.ClientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", c.config.RedirectURI)

	token, err := c.requestToken(ctx, form, "")
	if err != nil {
		return err
	}
	return c.store.Save(token)
}

// AccessToken returns a valid access token, refreshing through the stored
// refresh token when the current one is expired or about to expire.
func (c *AuthClient) AccessToken(ctx context.Context) (string, error) {
	token, err := c.store.Load()
	if err != nil {
		return "", err
	}

	if token.AccessToken != "" && time.Now().Before(token.ExpiresAt.Add(-refreshSkew)) {
		return token.AccessToken, nil
	}

	if token.RefreshToken == "" {
		return "", domain.ErrTokenUnavailable
	}

	log.Printf("[MELI] access token expired, refreshing")

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", c.config.ClientID)
	form.Set("client_secret", c.config.ClientSecret)
	form.Set("refresh_token", token.RefreshToken)

	refreshed, err := c.requestToken(ctx, form, token.RefreshToken)
	if err != nil {
		return "", err
	}
	if err := c.store.Save(refreshed); err != nil {
		return "", err
	}
	return refreshed.AccessToken, nil
}

// tokenResponse is the wire format of MercadoLibre's token endpoint.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// requestToken posts the form to the token endpoint. fallbackRefreshToken is
// kept when the response omits a new refresh token (refresh responses may).
func (c *AuthClient) requestToken(ctx context.Context, form url.Values, fallbackRefreshToken string) (*domain.Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: token endpoint status %d", domain.ErrTokenUnavailable, resp.StatusCode)
	}

	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenUnavailable, err)
	}
	if parsed.AccessToken == "" {
		return nil, fmt.Errorf("%w: token endpoint returned no access token", domain.ErrTokenUnavailable)
	}

	refreshToken := parsed.RefreshToken
	if refreshToken == "" {
		refreshToken = fallbackRefreshToken
	}
	expiresIn := parsed.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = defaultExpiresIn
	}

	return &domain.Token{
		AccessToken:  parsed.AccessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(expiresIn) * time.Second),
	}, nil
}
