package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/civicsignal/petitiond/internal/domain"
)

// IdentityClient exchanges authorization codes at the identity provider and
// fetches the profile the assertion vouches for. The provider is an opaque
// identity source; nothing here inspects its tokens beyond carrying them.
type IdentityClient struct {
	issuerBaseURL string
	clientID      string
	clientSecret  string
	redirectURI   string
	client        *http.Client
	log           *slog.Logger
}

func NewIdentityClient(issuerBaseURL, clientID, clientSecret, redirectURI string, logger *slog.Logger) *IdentityClient {
	return &IdentityClient{
		issuerBaseURL: strings.TrimSuffix(issuerBaseURL, "/"),
		clientID:      clientID,
		clientSecret:  clientSecret,
		redirectURI:   redirectURI,
		client:        &http.Client{Timeout: 10 * time.Second},
		log:           logger.With(slog.String("gateway", "identity")),
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type userinfoResponse struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// ExchangeCode turns an authorization code into an identity assertion.
func (c *IdentityClient) ExchangeCode(ctx context.Context, code string) (domain.IdentityAssertion, error) {
	accessToken, err := c.exchange(ctx, code)
	if err != nil {
		return domain.IdentityAssertion{}, err
	}

	profile, err := c.userinfo(ctx, accessToken)
	if err != nil {
		return domain.IdentityAssertion{}, err
	}

	assertion := domain.IdentityAssertion{
		Subject: profile.Sub,
		Email:   profile.Email,
		Name:    profile.Name,
	}
	if profile.Picture != "" {
		assertion.Picture = &profile.Picture
	}
	return assertion, nil
}

func (c *IdentityClient) exchange(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("redirect_uri", c.redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.issuerBaseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "token exchange failed", slog.String("error", err.Error()))
		return "", domain.DependencyError{Op: "identity token exchange", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.DependencyError{Op: "identity token exchange", Err: err}
	}

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		// invalid or expired code
		return "", domain.ErrAuthenticationRequired
	}
	if resp.StatusCode != http.StatusOK {
		c.log.ErrorContext(ctx, "token exchange returned non-200", slog.Int("status", resp.StatusCode))
		return "", domain.DependencyError{Op: "identity token exchange", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil || token.AccessToken == "" {
		return "", domain.DependencyError{Op: "identity token exchange", Err: fmt.Errorf("malformed token response")}
	}
	return token.AccessToken, nil
}

func (c *IdentityClient) userinfo(ctx context.Context, accessToken string) (userinfoResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.issuerBaseURL+"/userinfo", nil)
	if err != nil {
		return userinfoResponse{}, fmt.Errorf("failed to create userinfo request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "userinfo fetch failed", slog.String("error", err.Error()))
		return userinfoResponse{}, domain.DependencyError{Op: "identity userinfo", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.ErrorContext(ctx, "userinfo returned non-200", slog.Int("status", resp.StatusCode))
		return userinfoResponse{}, domain.DependencyError{Op: "identity userinfo", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var profile userinfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return userinfoResponse{}, domain.DependencyError{Op: "identity userinfo", Err: err}
	}
	if profile.Sub == "" || profile.Email == "" {
		return userinfoResponse{}, domain.DependencyError{Op: "identity userinfo", Err: fmt.Errorf("missing required fields")}
	}
	return profile, nil
}
