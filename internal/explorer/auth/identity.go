package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/marsha5813/crge-historical-database/internal/common/explorererrors"
	"github.com/marsha5813/crge-historical-database/internal/explorer/configuration"
)

const maxResponseBodySize = 64 * 1024

// IdentityClient signs users in against a password-grant token endpoint.
// It makes a single bounded request per attempt; the provider itself (rate
// limiting, account state, token expiry) is outside this client.
type IdentityClient struct {
	providerUrl string
	anonKey     string
	client      *http.Client
}

func NewIdentityClient(config configuration.AuthConfig) *IdentityClient {
	return &IdentityClient{
		providerUrl: strings.TrimSuffix(config.ProviderUrl, "/"),
		anonKey:     config.AnonKey,
		client:      &http.Client{Timeout: config.RequestTimeout},
	}
}

type passwordGrantRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordGrantResponse struct {
	AccessToken      string `json:"access_token"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
}

// PasswordSignIn exchanges credentials for an opaque bearer token.
func (c *IdentityClient) PasswordSignIn(ctx context.Context, email string, password string) (string, error) {
	if email == "" || password == "" {
		return "", &explorererrors.ErrMissingCredentials{Message: "email and password are required"}
	}

	body, err := json.Marshal(passwordGrantRequest{Email: email, Password: password})
	if err != nil {
		return "", err
	}

	requestUrl := c.providerUrl + "/token?grant_type=password"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestUrl, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return "", err
	}

	var grant passwordGrantResponse
	// The error path may not be JSON at all; fall back to the raw body.
	_ = json.Unmarshal(data, &grant)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := grant.ErrorDescription
		if message == "" {
			message = grant.Msg
		}
		if message == "" {
			message = strings.TrimSpace(string(data))
		}
		return "", &explorererrors.ErrInvalidCredentials{Email: email, Message: message}
	}

	if grant.AccessToken == "" {
		return "", &explorererrors.ErrInvalidCredentials{Email: email, Message: "provider returned no access token"}
	}
	return grant.AccessToken, nil
}
