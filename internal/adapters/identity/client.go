package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"sponsorhub/internal/domain"
)

// apiClient talks to the identity provider's management API. Session
// decoding happens locally; the API is only needed for refresh, revocation,
// and metadata patches.
type apiClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func newAPIClient(baseURL, apiKey string, client *http.Client) *apiClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &apiClient{baseURL: baseURL, apiKey: apiKey, client: client}
}

type refreshResponse struct {
	Token string `json:"token"`
}

// RefreshSession exchanges a near-expiry session token for a fresh one.
func (c *apiClient) RefreshSession(ctx context.Context, token string) (string, error) {
	body := map[string]string{"token": token}
	var out refreshResponse
	if err := c.do(ctx, http.MethodPost, "/v1/sessions/refresh", body, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// RevokeSession invalidates the session server-side.
func (c *apiClient) RevokeSession(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/v1/sessions/revoke", map[string]string{"token": token}, nil)
}

// PatchMetadata merges the given fields into the identity's metadata.
func (c *apiClient) PatchMetadata(ctx context.Context, identityID string, patch map[string]any) error {
	path := fmt.Sprintf("/v1/identities/%s/metadata", identityID)
	return c.do(ctx, http.MethodPatch, path, patch, nil)
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: identity provider returned 404", domain.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("identity provider returned status: %d", resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode identity provider response: %w", err)
		}
	}
	return nil
}
