package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// AdminUser is a tenant administrator as reported by the user-admin service
type AdminUser struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// UserAdminClient is a client for the user-admin service
type UserAdminClient interface {
	// GetTenantAdmins lists the admins of a tenant
	GetTenantAdmins(ctx context.Context, tenantID int64) ([]AdminUser, error)
}

// HTTPUserAdminClient implements UserAdminClient using HTTP
type HTTPUserAdminClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPUserAdminClient creates a new HTTP user-admin client
func NewHTTPUserAdminClient(baseURL string, timeout time.Duration) *HTTPUserAdminClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPUserAdminClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetTenantAdmins fetches admins of the tenant
func (c *HTTPUserAdminClient) GetTenantAdmins(ctx context.Context, tenantID int64) ([]AdminUser, error) {
	url := fmt.Sprintf("%s/api/v1/useradmin/tenantadmins?tenantId=%d", c.baseURL, tenantID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tenant admins: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user-admin service returned status %d", resp.StatusCode)
	}

	var apiResponse struct {
		Success bool        `json:"success"`
		Data    []AdminUser `json:"data"`
		Error   *apiError   `json:"error,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !apiResponse.Success {
		return nil, fmt.Errorf("user-admin service error: %s", apiResponse.Error)
	}

	return apiResponse.Data, nil
}

// NoOpUserAdminClient is used when no user-admin service is configured
type NoOpUserAdminClient struct{}

// NewNoOpUserAdminClient creates a new no-op user-admin client
func NewNoOpUserAdminClient() *NoOpUserAdminClient {
	return &NoOpUserAdminClient{}
}

// GetTenantAdmins returns no admins
func (c *NoOpUserAdminClient) GetTenantAdmins(ctx context.Context, tenantID int64) ([]AdminUser, error) {
	return nil, nil
}

// AdminEmails extracts the non-empty email addresses of admins
func AdminEmails(admins []AdminUser) []string {
	emails := make([]string, 0, len(admins))
	for _, a := range admins {
		if a.Email != "" {
			emails = append(emails, a.Email)
		}
	}
	return emails
}
