package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prohmpiriya/tenant-service/internal/dto"
)

// ConsultingTypeClient is a client for the consulting-type service
type ConsultingTypeClient interface {
	// GetExtendedSettings fetches the consulting-type settings of a tenant, nil when it has none
	GetExtendedSettings(ctx context.Context, tenantID int64) (*dto.ExtendedSettingsDTO, error)
	// CreateDefaultConsultingTypes provisions the default consulting types for a new tenant
	CreateDefaultConsultingTypes(ctx context.Context, tenantID int64) error
}

// HTTPConsultingTypeClient implements ConsultingTypeClient using HTTP
type HTTPConsultingTypeClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPConsultingTypeClient creates a new HTTP consulting-type client
func NewHTTPConsultingTypeClient(baseURL string, timeout time.Duration) *HTTPConsultingTypeClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPConsultingTypeClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetExtendedSettings fetches the tenant's consulting-type settings
func (c *HTTPConsultingTypeClient) GetExtendedSettings(ctx context.Context, tenantID int64) (*dto.ExtendedSettingsDTO, error) {
	url := fmt.Sprintf("%s/api/v1/consultingtypes/tenant/%d/settings", c.baseURL, tenantID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch extended settings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("consulting-type service returned status %d", resp.StatusCode)
	}

	var apiResponse struct {
		Success bool                     `json:"success"`
		Data    *dto.ExtendedSettingsDTO `json:"data"`
		Error   *apiError                `json:"error,omitempty"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !apiResponse.Success {
		return nil, fmt.Errorf("consulting-type service error: %s", apiResponse.Error)
	}

	return apiResponse.Data, nil
}

// CreateDefaultConsultingTypes asks the consulting-type service to provision defaults
func (c *HTTPConsultingTypeClient) CreateDefaultConsultingTypes(ctx context.Context, tenantID int64) error {
	url := fmt.Sprintf("%s/api/v1/consultingtypes/tenant/%d/defaults", c.baseURL, tenantID)

	body, err := json.Marshal(map[string]int64{"tenantId": tenantID})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to create default consulting types: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("consulting-type service returned status %d", resp.StatusCode)
	}
	return nil
}

// NoOpConsultingTypeClient is used when no consulting-type service is configured
type NoOpConsultingTypeClient struct{}

// NewNoOpConsultingTypeClient creates a new no-op consulting-type client
func NewNoOpConsultingTypeClient() *NoOpConsultingTypeClient {
	return &NoOpConsultingTypeClient{}
}

// GetExtendedSettings returns nil (no enrichment)
func (c *NoOpConsultingTypeClient) GetExtendedSettings(ctx context.Context, tenantID int64) (*dto.ExtendedSettingsDTO, error) {
	return nil, nil
}

func (c *NoOpConsultingTypeClient) CreateDefaultConsultingTypes(ctx context.Context, tenantID int64) error {
	return nil
}

// apiError mirrors the error object of the shared response envelope
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) String() string {
	if e == nil {
		return "unknown error"
	}
	return e.Code + ": " + e.Message
}
