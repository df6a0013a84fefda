// Client for a running cineflix HTTP API
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/cineflix/internal/models"
	"github.com/desertthunder/cineflix/internal/shared"
)

const defaultAPIURL = "http://127.0.0.1:5001"

// APIClient calls the endpoints served by `cineflix serve`.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a client for the API at baseURL.
func NewAPIClient(baseURL string, client *http.Client) *APIClient {
	if baseURL == "" {
		baseURL = defaultAPIURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIClient) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIClient) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.do(ctx, http.MethodPost, path, data)
}

// Health reports whether the server answered its health check.
func (a *APIClient) Health(ctx context.Context) error {
	_, err := a.call(ctx, http.MethodGet, "/api/health", nil)
	return err
}

// Login posts credentials and returns the authenticated user.
func (a *APIClient) Login(ctx context.Context, email, password string) (*models.User, error) {
	resp, err := a.call(ctx, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Signup registers an account and returns the new user.
func (a *APIClient) Signup(ctx context.Context, email, password, name string) (*models.User, error) {
	body := map[string]string{"email": email, "password": password, "name": name}
	resp, err := a.call(ctx, http.MethodPost, "/api/auth/signup", body)
	if err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Plans lists subscription plans.
func (a *APIClient) Plans(ctx context.Context) ([]models.Plan, error) {
	resp, err := a.call(ctx, http.MethodGet, "/api/subscription/plans", nil)
	if err != nil {
		return nil, err
	}
	return resp.Plans, nil
}

// Subscribe puts userID on planID and returns the updated user.
func (a *APIClient) Subscribe(ctx context.Context, userID, planID int, method string) (*models.User, error) {
	body := map[string]any{"userId": userID, "planId": planID, "paymentMethod": method}
	resp, err := a.call(ctx, http.MethodPost, "/api/subscription/subscribe", body)
	if err != nil {
		return nil, err
	}
	return resp.User, nil
}

// call sends body as JSON and decodes the response envelope. Unsuccessful envelopes and
// non-2xx statuses become [shared.ErrAPIRequest] carrying the server's message.
func (a *APIClient) call(ctx context.Context, method, path string, body any) (*models.Response, error) {
	var data []byte
	if body != nil {
		var err error
		if data, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
	}

	raw, err := a.do(ctx, method, path, data)
	if err != nil {
		return nil, err
	}

	var resp models.Response
	if err := json.Unmarshal(raw.Body, &resp); err != nil {
		return nil, fmt.Errorf("%w: status %d: undecodable body", shared.ErrAPIRequest, raw.StatusCode)
	}
	if raw.StatusCode < 200 || raw.StatusCode >= 300 || !resp.Success {
		return nil, fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, raw.StatusCode, resp.Message)
	}
	return &resp, nil
}

func (a *APIClient) do(ctx context.Context, method, path string, data []byte) (*APIResponse, error) {
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
	}

	var jsonData any
	if err := json.Unmarshal(respBody, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}
