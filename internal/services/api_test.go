package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/cineflix/internal/models"
	"github.com/desertthunder/cineflix/internal/shared"
	tu "github.com/desertthunder/cineflix/internal/testing"
)

func TestAPIClient(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			c := NewAPIClient("http://example.com/", customClient)

			if c.baseURL != "http://example.com" {
				t.Errorf("expected trimmed baseURL, got %s", c.baseURL)
			}
			if c.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Defaults", func(t *testing.T) {
			c := NewAPIClient("", nil)

			if c.baseURL != defaultAPIURL {
				t.Errorf("expected default baseURL %s, got %s", defaultAPIURL, c.baseURL)
			}
			if c.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})
	})

	t.Run("Raw Requests", func(t *testing.T) {
		t.Run("Get With JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet || r.URL.Path != "/api/health" {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				w.Header().Set("X-Test", "yes")
				json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
			}))
			defer server.Close()

			resp, err := NewAPIClient(server.URL, nil).Get(context.Background(), "/api/health")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.IsJSON || resp.JSONData == nil {
				t.Error("expected JSON response")
			}
			if resp.Headers.Get("X-Test") != "yes" {
				t.Error("expected headers to be preserved")
			}
		})

		t.Run("Post Sends JSON", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Content-Type") != "application/json" {
					t.Errorf("expected JSON content type, got %s", r.Header.Get("Content-Type"))
				}
				body, _ := io.ReadAll(r.Body)
				w.Write(body)
			}))
			defer server.Close()

			resp, err := NewAPIClient(server.URL, nil).Post(context.Background(), "/echo", []byte(`{"a":1}`))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if string(resp.Body) != `{"a":1}` {
				t.Errorf("expected echoed body, got %s", resp.Body)
			}
		})

		t.Run("Non-JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("plain text"))
			}))
			defer server.Close()

			resp, err := NewAPIClient(server.URL, nil).Get(context.Background(), "/")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON {
				t.Error("expected non-JSON response")
			}
		})

		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed"))}
			_, err := NewAPIClient("http://example.com", client).Get(context.Background(), "/")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(&http.Response{
				StatusCode: http.StatusOK,
				Body:       &tu.FCloser{},
				Header:     make(http.Header),
			}, nil)}

			_, err := NewAPIClient("http://example.com", client).Get(context.Background(), "/")
			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected read error, got %v", err)
			}
		})

		t.Run("Failed Request Creation", func(t *testing.T) {
			_, err := NewAPIClient("http://[::1]:namedport", nil).Get(context.Background(), "/")
			if err == nil || !strings.Contains(err.Error(), "failed to create request") {
				t.Errorf("expected request creation error, got %v", err)
			}
		})
	})

	t.Run("Typed Calls", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			if r.Body != nil {
				json.NewDecoder(r.Body).Decode(&body)
			}

			switch r.URL.Path {
			case "/api/auth/login":
				if body["password"] != "right" {
					w.WriteHeader(http.StatusUnauthorized)
					json.NewEncoder(w).Encode(models.Response{Message: "Invalid credentials"})
					return
				}
				json.NewEncoder(w).Encode(models.Response{Success: true, User: &models.User{ID: 1, Email: "demo@cineflix.com"}})
			case "/api/auth/signup":
				w.WriteHeader(http.StatusCreated)
				json.NewEncoder(w).Encode(models.Response{Success: true, User: &models.User{ID: 100, Email: body["email"].(string)}})
			case "/api/subscription/plans":
				json.NewEncoder(w).Encode(models.Response{Success: true, Plans: []models.Plan{{ID: 1}, {ID: 2}}})
			case "/api/subscription/subscribe":
				json.NewEncoder(w).Encode(models.Response{Success: true, User: &models.User{
					ID:           int(body["userId"].(float64)),
					Subscription: &models.Subscription{PlanID: int(body["planId"].(float64)), Status: models.SubscriptionActive},
				}})
			case "/api/health":
				json.NewEncoder(w).Encode(models.Response{Success: true})
			default:
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte("not found"))
			}
		}))
		defer server.Close()

		ctx := context.Background()
		c := NewAPIClient(server.URL, nil)

		if err := c.Health(ctx); err != nil {
			t.Errorf("Health() error = %v", err)
		}

		user, err := c.Login(ctx, "demo@cineflix.com", "right")
		if err != nil || user.ID != 1 {
			t.Errorf("Login() = %+v, %v", user, err)
		}

		_, err = c.Login(ctx, "demo@cineflix.com", "wrong")
		if !errors.Is(err, shared.ErrAPIRequest) || !strings.Contains(err.Error(), "Invalid credentials") {
			t.Errorf("expected server message in error, got %v", err)
		}

		if user, err := c.Signup(ctx, "new@example.com", "secret", ""); err != nil || user.ID != 100 {
			t.Errorf("Signup() = %+v, %v", user, err)
		}

		if plans, err := c.Plans(ctx); err != nil || len(plans) != 2 {
			t.Errorf("Plans() = %v, %v", plans, err)
		}

		user, err = c.Subscribe(ctx, 2, 3, "upi")
		if err != nil || !user.Subscription.Active() || user.Subscription.PlanID != 3 {
			t.Errorf("Subscribe() = %+v, %v", user, err)
		}

		if _, err := c.call(ctx, http.MethodGet, "/missing", nil); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest for undecodable body, got %v", err)
		}
	})
}
