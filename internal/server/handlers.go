package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cineflix/internal/accounts"
	"github.com/desertthunder/cineflix/internal/models"
	"github.com/desertthunder/cineflix/internal/shared"
)

const maxBodyBytes = 1 << 20

// AuthHandler serves login and signup.
type AuthHandler struct {
	accounts *accounts.Service
	logger   *log.Logger
}

// NewAuthHandler creates an [AuthHandler].
func NewAuthHandler(svc *accounts.Service, logger *log.Logger) *AuthHandler {
	return &AuthHandler{accounts: svc, logger: logger}
}

func (h *AuthHandler) Routes() []string {
	return []string{"/api/auth/login", "/api/auth/signup"}
}

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	switch r.URL.Path {
	case "/api/auth/login":
		var req accounts.LoginRequest
		if !decode(w, r, &req) {
			return
		}
		user, err := h.accounts.Login(r.Context(), req)
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, models.Response{Success: true, Message: "Login successful", User: user})
	case "/api/auth/signup":
		var req accounts.SignupRequest
		if !decode(w, r, &req) {
			return
		}
		user, err := h.accounts.Signup(r.Context(), req)
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, models.Response{Success: true, Message: "Account created successfully", User: user})
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *AuthHandler) fail(w http.ResponseWriter, err error) {
	failure(w, h.logger, err)
}

// SubscriptionHandler serves the plan catalog and subscribe endpoint.
type SubscriptionHandler struct {
	accounts *accounts.Service
	logger   *log.Logger
}

// NewSubscriptionHandler creates a [SubscriptionHandler].
func NewSubscriptionHandler(svc *accounts.Service, logger *log.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{accounts: svc, logger: logger}
}

func (h *SubscriptionHandler) Routes() []string {
	return []string{"/api/subscription/plans", "/api/subscription/subscribe"}
}

func (h *SubscriptionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/subscription/plans":
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		writeJSON(w, http.StatusOK, models.Response{Success: true, Plans: accounts.Plans()})
	case "/api/subscription/subscribe":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		var req accounts.SubscribeRequest
		if !decode(w, r, &req) {
			return
		}
		res, err := h.accounts.Subscribe(r.Context(), req)
		if err != nil {
			failure(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, models.Response{
			Success:      true,
			Message:      "Subscription activated successfully",
			User:         res.User,
			Subscription: res.Subscription,
		})
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

// Health answers liveness probes.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.Response{Success: true, Message: "ok"})
}

// NewRouter builds the API router with logging, recovery and CORS middleware.
func NewRouter(svc *accounts.Service, origin string, logger *log.Logger) *BasicRouter {
	if logger == nil {
		logger = shared.NopLogger()
	}

	r := NewBasicRouter()
	r.Use(Logging(logger), Recover(logger), CORS(origin))
	r.Handle(http.MethodGet, "/api/health", http.HandlerFunc(Health))
	r.Handler(NewAuthHandler(svc, logger))
	r.Handler(NewSubscriptionHandler(svc, logger))
	return r
}

// statusFor maps service errors onto HTTP statuses and client-safe messages.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, shared.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, shared.ErrInvalidLogin):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, shared.ErrUserExists):
		return http.StatusConflict, "User with this email already exists"
	case errors.Is(err, shared.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, shared.ErrPlanNotFound):
		return http.StatusNotFound, "Plan not found"
	case errors.Is(err, shared.ErrPaymentFailed):
		return http.StatusBadRequest, "Payment processing failed"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func failure(w http.ResponseWriter, logger *log.Logger, err error) {
	status, message := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
	}
	writeError(w, status, message)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.Response{Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
