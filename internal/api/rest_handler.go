package api

import (
	"compliance_checker/internal/auth"
	"compliance_checker/internal/domain"
	"compliance_checker/internal/processor"
	"compliance_checker/internal/repository"
	"compliance_checker/pkg/crypto"
	"compliance_checker/pkg/validator"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

var Version = "1.0.0"

const maxBodyBytes = 4 << 10

type APIHandler struct {
	checks         *processor.CheckProcessor
	otp            *auth.OTPService
	signer         *crypto.Signer
	profiles       *validator.ProfileValidator
	logger         *slog.Logger
	requestTimeout time.Duration
}

func NewAPIHandler(
	checks *processor.CheckProcessor,
	otp *auth.OTPService,
	signer *crypto.Signer,
	logger *slog.Logger,
) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &APIHandler{
		checks:         checks,
		otp:            otp,
		signer:         signer,
		profiles:       validator.NewProfileValidator(),
		logger:         logger,
		requestTimeout: 30 * time.Second,
	}
}

// WithRequestTimeout bounds every handler's context. Non-positive values keep
// the default.
func (h *APIHandler) WithRequestTimeout(d time.Duration) *APIHandler {
	if d > 0 {
		h.requestTimeout = d
	}
	return h
}

// CheckRequest carries raw numbers so that the exact input can be validated.
type CheckRequest struct {
	Turnover  json.Number `json:"turnover"`
	Employees json.Number `json:"employees"`
}

type RuleResponse struct {
	domain.ComplianceRule
	RiskLabel string `json:"risk_label"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func (h *APIHandler) RunCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	var req CheckRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.sendError(w, "Invalid request body", http.StatusBadRequest, "INVALID_REQUEST")
		return
	}

	profile, err := h.profiles.ParseProfile(req.Turnover.String(), req.Employees.String())
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest, "VALIDATION_ERROR")
		return
	}

	clientID := ClientIDFromContext(ctx)
	report, err := h.checks.RunCheck(ctx, clientID, profile)
	if err != nil {
		h.logger.ErrorContext(ctx, "Compliance check failed",
			slog.String("error", err.Error()),
			slog.String("client_id", clientID))
		h.sendFailure(w, err)
		return
	}

	h.sendJSON(w, domain.Performed(report), http.StatusOK)
}

func (h *APIHandler) LatestCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	outcome, err := h.checks.LatestCheck(ctx, ClientIDFromContext(ctx))
	if err != nil {
		h.sendFailure(w, err)
		return
	}
	h.sendJSON(w, outcome, http.StatusOK)
}

func (h *APIHandler) ListRulesHandler(w http.ResponseWriter, r *http.Request) {
	rules := h.checks.Rules()
	response := make([]RuleResponse, 0, len(rules))
	for _, rule := range rules {
		response = append(response, RuleResponse{ComplianceRule: rule, RiskLabel: rule.RiskLevel.Label()})
	}
	h.sendJSON(w, map[string]interface{}{
		"rules": response,
		"count": len(response),
	}, http.StatusOK)
}

func (h *APIHandler) GetRuleHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	match, err := h.checks.Rule(id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.sendError(w, "Compliance rule not found", http.StatusNotFound, "NOT_FOUND")
		} else {
			h.sendError(w, "Failed to get compliance rule", http.StatusInternalServerError, "SERVER_ERROR")
		}
		return
	}
	h.sendJSON(w, match, http.StatusOK)
}

func (h *APIHandler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   Version,
		"rules":     len(h.checks.Rules()),
	}
	h.sendJSON(w, response, http.StatusOK)
}

func (h *APIHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", slog.String("error", err.Error()))
	}
}

func (h *APIHandler) sendError(w http.ResponseWriter, message string, statusCode int, code string) {
	errorResponse := ErrorResponse{
		Error: message,
		Code:  code,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorResponse)

	h.logger.Warn("API error response",
		slog.String("message", message),
		slog.String("code", code),
		slog.Int("status", statusCode))
}

// sendFailure maps service errors to status codes.
func (h *APIHandler) sendFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, validator.ErrInvalidTurnover),
		errors.Is(err, validator.ErrInvalidEmployees),
		errors.Is(err, validator.ErrInvalidEmail),
		errors.Is(err, validator.ErrEmailTooLong),
		errors.Is(err, validator.ErrDisposableEmail),
		errors.Is(err, validator.ErrInvalidPhone),
		errors.Is(err, domain.ErrInvalidContact),
		errors.Is(err, auth.ErrIncompleteCode):
		h.sendError(w, rootMessage(err), http.StatusBadRequest, "VALIDATION_ERROR")
	case errors.Is(err, auth.ErrInvalidCode):
		h.sendError(w, err.Error(), http.StatusUnauthorized, "INVALID_OTP")
	case errors.Is(err, auth.ErrCodeExpired):
		h.sendError(w, err.Error(), http.StatusUnauthorized, "OTP_EXPIRED")
	case errors.Is(err, auth.ErrTooManyAttempts):
		h.sendError(w, err.Error(), http.StatusTooManyRequests, "TOO_MANY_ATTEMPTS")
	case errors.Is(err, auth.ErrRateLimited):
		h.sendError(w, err.Error(), http.StatusTooManyRequests, "RATE_LIMITED")
	case errors.Is(err, auth.ErrNoChallenge):
		h.sendError(w, err.Error(), http.StatusConflict, "NO_PENDING_OTP")
	case errors.Is(err, auth.ErrAlreadyLoggedIn):
		h.sendError(w, "Already logged in", http.StatusConflict, "ALREADY_LOGGED_IN")
	case errors.Is(err, context.DeadlineExceeded):
		h.sendError(w, "Request timed out", http.StatusGatewayTimeout, "TIMEOUT")
	default:
		h.sendError(w, "Internal server error", http.StatusInternalServerError, "SERVER_ERROR")
	}
}

// rootMessage drops wrapping prefixes so validation messages reach the user
// as written.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func (h *APIHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/compliance/check", h.withClient(h.RunCheckHandler))
	mux.HandleFunc("GET /api/v1/compliance/check/latest", h.withClient(h.LatestCheckHandler))
	mux.HandleFunc("GET /api/v1/compliance/rules", h.ListRulesHandler)
	mux.HandleFunc("GET /api/v1/compliance/rules/{id}", h.GetRuleHandler)

	mux.HandleFunc("POST /api/v1/auth/otp/send", h.withClient(h.SendOTPHandler))
	mux.HandleFunc("POST /api/v1/auth/otp/resend", h.withClient(h.ResendOTPHandler))
	mux.HandleFunc("POST /api/v1/auth/otp/verify", h.withClient(h.VerifyOTPHandler))
	mux.HandleFunc("POST /api/v1/auth/skip", h.withClient(h.SkipHandler))
	mux.HandleFunc("POST /api/v1/auth/logout", h.withClient(h.LogoutHandler))
	mux.HandleFunc("GET /api/v1/auth/session", h.withClient(h.SessionHandler))

	mux.HandleFunc("GET /api/health", h.HealthCheckHandler)
}
