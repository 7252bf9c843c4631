package api

import (
	"compliance_checker/internal/domain"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

type SendOTPRequest struct {
	Method      domain.ContactMethod `json:"method"`
	Destination string               `json:"destination"`
}

type VerifyOTPRequest struct {
	Code string `json:"code"`
}

type SessionResponse struct {
	State         domain.SessionState `json:"state"`
	Authenticated bool                `json:"authenticated"`
}

func (h *APIHandler) SendOTPHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	var req SendOTPRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.sendError(w, "Invalid request body", http.StatusBadRequest, "INVALID_REQUEST")
		return
	}

	sent, err := h.otp.SendOTP(ctx, ClientIDFromContext(ctx), req.Method, req.Destination)
	if err != nil {
		h.sendFailure(w, err)
		return
	}
	h.sendJSON(w, sent, http.StatusAccepted)
}

func (h *APIHandler) ResendOTPHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	sent, err := h.otp.ResendOTP(ctx, ClientIDFromContext(ctx))
	if err != nil {
		h.sendFailure(w, err)
		return
	}
	h.sendJSON(w, sent, http.StatusAccepted)
}

func (h *APIHandler) VerifyOTPHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	var req VerifyOTPRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.sendError(w, "Invalid request body", http.StatusBadRequest, "INVALID_REQUEST")
		return
	}

	clientID := ClientIDFromContext(ctx)
	if err := h.otp.VerifyOTP(ctx, clientID, req.Code); err != nil {
		h.sendFailure(w, err)
		return
	}

	h.logger.InfoContext(ctx, "Client logged in", slog.String("client_id", clientID))
	h.sendSession(ctx, w)
}

func (h *APIHandler) SkipHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	if err := h.otp.Skip(ctx, ClientIDFromContext(ctx)); err != nil {
		h.sendFailure(w, err)
		return
	}
	h.sendSession(ctx, w)
}

func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	if err := h.otp.Logout(ctx, ClientIDFromContext(ctx)); err != nil {
		h.sendFailure(w, err)
		return
	}
	h.sendSession(ctx, w)
}

func (h *APIHandler) SessionHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	h.sendSession(ctx, w)
}

func (h *APIHandler) sendSession(ctx context.Context, w http.ResponseWriter) {
	state, err := h.otp.Status(ctx, ClientIDFromContext(ctx))
	if err != nil {
		h.sendFailure(w, err)
		return
	}
	h.sendJSON(w, SessionResponse{State: state, Authenticated: state.Authenticated()}, http.StatusOK)
}
