package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	clientCookie       = "compliance_client"
	clientCookieMaxAge = 365 * 24 * time.Hour
)

type clientIDKey struct{}

// ClientIDFromContext returns the id set by the client middleware.
func ClientIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(clientIDKey{}).(string)
	return id
}

// withClient identifies the browser by a signed cookie, issuing a fresh id
// when the cookie is missing or fails verification.
func (h *APIHandler) withClient(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID := ""
		if c, err := r.Cookie(clientCookie); err == nil {
			id, err := h.signer.VerifyClientID(c.Value)
			if err == nil {
				clientID = id
			} else {
				h.logger.WarnContext(r.Context(), "Rejected client cookie", slog.String("error", err.Error()))
			}
		}

		if clientID == "" {
			clientID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     clientCookie,
				Value:    h.signer.SignClientID(clientID),
				Path:     "/",
				MaxAge:   int(clientCookieMaxAge.Seconds()),
				HttpOnly: true,
				Secure:   r.TLS != nil,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), clientIDKey{}, clientID)
		next(w, r.WithContext(ctx))
	}
}
