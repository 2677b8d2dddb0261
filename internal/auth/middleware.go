package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pdt-ict/portal/internal/platform/httpx"
	"github.com/pdt-ict/portal/internal/shared"
)

const maxBodyBytes = 1 << 20

// RequireBearer verifies the Authorization bearer token and attaches the identity
// to the request context. A missing or malformed header answers 401; a token that
// fails verification answers 403.
func RequireBearer(tokens *TokenService, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				httpx.Fail(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			claims, err := tokens.Verify(raw)
			if err != nil {
				logger.Debug("bearer token rejected", slog.String("path", r.URL.Path), slog.Any("error", err))
				httpx.Fail(w, http.StatusForbidden, "Invalid or expired token")
				return
			}
			ctx := shared.ContextWithIdentity(r.Context(), shared.Identity{UserID: claims.UserID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// SanitizeBody rewrites JSON object bodies so every top-level string field is
// passed through Sanitize before handlers decode it. Other bodies pass untouched.
func SanitizeBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body == nil || r.Body == http.NoBody || !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			next.ServeHTTP(w, r)
			return
		}
		raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err == nil && fields != nil {
			SanitizeFields(fields)
			if clean, err := json.Marshal(fields); err == nil {
				raw = clean
			}
		}
		r.Body = io.NopCloser(bytes.NewReader(raw))
		r.ContentLength = int64(len(raw))
		next.ServeHTTP(w, r)
	})
}
