// Package respond writes JSON responses and error bodies that never expose
// internal error text.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"wikinotes/internal/domain/entity"
	"wikinotes/internal/observability/logging"
)

// JSON writes v with the given status. A nil v sends headers only.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// safeFragments mark messages that are written for end users.
var safeFragments = []string{
	"required",
	"invalid",
	"not found",
	"already",
	"must",
	"cannot",
	"too long",
	"forbidden",
	"credentials",
	"unauthorized",
}

func isSafe(msg string) bool {
	lower := strings.ToLower(msg)
	for _, safe := range safeFragments {
		if strings.Contains(lower, safe) {
			return true
		}
	}
	return false
}

// SafeError writes err as {"error": ...}. A ValidationError also carries its
// field, and other 4xx messages pass through when they read as user-facing.
// Anything else is logged with credentials masked, and the client sees the
// status text ("internal server error" for 5xx).
func SafeError(w http.ResponseWriter, r *http.Request, code int, err error) {
	if err == nil {
		return
	}

	if code < 500 {
		var ve *entity.ValidationError
		if errors.As(err, &ve) {
			JSON(w, code, map[string]string{"error": ve.Error(), "field": ve.Field})
			return
		}
		if isSafe(err.Error()) {
			JSON(w, code, map[string]string{"error": err.Error()})
			return
		}
	}

	logger := logging.WithRequestID(r.Context(), logging.FromContext(r.Context()))
	logger.Error("internal server error",
		slog.String("status", http.StatusText(code)),
		slog.Int("code", code),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", SanitizeError(err)))

	msg := "internal server error"
	if code < 500 {
		msg = strings.ToLower(http.StatusText(code))
	}
	JSON(w, code, map[string]string{"error": msg})
}
