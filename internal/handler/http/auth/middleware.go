package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"wikinotes/internal/handler/http/respond"
	"wikinotes/internal/observability/logging"
	authservice "wikinotes/internal/service/auth"
)

type ctxKey string

const ctxPrincipal ctxKey = "principal"

var (
	errMissingToken = errors.New("unauthorized: missing bearer token")
	errInvalidToken = errors.New("unauthorized: invalid token")
	errExpiredToken = errors.New("unauthorized: token expired")
)

// Authz requires a valid bearer token on every non-public endpoint and puts
// the token's Principal in the request context.
func Authz(tokens *authservice.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsPublicEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			principal, err := verify(tokens, r.Header.Get("Authorization"))
			RecordAuthzCheckDuration(time.Since(start).Seconds())
			if err != nil {
				reason := "invalid"
				switch {
				case errors.Is(err, errMissingToken):
					reason = "missing"
				case errors.Is(err, errExpiredToken):
					reason = "expired"
				}
				RecordRejectedToken(reason)
				logging.WithRequestID(r.Context(), logging.FromContext(r.Context())).Debug("request rejected",
					"path", r.URL.Path, "reason", reason)
				respond.SafeError(w, r, http.StatusUnauthorized, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

func verify(tokens *authservice.TokenService, header string) (authservice.Principal, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return authservice.Principal{}, errMissingToken
	}
	p, err := tokens.Parse(strings.TrimSpace(strings.TrimPrefix(header, prefix)))
	if errors.Is(err, authservice.ErrTokenExpired) {
		return authservice.Principal{}, errExpiredToken
	}
	if err != nil {
		return authservice.Principal{}, errInvalidToken
	}
	return p, nil
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p authservice.Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipal, p)
}

// PrincipalFrom returns the authenticated principal, if any.
func PrincipalFrom(ctx context.Context) (authservice.Principal, bool) {
	p, ok := ctx.Value(ctxPrincipal).(authservice.Principal)
	return p, ok
}

// UserID returns the authenticated user's ID.
func UserID(ctx context.Context) (int64, bool) {
	p, ok := PrincipalFrom(ctx)
	if !ok || p.UserID <= 0 {
		return 0, false
	}
	return p.UserID, true
}

// RequireUser writes 401 and returns false when the request carries no
// authenticated user.
func RequireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := UserID(r.Context())
	if !ok {
		respond.SafeError(w, r, http.StatusUnauthorized, errors.New("unauthorized"))
		return 0, false
	}
	return id, true
}
