package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"wikinotes/internal/domain/entity"
	"wikinotes/internal/handler/http/respond"
	"wikinotes/internal/observability/logging"
	"wikinotes/internal/serializer"
	authservice "wikinotes/internal/service/auth"
	userUC "wikinotes/internal/usecase/user"
)

var errInvalidBody = errors.New("invalid request body")

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      map[string]any `json:"user"`
}

// Handler serves the registration and login endpoints.
type Handler struct {
	Users  *userUC.Service
	Tokens *authservice.TokenService
}

// Register creates an account and logs it in.
// POST /auth/register → 201 {token, expires_at, user}
func (h Handler) Register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := logging.WithRequestID(r.Context(), logging.FromContext(r.Context()))

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, "register", start, http.StatusBadRequest, errInvalidBody)
		return
	}

	u, err := h.Users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		code := http.StatusInternalServerError
		if entity.IsValidationError(err) {
			code = http.StatusBadRequest
		}
		logger.Info("registration rejected", slog.String("reason", reason(err)))
		h.fail(w, r, "register", start, code, err)
		return
	}

	h.issue(w, r, "register", start, http.StatusCreated, u)
}

// Login exchanges credentials for a session token.
// POST /auth/login → 200 {token, expires_at, user}
func (h Handler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := logging.WithRequestID(r.Context(), logging.FromContext(r.Context()))

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, "login", start, http.StatusBadRequest, errInvalidBody)
		return
	}

	u, err := h.Users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, userUC.ErrInvalidCredentials):
			code = http.StatusUnauthorized
		case entity.IsValidationError(err):
			code = http.StatusBadRequest
		}
		logger.Warn("login failed", slog.String("reason", reason(err)))
		h.fail(w, r, "login", start, code, err)
		return
	}

	h.issue(w, r, "login", start, http.StatusOK, u)
}

func (h Handler) issue(w http.ResponseWriter, r *http.Request, endpoint string, start time.Time, code int, u *entity.User) {
	token, exp, err := h.Tokens.Issue(u.ID, u.Username)
	if err != nil {
		h.fail(w, r, endpoint, start, http.StatusInternalServerError, err)
		return
	}
	body, err := serializer.Serialize(u)
	if err != nil {
		h.fail(w, r, endpoint, start, http.StatusInternalServerError, err)
		return
	}

	RecordAuthRequest(endpoint, "success")
	RecordAuthDuration(endpoint, time.Since(start).Seconds())
	logging.WithRequestID(r.Context(), logging.FromContext(r.Context())).Info("token issued",
		slog.String("endpoint", endpoint),
		slog.Int64("user_id", u.ID),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))

	respond.JSON(w, code, tokenResponse{Token: token, ExpiresAt: exp, User: body})
}

func (h Handler) fail(w http.ResponseWriter, r *http.Request, endpoint string, start time.Time, code int, err error) {
	RecordAuthRequest(endpoint, "failure")
	RecordAuthDuration(endpoint, time.Since(start).Seconds())
	respond.SafeError(w, r, code, err)
}

// reason classifies a failure for logs without echoing user input.
func reason(err error) string {
	var ve *entity.ValidationError
	switch {
	case errors.As(err, &ve):
		return "invalid_" + ve.Field
	case errors.Is(err, userUC.ErrInvalidCredentials):
		return "invalid_credentials"
	default:
		return "internal"
	}
}
