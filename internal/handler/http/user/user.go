// Package user serves the signed-in user's own account under /users/me.
package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"wikinotes/internal/domain/entity"
	"wikinotes/internal/handler/http/auth"
	"wikinotes/internal/handler/http/respond"
	"wikinotes/internal/serializer"
	userUC "wikinotes/internal/usecase/user"
)

var errInvalidBody = errors.New("invalid request body")

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	switch {
	case entity.IsValidationError(err), errors.Is(err, errInvalidBody), errors.Is(err, userUC.ErrInvalidUserID):
		code = http.StatusBadRequest
	case errors.Is(err, userUC.ErrInvalidCredentials):
		code = http.StatusUnauthorized
	case errors.Is(err, userUC.ErrUserNotFound):
		code = http.StatusNotFound
	}
	respond.SafeError(w, r, code, err)
}

// Handler serves the /users/me routes.
type Handler struct{ Svc *userUC.Service }

// Register registers the account routes on mux.
func Register(mux *http.ServeMux, svc *userUC.Service) {
	h := Handler{Svc: svc}
	mux.HandleFunc("GET /users/me", h.Profile)
	mux.HandleFunc("PATCH /users/me", h.Rename)
	mux.HandleFunc("PUT /users/me/password", h.ChangePassword)
	mux.HandleFunc("DELETE /users/me", h.Delete)
}

// Profile serves GET /users/me with the user's favorites and notes.
func (h Handler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequireUser(w, r)
	if !ok {
		return
	}
	u, err := h.Svc.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeUser(w, r, http.StatusOK, u)
}

type renameRequest struct {
	Username string `json:"username"`
}

// Rename serves PATCH /users/me.
func (h Handler) Rename(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequireUser(w, r)
	if !ok {
		return
	}
	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, errInvalidBody)
		return
	}
	u, err := h.Svc.Rename(r.Context(), userID, req.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeUser(w, r, http.StatusOK, u)
}

type passwordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword serves PUT /users/me/password. A wrong current password
// answers 401.
func (h Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequireUser(w, r)
	if !ok {
		return
	}
	var req passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, errInvalidBody)
		return
	}
	if err := h.Svc.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete serves DELETE /users/me. Notes and favorites go with the account.
func (h Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequireUser(w, r)
	if !ok {
		return
	}
	if err := h.Svc.Delete(r.Context(), userID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeUser(w http.ResponseWriter, r *http.Request, code int, u *entity.User) {
	out, err := serializer.Serialize(u)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, code, out)
}
