// Package favorite provides the HTTP handlers for the favorite endpoints.
// Every route acts on the caller's own favorites.
package favorite

import (
	"encoding/json"
	"errors"
	"net/http"

	"wikinotes/internal/domain/entity"
	"wikinotes/internal/handler/http/auth"
	"wikinotes/internal/handler/http/pathutil"
	"wikinotes/internal/handler/http/respond"
	"wikinotes/internal/serializer"
	artUC "wikinotes/internal/usecase/article"
	favUC "wikinotes/internal/usecase/favorite"
	userUC "wikinotes/internal/usecase/user"
)

var errInvalidBody = errors.New("invalid request body")

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	switch {
	case entity.IsValidationError(err), errors.Is(err, errInvalidBody):
		code = http.StatusBadRequest
	case errors.Is(err, favUC.ErrFavoriteNotFound),
		errors.Is(err, artUC.ErrArticleNotFound),
		errors.Is(err, userUC.ErrUserNotFound):
		code = http.StatusNotFound
	case errors.Is(err, favUC.ErrDuplicateFavorite):
		code = http.StatusConflict
	case errors.Is(err, favUC.ErrForbidden):
		code = http.StatusForbidden
	}
	respond.SafeError(w, r, code, err)
}

// Handler serves the /favorites routes.
type Handler struct{ Svc *favUC.Service }

// Register registers the favorite routes on mux.
func Register(mux *http.ServeMux, svc *favUC.Service) {
	h := Handler{Svc: svc}
	mux.HandleFunc("GET /favorites", h.List)
	mux.HandleFunc("POST /favorites", h.Add)
	mux.HandleFunc("DELETE /favorites/{id}", h.Remove)
}

type addRequest struct {
	ArticleID int64 `json:"article_id"`
}

// Add serves POST /favorites.
func (h Handler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequireUser(w, r)
	if !ok {
		return
	}
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, errInvalidBody)
		return
	}

	f, err := h.Svc.Add(r.Context(), userID, req.ArticleID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := serializer.Serialize(f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, out)
}

// Remove serves DELETE /favorites/{id}.
func (h Handler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequireUser(w, r)
	if !ok {
		return
	}
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		writeError(w, r, favUC.ErrFavoriteNotFound)
		return
	}
	if err := h.Svc.Remove(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List serves GET /favorites with each favorite's article expanded.
func (h Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequireUser(w, r)
	if !ok {
		return
	}
	favs, err := h.Svc.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := serializer.SerializeList(nil, favs, "-user")
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}
