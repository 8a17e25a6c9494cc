// Package note provides the HTTP handlers for the note endpoints. Notes are
// readable by any signed-in user and writable by their author only.
package note

import (
	"encoding/json"
	"errors"
	"net/http"

	"wikinotes/internal/domain/entity"
	"wikinotes/internal/handler/http/auth"
	"wikinotes/internal/handler/http/pathutil"
	"wikinotes/internal/handler/http/respond"
	"wikinotes/internal/infra/markdown"
	"wikinotes/internal/serializer"
	artUC "wikinotes/internal/usecase/article"
	noteUC "wikinotes/internal/usecase/note"
	userUC "wikinotes/internal/usecase/user"
)

var errInvalidBody = errors.New("invalid request body")

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	switch {
	case entity.IsValidationError(err),
		errors.Is(err, noteUC.ErrInvalidNoteID),
		errors.Is(err, artUC.ErrInvalidArticleID),
		errors.Is(err, errInvalidBody):
		code = http.StatusBadRequest
	case errors.Is(err, noteUC.ErrNoteNotFound),
		errors.Is(err, artUC.ErrArticleNotFound),
		errors.Is(err, userUC.ErrUserNotFound):
		code = http.StatusNotFound
	case errors.Is(err, noteUC.ErrForbidden):
		code = http.StatusForbidden
	}
	respond.SafeError(w, r, code, err)
}

func writeNote(w http.ResponseWriter, r *http.Request, code int, n *entity.Note) {
	out, err := serializer.Serialize(n)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, code, out)
}

// Handler serves the /notes routes.
type Handler struct{ Svc *noteUC.Service }

// Register registers the note routes on mux.
func Register(mux *http.ServeMux, svc *noteUC.Service) {
	h := Handler{Svc: svc}
	mux.HandleFunc("GET /notes", h.List)
	mux.HandleFunc("POST /notes", h.Create)
	mux.HandleFunc("GET /notes/{id}", h.Get)
	mux.HandleFunc("GET /notes/{id}/html", h.RenderHTML)
	mux.HandleFunc("PUT /notes/{id}", h.Update)
	mux.HandleFunc("DELETE /notes/{id}", h.Delete)
	mux.HandleFunc("GET /articles/{id}/notes", h.ListByArticle)
}

type createRequest struct {
	ArticleID int64  `json:"article_id"`
	Title     string `json:"title"`
	Text      string `json:"text"`
}

// Create serves POST /notes. The author is the caller.
func (h Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequireUser(w, r)
	if !ok {
		return
	}
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, errInvalidBody)
		return
	}

	n, err := h.Svc.Create(r.Context(), noteUC.CreateInput{
		UserID:    userID,
		ArticleID: req.ArticleID,
		Title:     req.Title,
		Text:      req.Text,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeNote(w, r, http.StatusCreated, n)
}

// Get serves GET /notes/{id}.
func (h Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		writeError(w, r, noteUC.ErrInvalidNoteID)
		return
	}
	n, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeNote(w, r, http.StatusOK, n)
}

// RenderHTML serves GET /notes/{id}/html: the note text rendered from
// markdown. Raw HTML in the text is dropped.
func (h Handler) RenderHTML(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		writeError(w, r, noteUC.ErrInvalidNoteID)
		return
	}
	n, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	html, err := markdown.ToHTML(n.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

type updateRequest struct {
	Title *string `json:"title"`
	Text  *string `json:"text"`
}

// Update serves PUT /notes/{id}. Only the author may edit a note.
func (h Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequireUser(w, r)
	if !ok {
		return
	}
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		writeError(w, r, noteUC.ErrInvalidNoteID)
		return
	}
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, errInvalidBody)
		return
	}

	n, err := h.Svc.Update(r.Context(), noteUC.UpdateInput{
		ID:     id,
		UserID: userID,
		Title:  req.Title,
		Text:   req.Text,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeNote(w, r, http.StatusOK, n)
}

// Delete serves DELETE /notes/{id}. Only the author may delete a note.
func (h Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequireUser(w, r)
	if !ok {
		return
	}
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		writeError(w, r, noteUC.ErrInvalidNoteID)
		return
	}
	if err := h.Svc.Delete(r.Context(), id, userID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List serves GET /notes: the caller's notes, newest first.
func (h Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequireUser(w, r)
	if !ok {
		return
	}
	notes, err := h.Svc.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := serializer.SerializeList(nil, notes, "-user")
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}

// ListByArticle serves GET /articles/{id}/notes: every note on the article,
// oldest first.
func (h Handler) ListByArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		writeError(w, r, artUC.ErrInvalidArticleID)
		return
	}
	notes, err := h.Svc.ListByArticle(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := serializer.SerializeList(nil, notes, "-article")
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, out)
}
