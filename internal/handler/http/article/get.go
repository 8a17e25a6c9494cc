package article

import (
	"net/http"

	"wikinotes/internal/handler/http/auth"
	"wikinotes/internal/handler/http/pathutil"
	"wikinotes/internal/handler/http/respond"
	"wikinotes/internal/serializer"
	artUC "wikinotes/internal/usecase/article"
)

// GetHandler serves GET /articles/{id}: the article with its notes and
// favorites, plus my_notes, the caller's own notes on it.
type GetHandler struct{ Svc *artUC.Service }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequireUser(w, r)
	if !ok {
		return
	}
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		writeError(w, r, artUC.ErrInvalidArticleID)
		return
	}

	art, err := h.Svc.GetWithRelations(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out, err := serializer.Serialize(art)
	if err != nil {
		writeError(w, r, err)
		return
	}
	mine, err := serializer.SerializeList(nil, art.NotesBy(userID), "-article")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out["my_notes"] = mine

	respond.JSON(w, http.StatusOK, out)
}

// MyNotesHandler serves GET /articles/{id}/notes/mine.
type MyNotesHandler struct{ Svc *artUC.Service }

func (h MyNotesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.RequireUser(w, r)
	if !ok {
		return
	}
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		writeError(w, r, artUC.ErrInvalidArticleID)
		return
	}

	notes, err := h.Svc.UserNotes(r.Context(), id, userID)
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
