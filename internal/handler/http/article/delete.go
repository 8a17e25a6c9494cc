package article

import (
	"net/http"

	"wikinotes/internal/handler/http/pathutil"
	artUC "wikinotes/internal/usecase/article"
)

// DeleteHandler serves DELETE /articles/{id}. The article's notes and
// favorites go with it.
type DeleteHandler struct{ Svc *artUC.Service }

func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		writeError(w, r, artUC.ErrInvalidArticleID)
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
