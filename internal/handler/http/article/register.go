package article

import (
	"log/slog"
	"net/http"

	"wikinotes/internal/common/pagination"
	artUC "wikinotes/internal/usecase/article"
)

// Register registers the article routes on mux. Authentication is enforced
// by the auth middleware wrapping the whole mux.
func Register(mux *http.ServeMux, svc *artUC.Service, paginationCfg pagination.Config, logger *slog.Logger) {
	mux.Handle("GET /articles", ListHandler{Svc: svc, PaginationCfg: paginationCfg, Logger: logger})
	mux.Handle("GET /articles/{id}", GetHandler{svc})
	mux.Handle("GET /articles/{id}/notes/mine", MyNotesHandler{svc})

	mux.Handle("POST /articles", CreateHandler{svc})
	mux.Handle("POST /articles/import", ImportHandler{svc})
	mux.Handle("PUT /articles/{id}", UpdateHandler{svc})
	mux.Handle("DELETE /articles/{id}", DeleteHandler{svc})
}
