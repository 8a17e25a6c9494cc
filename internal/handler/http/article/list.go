package article

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"wikinotes/internal/common/pagination"
	"wikinotes/internal/handler/http/respond"
	"wikinotes/internal/observability/logging"
	"wikinotes/internal/serializer"
	artUC "wikinotes/internal/usecase/article"
)

// ListHandler serves GET /articles?category=&q=&page=&limit=.
// q holds space-separated title keywords that must all match.
type ListHandler struct {
	Svc           *artUC.Service
	PaginationCfg pagination.Config
	Logger        *slog.Logger
}

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	logger := logging.WithRequestID(ctx, h.Logger)

	params, err := pagination.ParseQueryParams(r, h.PaginationCfg)
	if err != nil {
		logger.Warn("invalid pagination parameters", slog.String("error", err.Error()))
		respond.SafeError(w, r, http.StatusBadRequest, err)
		return
	}

	q := r.URL.Query()
	result, err := h.Svc.List(ctx, artUC.ListInput{
		Category: q.Get("category"),
		Keywords: strings.Fields(q.Get("q")),
		Params:   params,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	items, err := serializer.SerializeList(nil, result.Data)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.Debug("article page served",
		slog.Int("page", params.Page),
		slog.Int("limit", params.Limit),
		slog.Int("returned_count", len(items)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))

	respond.JSON(w, http.StatusOK, pagination.NewResponse(items, result.Pagination))
}
