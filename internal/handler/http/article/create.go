package article

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"wikinotes/internal/handler/http/respond"
	"wikinotes/internal/observability/logging"
	"wikinotes/internal/serializer"
	artUC "wikinotes/internal/usecase/article"
)

type createRequest struct {
	Category    string `json:"category"`
	Title       string `json:"title"`
	ImageURL    string `json:"image_url"`
	KeyFacts    string `json:"key_facts"`
	Description string `json:"description"`
	ArticleURL  string `json:"article_url"`
}

// CreateHandler serves POST /articles.
type CreateHandler struct{ Svc *artUC.Service }

func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, errInvalidBody)
		return
	}

	art, err := h.Svc.Create(r.Context(), artUC.CreateInput{
		Category:    req.Category,
		Title:       req.Title,
		ImageURL:    req.ImageURL,
		KeyFacts:    req.KeyFacts,
		Description: req.Description,
		ArticleURL:  req.ArticleURL,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeArticle(w, r, http.StatusCreated, art)
}

type importRequest struct {
	URL      string `json:"url"`
	Category string `json:"category"`
}

// ImportHandler serves POST /articles/import: the page at url is fetched and
// stored as an article in category.
type ImportHandler struct{ Svc *artUC.Service }

func (h ImportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, errInvalidBody)
		return
	}

	art, err := h.Svc.Import(r.Context(), artUC.ImportInput{URL: req.URL, Category: req.Category})
	if err != nil {
		logging.WithRequestID(r.Context(), logging.FromContext(r.Context())).Warn("article import failed",
			slog.String("url", req.URL),
			slog.Any("error", err))
		writeImportError(w, r, err)
		return
	}
	writeArticle(w, r, http.StatusCreated, art)
}

func writeArticle(w http.ResponseWriter, r *http.Request, code int, v any) {
	out, err := serializer.Serialize(v)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond.JSON(w, code, out)
}
