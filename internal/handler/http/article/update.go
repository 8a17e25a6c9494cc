package article

import (
	"encoding/json"
	"net/http"

	"wikinotes/internal/handler/http/pathutil"
	artUC "wikinotes/internal/usecase/article"
)

// updateRequest leaves fields that are absent from the body untouched.
type updateRequest struct {
	Category    *string `json:"category"`
	Title       *string `json:"title"`
	ImageURL    *string `json:"image_url"`
	KeyFacts    *string `json:"key_facts"`
	Description *string `json:"description"`
	ArticleURL  *string `json:"article_url"`
}

// UpdateHandler serves PUT /articles/{id}.
type UpdateHandler struct{ Svc *artUC.Service }

func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.PathID(r, "id")
	if err != nil {
		writeError(w, r, artUC.ErrInvalidArticleID)
		return
	}
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, errInvalidBody)
		return
	}

	art, err := h.Svc.Update(r.Context(), artUC.UpdateInput{
		ID:          id,
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
	writeArticle(w, r, http.StatusOK, art)
}
