// Package article provides the HTTP handlers for the article endpoints.
package article

import (
	"errors"
	"net/http"

	"github.com/sony/gobreaker"

	"wikinotes/internal/domain/entity"
	"wikinotes/internal/handler/http/respond"
	artUC "wikinotes/internal/usecase/article"
)

var errInvalidBody = errors.New("invalid request body")

// writeError maps use-case errors to status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	switch {
	case entity.IsValidationError(err),
		errors.Is(err, artUC.ErrInvalidArticleID),
		errors.Is(err, errInvalidBody):
		code = http.StatusBadRequest
	case errors.Is(err, artUC.ErrArticleNotFound):
		code = http.StatusNotFound
	case errors.Is(err, artUC.ErrDuplicateArticle):
		code = http.StatusConflict
	}
	respond.SafeError(w, r, code, err)
}

// importFailures lists fetch errors whose message is shown to the client.
var importFailures = []struct {
	err  error
	code int
}{
	{artUC.ErrInvalidURL, http.StatusUnprocessableEntity},
	{artUC.ErrPrivateIP, http.StatusUnprocessableEntity},
	{artUC.ErrExtractionFailed, http.StatusUnprocessableEntity},
	{artUC.ErrTooManyRedirects, http.StatusBadGateway},
	{artUC.ErrBodyTooLarge, http.StatusBadGateway},
	{artUC.ErrUpstreamStatus, http.StatusBadGateway},
	{artUC.ErrUnreachable, http.StatusBadGateway},
	{artUC.ErrTimeout, http.StatusGatewayTimeout},
	{artUC.ErrImportUnavailable, http.StatusServiceUnavailable},
	{gobreaker.ErrOpenState, http.StatusServiceUnavailable},
	{gobreaker.ErrTooManyRequests, http.StatusServiceUnavailable},
}

// writeImportError reports fetch failures with their sentinel message and
// falls back to writeError for everything else.
func writeImportError(w http.ResponseWriter, r *http.Request, err error) {
	for _, f := range importFailures {
		if errors.Is(err, f.err) {
			if f.code >= 500 {
				w.Header().Set("Retry-After", "30")
			}
			respond.JSON(w, f.code, map[string]string{"error": f.err.Error()})
			return
		}
	}
	writeError(w, r, err)
}
