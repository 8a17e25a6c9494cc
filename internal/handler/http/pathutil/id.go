package pathutil

import (
	"errors"
	"net/http"
	"strconv"
)

// ErrInvalidID is returned when the ID in the URL path is invalid.
var ErrInvalidID = errors.New("invalid id")

// ParseID parses a positive int64 record ID.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// PathID parses the named wildcard of the request's route pattern.
//
// Example:
//
//	mux.HandleFunc("GET /articles/{id}", func(w http.ResponseWriter, r *http.Request) {
//	    id, err := pathutil.PathID(r, "id")
//	})
func PathID(r *http.Request, name string) (int64, error) {
	return ParseID(r.PathValue(name))
}
