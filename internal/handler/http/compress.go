package http

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// Compress gzips responses for clients that send Accept-Encoding: gzip.
// Bodies below gzhttp.DefaultMinSize and responses that already carry a
// Content-Encoding pass through unchanged.
func Compress(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}
