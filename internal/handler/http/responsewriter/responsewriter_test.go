package responsewriter_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikinotes/internal/handler/http/responsewriter"
)

func TestWrap_DefaultsToOK(t *testing.T) {
	rw := responsewriter.Wrap(httptest.NewRecorder())
	assert.Equal(t, http.StatusOK, rw.StatusCode())
	assert.Zero(t, rw.BytesWritten())
}

func TestResponseWriter_FirstHeaderWins(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := responsewriter.Wrap(rec)

	rw.WriteHeader(http.StatusCreated)
	rw.WriteHeader(http.StatusInternalServerError)

	assert.Equal(t, http.StatusCreated, rw.StatusCode())
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestResponseWriter_CountsBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := responsewriter.Wrap(rec)

	_, err := rw.Write([]byte(`{"id":1,`))
	require.NoError(t, err)
	_, err = rw.Write([]byte(`"title":"Rome"}`))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 23, rw.BytesWritten())
	assert.Equal(t, `{"id":1,"title":"Rome"}`, rec.Body.String())
}

func TestResponseWriter_WriteAfterHeaderKeepsStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := responsewriter.Wrap(rec)

	http.Error(rw, "note not found", http.StatusNotFound)

	assert.Equal(t, http.StatusNotFound, rw.StatusCode())
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, len("note not found\n"), rw.BytesWritten())
}

func TestResponseWriter_Unwrap(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := responsewriter.Wrap(rec)

	assert.Same(t, rec, rw.Unwrap())
	assert.NoError(t, http.NewResponseController(rw).Flush())
	assert.True(t, rec.Flushed)
}
