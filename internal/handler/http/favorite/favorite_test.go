package favorite_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikinotes/internal/domain/entity"
	"wikinotes/internal/handler/http/auth"
	"wikinotes/internal/handler/http/favorite"
	"wikinotes/internal/repository/repotest"
	authservice "wikinotes/internal/service/auth"
	favUC "wikinotes/internal/usecase/favorite"
)

func setup(t *testing.T) (*http.ServeMux, *repotest.Store, *entity.User, *entity.User, *entity.Article) {
	t.Helper()
	store := repotest.NewStore()
	mux := http.NewServeMux()
	favorite.Register(mux, &favUC.Service{Store: store})

	hasher := repotest.Hasher(t)
	alice := store.SeedUser(t, hasher, "alice", "secret123")
	bob := store.SeedUser(t, hasher, "bob", "secret123")
	return mux, store, alice, bob, store.SeedArticle(t)
}

func do(mux *http.ServeMux, user *entity.User, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if user != nil {
		req = req.WithContext(auth.WithPrincipal(req.Context(), authservice.Principal{UserID: user.ID}))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestAdd(t *testing.T) {
	mux, store, alice, _, art := setup(t)
	body := `{"article_id":` + strconv.FormatInt(art.ID, 10) + `}`

	rec := do(mux, alice, http.MethodPost, "/favorites", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, float64(art.ID), out["article_id"])

	rec = do(mux, alice, http.MethodPost, "/favorites", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	_, _, _, favorites := store.Counts()
	assert.Equal(t, 1, favorites)
}

func TestAdd_Errors(t *testing.T) {
	mux, _, alice, _, _ := setup(t)

	assert.Equal(t, http.StatusUnauthorized, do(mux, nil, http.MethodPost, "/favorites", `{"article_id":1}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(mux, alice, http.MethodPost, "/favorites", `[`).Code)
	assert.Equal(t, http.StatusNotFound, do(mux, alice, http.MethodPost, "/favorites", `{"article_id":999}`).Code)
}

func TestRemove_OwnerOnly(t *testing.T) {
	mux, store, alice, bob, art := setup(t)
	fav := store.SeedFavorite(t, alice.ID, art.ID)
	path := "/favorites/" + strconv.FormatInt(fav.ID, 10)

	assert.Equal(t, http.StatusForbidden, do(mux, bob, http.MethodDelete, path, "").Code)
	assert.Equal(t, http.StatusNoContent, do(mux, alice, http.MethodDelete, path, "").Code)
	assert.Equal(t, http.StatusNotFound, do(mux, alice, http.MethodDelete, path, "").Code)
}

func TestList(t *testing.T) {
	mux, store, alice, bob, art := setup(t)
	store.SeedFavorite(t, alice.ID, art.ID)
	store.SeedFavorite(t, bob.ID, art.ID)

	rec := do(mux, alice, http.MethodGet, "/favorites", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var favs []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &favs))
	require.Len(t, favs, 1)
	assert.NotContains(t, favs[0], "user")
	article := favs[0]["article"].(map[string]any)
	assert.Equal(t, art.Title, article["title"])
	assert.NotContains(t, article, "favorites")
}
