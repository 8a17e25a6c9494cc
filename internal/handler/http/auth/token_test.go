package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikinotes/internal/handler/http/auth"
	"wikinotes/internal/repository/repotest"
	authservice "wikinotes/internal/service/auth"
	userUC "wikinotes/internal/usecase/user"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newHandler(t *testing.T) (auth.Handler, *repotest.Store) {
	t.Helper()
	store := repotest.NewStore()
	tokens, err := authservice.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)
	return auth.Handler{
		Users:  &userUC.Service{Store: store, Hasher: repotest.Hasher(t)},
		Tokens: tokens,
	}, store
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/x", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHandler_Register(t *testing.T) {
	h, store := newHandler(t)

	rec := post(h.Register, `{"username":"alice","password":"secret123"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decode(t, rec)
	assert.NotEmpty(t, body["token"])
	assert.NotEmpty(t, body["expires_at"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, rec.Body.String(), "$2a$")

	p, err := h.Tokens.Parse(body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)

	users, _, _, _ := store.Counts()
	assert.Equal(t, 1, users)
}

func TestHandler_Register_Errors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantField string
	}{
		{name: "malformed body", body: `{`, wantCode: http.StatusBadRequest},
		{name: "empty username", body: `{"username":"","password":"secret123"}`, wantCode: http.StatusBadRequest, wantField: "username"},
		{name: "duplicate username", body: `{"username":"taken","password":"secret123"}`, wantCode: http.StatusBadRequest, wantField: "username"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, store := newHandler(t)
			store.SeedUser(t, h.Users.Hasher, "taken", "secret123")

			rec := post(h.Register, tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, decode(t, rec)["field"])
			}
		})
	}
}

func TestHandler_Login(t *testing.T) {
	h, store := newHandler(t)
	u := store.SeedUser(t, h.Users.Hasher, "alice", "secret123")

	rec := post(h.Login, `{"username":"alice","password":"secret123"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	p, err := h.Tokens.Parse(decode(t, rec)["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.UserID)
}

func TestHandler_Login_BadCredentials(t *testing.T) {
	h, store := newHandler(t)
	store.SeedUser(t, h.Users.Hasher, "alice", "secret123")

	for _, body := range []string{
		`{"username":"alice","password":"wrong-password"}`,
		`{"username":"nobody","password":"secret123"}`,
	} {
		rec := post(h.Login, body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid username or password", decode(t, rec)["error"])
	}
}
