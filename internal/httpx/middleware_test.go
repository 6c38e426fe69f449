package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decoder-44/vehicle-service-super-app/internal/auth"
)

func authedRouter(t *testing.T, tokens *auth.Tokens) http.Handler {
	t.Helper()
	r := NewRouter()
	r.Group(func(gr chi.Router) {
		gr.Use(Authenticate(tokens))
		gr.Get("/me", func(w http.ResponseWriter, req *http.Request) {
			p := principal(req)
			writeData(w, http.StatusOK, "me", map[string]string{"userId": p.UserID, "role": p.Role})
		})
	})
	return r
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	h := authedRouter(t, auth.NewTokens("s"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, http.StatusUnauthorized, body.StatusCode)
}

func TestAuthenticateRejectsBadToken(t *testing.T) {
	h := authedRouter(t, auth.NewTokens("s"))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticatePassesPrincipal(t *testing.T) {
	tokens := auth.NewTokens("s")
	h := authedRouter(t, tokens)

	raw, err := tokens.Mint("u-1", "mechanic", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	data := body.Data.(map[string]any)
	assert.Equal(t, "u-1", data["userId"])
	assert.Equal(t, "mechanic", data["role"])
}

func TestHealthzIsPublic(t *testing.T) {
	h := authedRouter(t, auth.NewTokens("s"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
