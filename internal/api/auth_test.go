package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginMe(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "Ada", "email": "Ada@Example.com", "password": "supersecret"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var auth AuthResponse
	decode(t, w, &auth)
	assert.NotEmpty(t, auth.Token)
	assert.Equal(t, "ada@example.com", auth.User.Email)
	assert.NotContains(t, w.Body.String(), "supersecret")

	w = s.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "Ada", "email": "ada@example.com", "password": "supersecret"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"email"}, fieldNames(decode(t, w, nil).Errors))

	w = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ada@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ada@example.com", "password": "supersecret"})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &auth)

	w = s.do(http.MethodGet, "/api/auth/me", "Bearer "+auth.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"ada@example.com"`)

	w = s.do(http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegister_Validation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "A", "email": "nope", "password": "short"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w, nil)
	assert.False(t, env.Success)
	assert.ElementsMatch(t, []string{"name", "email", "password"}, fieldNames(env.Errors))
}

func TestLogin_RateLimited(t *testing.T) {
	s := newTestServer(t)

	for i := 0; i < 5; i++ {
		w := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "user@example.com", "password": "bad-password"})
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "user@example.com", "password": "password123"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}
