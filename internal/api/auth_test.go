package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterHandler(t *testing.T) {
	env := setupTestRouter(t, testOptions{})

	w := env.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":     "new@example.com",
		"password":  "password123",
		"full_name": "New Cook",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	resp := decode(t, w)
	assert.NotEmpty(t, resp["token"])
	user := resp["user"].(map[string]interface{})
	assert.Equal(t, "new@example.com", user["email"])
	assert.NotContains(t, user, "password_hash")
	assert.NotContains(t, user, "PasswordHash")

	t.Run("duplicate", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
			"email":    "NEW@example.com",
			"password": "password123",
		}, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		for _, body := range []map[string]string{
			{"email": "not-an-email", "password": "password123"},
			{"email": "short@example.com", "password": "123"},
			{"password": "password123"},
		} {
			w := env.do(t, http.MethodPost, "/api/v1/auth/register", body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, body)
		}
	})
}

func TestLoginAndMe(t *testing.T) {
	env := setupTestRouter(t, testOptions{})
	env.signUp(t, "login@example.com")

	w := env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "login@example.com",
		"password": "password123",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	token := decode(t, w)["token"].(string)

	w = env.do(t, http.MethodGet, "/api/v1/auth/me", nil, map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "login@example.com", resp["user"].(map[string]interface{})["email"])
	assert.Equal(t, "Test Cook", resp["profile"].(map[string]interface{})["full_name"])

	t.Run("wrong password", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email":    "login@example.com",
			"password": "nope",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "invalid credentials", decode(t, w)["error"])
	})

	t.Run("me without token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/v1/auth/me", nil, nil).Code)
	})
}
