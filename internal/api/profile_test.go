package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileHandlers(t *testing.T) {
	env := setupTestRouter(t, testOptions{})
	auth, _ := env.signUp(t, "profile@example.com")

	w := env.do(t, http.MethodGet, "/api/v1/profile", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Test Cook", decode(t, w)["profile"].(map[string]interface{})["full_name"])

	w = env.do(t, http.MethodPut, "/api/v1/profile", map[string]string{"avatar_url": "https://cdn.example.com/me.png"}, auth)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode(t, w)["profile"].(map[string]interface{})
	assert.Equal(t, "Test Cook", profile["full_name"])
	assert.Equal(t, "https://cdn.example.com/me.png", profile["avatar_url"])

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, "/api/v1/profile", "[1,2", auth).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/v1/profile", nil, nil).Code)
}
