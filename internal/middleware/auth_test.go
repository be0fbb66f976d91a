package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/recipefy/backend/internal/types"
)

type staticValidator struct {
	token  string
	userID uuid.UUID
}

func (v staticValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	if token != v.token {
		return nil, errors.New("invalid token")
	}
	return &types.TokenClaims{UserID: v.userID}, nil
}

func whoAmI(c *gin.Context) {
	id, ok := UserID(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"user": "guest"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": id.String()})
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()
	validator := staticValidator{token: "good", userID: userID}

	router := gin.New()
	router.GET("/required", AuthMiddleware(validator), whoAmI)
	router.GET("/optional", OptionalAuth(validator), whoAmI)

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"required valid", "/required", "Bearer good", http.StatusOK, `{"user":"` + userID.String() + `"}`},
		{"required missing", "/required", "", http.StatusUnauthorized, `{"error":"missing authorization header"}`},
		{"required malformed", "/required", "Token good", http.StatusUnauthorized, `{"error":"invalid authorization header format"}`},
		{"required bad token", "/required", "Bearer bad", http.StatusUnauthorized, `{"error":"invalid or expired token"}`},
		{"optional valid", "/optional", "Bearer good", http.StatusOK, `{"user":"` + userID.String() + `"}`},
		{"optional missing", "/optional", "", http.StatusOK, `{"user":"guest"}`},
		{"optional bad token", "/optional", "Bearer bad", http.StatusOK, `{"user":"guest"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}
