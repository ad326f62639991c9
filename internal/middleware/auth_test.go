package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medconnect-api/pkg/auth"
	"github.com/jwalitptl/medconnect-api/pkg/httputil"
)

func setupAuthRouter(t *testing.T) (*gin.Engine, auth.JWTService, *auth.RevocationList) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtSvc := auth.NewJWTService("middleware-secret", time.Hour)
	revocations := auth.NewRevocationList(time.Minute)
	m := NewAuthMiddleware(jwtSvc, revocations)

	r := gin.New()
	r.GET("/me", m.Authenticate(), func(c *gin.Context) {
		c.JSON(http.StatusOK, Actor(c))
	})
	r.GET("/admin", m.Authenticate(), m.RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, jwtSvc, revocations
}

func token(t *testing.T, svc auth.JWTService, role string) (string, *auth.Claims) {
	t.Helper()
	tok, claims, err := svc.GenerateToken(auth.Subject{ID: "user-1", Email: "u@example.com", Role: role})
	require.NoError(t, err)
	return tok, claims
}

func TestAuthenticate(t *testing.T) {
	r, jwtSvc, _ := setupAuthRouter(t)
	tok, _ := token(t, jwtSvc, "patient")

	tests := []struct {
		name   string
		header map[string]string
		status int
	}{
		{"missing", nil, http.StatusUnauthorized},
		{"bearer", map[string]string{"Authorization": "Bearer " + tok}, http.StatusOK},
		{"legacy header", map[string]string{"token": tok}, http.StatusOK},
		{"wrong scheme", map[string]string{"Authorization": "Basic " + tok}, http.StatusUnauthorized},
		{"garbage", map[string]string{"Authorization": "Bearer nope"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestAuthenticateSetsActor(t *testing.T) {
	r, jwtSvc, _ := setupAuthRouter(t)
	tok, _ := token(t, jwtSvc, "doctor")

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var actor struct{ ID, Role, Email string }
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &actor))
	assert.Equal(t, "user-1", actor.ID)
	assert.Equal(t, "doctor", actor.Role)
}

func TestRevokedToken(t *testing.T) {
	r, jwtSvc, revocations := setupAuthRouter(t)
	tok, claims := token(t, jwtSvc, "patient")
	revocations.Revoke(claims.RegisteredClaims.ID, claims.ExpiresAt.Time)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var resp httputil.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "token has been revoked", resp.Message)
}

func TestRequireRole(t *testing.T) {
	r, jwtSvc, _ := setupAuthRouter(t)

	for role, want := range map[string]int{"admin": http.StatusNoContent, "patient": http.StatusForbidden} {
		tok, _ := token(t, jwtSvc, role)
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, role)
	}
}
