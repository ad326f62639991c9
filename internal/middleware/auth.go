package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/pkg/auth"
	apperrors "github.com/jwalitptl/medconnect-api/pkg/errors"
	"github.com/jwalitptl/medconnect-api/pkg/httputil"
)

const (
	ContextUserID = "userID"
	ContextRole   = "role"
	ContextEmail  = "email"
	ContextClaims = "claims"
)

// legacyTokenHeaders are the per-role headers older clients send the raw
// token in.
var legacyTokenHeaders = []string{"token", "dtoken", "atoken"}

type AuthMiddleware struct {
	jwtSvc      auth.JWTService
	revocations *auth.RevocationList
}

func NewAuthMiddleware(jwtSvc auth.JWTService, revocations *auth.RevocationList) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSvc:      jwtSvc,
		revocations: revocations,
	}
}

func tokenFrom(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	for _, name := range legacyTokenHeaders {
		if t := c.GetHeader(name); t != "" {
			return t
		}
	}
	// Browsers cannot set headers on websocket upgrades.
	if websocketUpgrade(c) {
		return c.Query("token")
	}
	return ""
}

func websocketUpgrade(c *gin.Context) bool {
	return strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}

// Authenticate verifies the JWT and stores the caller in the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFrom(c)
		if token == "" {
			httputil.RespondWithError(c, apperrors.Unauthorized("not authorized, login again", nil))
			return
		}

		claims, err := m.jwtSvc.ValidateToken(token)
		if err != nil {
			httputil.RespondWithError(c, apperrors.Unauthorized("invalid token", err))
			return
		}
		if m.revocations != nil && m.revocations.IsRevoked(claims.RegisteredClaims.ID) {
			httputil.RespondWithError(c, apperrors.Unauthorized("token has been revoked", auth.ErrTokenRevoked))
			return
		}

		c.Set(ContextUserID, claims.ID)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// RequireRole rejects callers whose token carries none of roles.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		httputil.RespondWithError(c, apperrors.Forbidden("requires role "+strings.Join(roles, " or "), nil))
	}
}

// Actor returns the authenticated caller.
func Actor(c *gin.Context) model.Actor {
	return model.Actor{
		ID:    c.GetString(ContextUserID),
		Role:  c.GetString(ContextRole),
		Email: c.GetString(ContextEmail),
	}
}

// Claims returns the verified token claims, or nil outside Authenticate.
func Claims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
