package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fonsecaaso/linkvault/go-server/internal/token"
)

const (
	ownerIDKey = "owner_id"
	claimsKey  = "claims"
)

var (
	ErrMissingToken = errors.New("missing authorization header")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// TokenValidator is implemented by *token.Manager.
type TokenValidator interface {
	ValidateToken(tokenStr string) (*token.CustomClaims, error)
}

// AuthMiddleware rejects requests without a valid bearer token and stores
// the caller's owner identity on the context. Every downstream query is
// scoped by that owner.
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	logger := zap.L().With(zap.String("component", "AuthMiddleware"))

	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, ErrMissingToken)
			return
		}

		claims, err := validator.ValidateToken(raw)
		if err != nil {
			logger.Debug("Rejected bearer token",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			abortUnauthorized(c, ErrInvalidToken)
			return
		}

		c.Set(claimsKey, claims)
		c.Set(ownerIDKey, claims.OwnerID())
		c.Next()
	}
}

// bearerToken extracts the credentials of an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, credentials, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	credentials = strings.TrimSpace(credentials)
	return credentials, credentials != ""
}

func abortUnauthorized(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": err.Error(),
		"code":  "UNAUTHORIZED",
	})
}

// OwnerIDFromContext returns the owner set by AuthMiddleware, or "".
func OwnerIDFromContext(c *gin.Context) string {
	return c.GetString(ownerIDKey)
}

// ClaimsFromContext returns the verified token claims, if any.
func ClaimsFromContext(c *gin.Context) (*token.CustomClaims, bool) {
	claims, ok := c.Value(claimsKey).(*token.CustomClaims)
	return claims, ok
}
