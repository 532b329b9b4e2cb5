package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	appErrors "github.com/one-zero-eight/schedule-builder-backend/pkg/errors"
	"github.com/one-zero-eight/schedule-builder-backend/pkg/response"
)

// ContextUserKey is the gin context key storing the verified token subject.
const ContextUserKey = "currentUser"

// UserClaims is what the accounts service puts into its tokens.
type UserClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Auth requires a bearer token signed by the accounts service.
func Auth(keyfunc jwt.Keyfunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims := &UserClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, keyfunc,
			jwt.WithValidMethods([]string{"RS256"}))
		if err != nil || !token.Valid {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token"))
			c.Abort()
			return
		}

		c.Set(ContextUserKey, claims)
		c.Next()
	}
}

// CurrentUser extracts verified claims set by Auth, if any.
func CurrentUser(c *gin.Context) *UserClaims {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	claims, _ := value.(*UserClaims)
	return claims
}
