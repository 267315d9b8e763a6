package middleware

import (
	"net/http"
	"strings"

	"backend/internal/domain"
	"backend/internal/services"
	"backend/internal/utils"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// Auth authenticates the bearer token and resolves the full principal
// (account + role set) before the request reaches any handler. Tokens carry
// only the user id; roles are resolved fresh on every request so role
// changes take effect immediately.
func Auth(secret []byte) gin.HandlerFunc {
	accounts := services.AccountService{}
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			abortUnauthorized(c, "authentication required")
			return
		}
		userID, err := utils.ParseToken(strings.TrimSpace(token), secret)
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}
		principal, err := accounts.Principal(userID)
		if err != nil {
			abortUnauthorized(c, "unknown account")
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":      msg,
		"code":       "unauthorized",
		"request_id": GetRequestID(c),
	})
}

// GetPrincipal returns the authenticated principal set by Auth. The zero
// principal is returned on routes that skip the middleware.
func GetPrincipal(c *gin.Context) domain.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(domain.Principal); ok {
			return p
		}
	}
	return domain.Principal{}
}
