package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/transport-request-api/internal/models"
	appErrors "github.com/noah-isme/transport-request-api/pkg/errors"
	"github.com/noah-isme/transport-request-api/pkg/response"
)

// RequireRoles lets the request through only when the session role is one of roles.
// District accounts without a district are rejected.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		session, ok := Session(c)
		if !ok || !session.Authenticated() {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[session.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		if session.Role == models.RoleDistrict && session.District == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "account is not assigned to a district"))
			c.Abort()
			return
		}
		c.Next()
	}
}
