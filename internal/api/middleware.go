package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sat-paing-thu-168/meeting-booking-backend/internal/auth"
	"github.com/sat-paing-thu-168/meeting-booking-backend/internal/user"
)

// RequireRoles ensures the authenticated user holds one of the given roles.
// It MUST be used after auth.AuthRequired middleware. Role comes from the
// verified token, so no storage round trip is needed here.
func RequireRoles(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := user.Role(auth.GetUserRole(c))
		if role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}
