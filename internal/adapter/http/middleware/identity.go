package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const userIDKey = "user_id"

// Identity extracts the caller identity propagated by the API gateway in the
// X-User-Id header. Requests without one are rejected; handlers read the id
// via UserID.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetHeader("X-User-Id")
		if uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "missing X-User-Id header",
			})
			return
		}
		c.Set(userIDKey, uid)
		c.Next()
	}
}

// UserID returns the authenticated caller id set by Identity.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
