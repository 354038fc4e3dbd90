package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ctxSchoolID is the gin context key holding the authenticated school id.
const ctxSchoolID = "schoolID"

// SchoolAuth enforces bearer JWT tokens signed with HS256 and stores the
// school id in the request context. Handlers downstream trust that id as
// the tenant scope for every call.
func SchoolAuth(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		claims, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ctxSchoolID, claims.Subject)
		c.Next()
	}
}

// SchoolID returns the authenticated school id set by SchoolAuth.
func SchoolID(c *gin.Context) string {
	id, _ := c.Get(ctxSchoolID)
	s, _ := id.(string)
	return s
}
