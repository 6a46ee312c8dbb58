package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"calendarapi/utils"
)

// Authenticate verifies the Authorization token and stores the caller's
// username and role in the request context. Handlers turn the pair into the
// explicit identity the services require.
func Authenticate(c *gin.Context) {
	token := c.Request.Header.Get("Authorization")
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized."})
		return
	}

	username, role, err := utils.VerifyToken(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized."})
		return
	}

	c.Set("username", username)
	c.Set("role", role)
	c.Next()
}
