package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LucianoNicacio/palm-cost-vape/utils"
)

// RequireAgeVerification blocks catalog and cart routes until the
// session has passed the age gate.
func RequireAgeVerification() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !utils.IsAgeVerified(c) {
			utils.RespondError(c, http.StatusForbidden, errors.New("age verification required"))
			c.Abort()
			return
		}
		c.Next()
	}
}
