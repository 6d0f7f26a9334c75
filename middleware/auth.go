package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	errs "conecta/tools/errs"
	security "conecta/tools/security"
)

// Context keys set by Auth; downstream handlers read identity through
// these.
const (
	CtxUserIDKey = "userId"
	CtxEmailKey  = "userEmail"
)

// Auth verifies the bearer credential and injects the identity into
// the request context. Requests without a valid token are refused.
func Auth(opts security.Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if authz := strings.TrimSpace(c.GetHeader("Authorization")); authz != "" {
			if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				token = strings.TrimSpace(authz[len("bearer "):])
			}
		}
		claims, err := security.Verify(opts, token)
		if err != nil {
			codeErr, ok := err.(*errs.CodeError)
			if !ok {
				codeErr = errs.ErrTokenInvalid
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, codeErr)
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxEmailKey, claims.Email)
		c.Next()
	}
}

// CurrentUserID reads the authenticated identity as a numeric account
// id.
func CurrentUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(CtxUserIDKey)
	if !ok {
		return 0, false
	}
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
