// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides caller identification and operator gating. The API sits
// behind the bot frontend, which forwards the platform user id in the
// X-User-ID header; there is no separate credential.
package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// userIDKey is the Gin context key under which the caller id is stored.
	userIDKey = "userID"
	// userIDHeader carries the numeric platform user id of the caller.
	userIDHeader = "X-User-ID"
)

// Identity parses the X-User-ID header into the caller identity. Requests
// without a valid numeric id are rejected with 401 before reaching handlers.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(userIDHeader))
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "unauthorized",
				"message":    "missing or invalid " + userIDHeader + " header",
			})
			return
		}
		c.Set(userIDKey, id)
		c.Next()
	}
}

// RequireElevated rejects callers that isElevated does not recognize as
// operators. Mount after Identity().
func RequireElevated(isElevated func(int64) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := UserID(c)
		if !ok || isElevated == nil || !isElevated(id) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "forbidden",
				"message":    "operator access required",
			})
			return
		}
		c.Next()
	}
}

// UserID returns the caller id set by Identity().
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
