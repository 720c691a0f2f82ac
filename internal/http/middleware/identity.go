// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the acting user for every request. Authentication
// itself happens upstream (gateway, session layer); by the time a request
// reaches this service the caller's identity arrives as the numeric
// X-User-ID header. The middleware validates it, stores the ID in the Gin
// context, and refreshes the user's last_seen presence timestamp.
package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// userIDKey is the Gin context key under which the acting user ID is stored.
const userIDKey = "userID"

// HeaderUserID carries the already-authenticated caller identity.
const HeaderUserID = "X-User-ID"

// PresenceRecorder is the narrow seam Identity uses to track last_seen.
type PresenceRecorder interface {
	TouchLastSeen(ctx context.Context, userID uint) error
}

// Identity validates the X-User-ID header and stores the resolved user ID in
// the context. Requests without a parseable positive ID are rejected with
// 401 before reaching any handler. Presence recording is best-effort: a
// failed touch is logged, never fatal.
func Identity(presence PresenceRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderUserID)
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": RequestIDFrom(c),
				"code":       "unauthorized",
				"message":    "missing or invalid " + HeaderUserID + " header",
			})
			return
		}
		c.Set(userIDKey, uint(id))

		if presence != nil {
			if err := presence.TouchLastSeen(c.Request.Context(), uint(id)); err != nil {
				LoggerFrom(c).Warn().Err(err).Msg("touch last_seen failed")
			}
		}
		c.Next()
	}
}

// UserIDFrom returns the acting user ID stored by Identity, or 0 when the
// request is unauthenticated (e.g. /health).
func UserIDFrom(c *gin.Context) uint {
	if v, ok := c.Get(userIDKey); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
