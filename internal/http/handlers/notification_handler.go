// Notification stream HTTP handler.
//
// Endpoint:
//   - GET /notifications?since=<float ts>
//
// Clients poll with the highest timestamp they have seen; the response
// contains every event with a strictly greater timestamp, ascending. The
// read is idempotent (no consumption), so a retried poll is always safe.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// NotificationView is the wire shape of one stream event.
type NotificationView struct {
	Name      string  `json:"name"`
	Data      any     `json:"data"`
	Timestamp float64 `json:"timestamp"`
}

// ListNotifications handles GET /notifications.
func (h *Handlers) ListNotifications(c *gin.Context) {
	since := 0.0
	if raw := c.Query("since"); raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			Fail(c, http.StatusBadRequest, ErrCodeBadRequest, "since must be a number")
			return
		}
		since = f
	}

	events, err := h.notifications.Since(c.Request.Context(), actingUser(c), since)
	if err != nil {
		Fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load notifications")
		return
	}

	out := make([]NotificationView, 0, len(events))
	for i := range events {
		out = append(out, NotificationView{
			Name:      events[i].Name,
			Data:      events[i].Data(),
			Timestamp: events[i].Timestamp,
		})
	}
	ok(c, out)
}
