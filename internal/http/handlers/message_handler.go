// Private messaging HTTP handlers.
//
// Endpoints:
//   - POST /messages/:username   (send a message to a user)
//   - GET  /messages             (inbox, paginated; does NOT move the watermark)
//   - POST /messages/read        (mark all read, resets the unread badge)
//   - GET  /messages/unread      (current unread count)
//
// Reading the inbox and acknowledging it are split deliberately: marking
// read is an explicit state change with its own notification side effect,
// so it gets its own POST instead of piggybacking on the GET.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-microblog-backend/internal/domain"
	"github.com/tbourn/go-microblog-backend/internal/services"
	"github.com/tbourn/go-microblog-backend/internal/utils"
)

// SendMessageRequest is the JSON payload for sending a private message.
type SendMessageRequest struct {
	// Body is the message text (1–280 runes).
	Body string `json:"body" binding:"required"`
}

// MessagesResponse wraps a page of messages and pagination information.
type MessagesResponse struct {
	Messages   []domain.Message `json:"messages"`
	Pagination utils.PageMeta   `json:"pagination"`
}

// SendMessage handles POST /messages/:username.
func (h *Handlers) SendMessage(c *gin.Context) {
	recipient, err := h.users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.failUser(c, err)
		return
	}
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}
	m, err := h.messages.Send(c.Request.Context(), actingUser(c), recipient.ID, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyBody), errors.Is(err, services.ErrTooLong):
			Fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, services.ErrUserNotFound):
			Fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		default:
			Fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not send message")
		}
		return
	}
	created(c, m)
}

// ListMessages handles GET /messages.
func (h *Handlers) ListMessages(c *gin.Context) {
	page, pageSize := pageParams(c)
	msgs, total, err := h.messages.Received(c.Request.Context(), actingUser(c), page, pageSize)
	if err != nil {
		Fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load messages")
		return
	}
	ok(c, MessagesResponse{Messages: msgs, Pagination: utils.NewPageMeta(page, pageSize, total)})
}

// MarkMessagesRead handles POST /messages/read.
func (h *Handlers) MarkMessagesRead(c *gin.Context) {
	if err := h.messages.MarkAllRead(c.Request.Context(), actingUser(c)); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			Fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
			return
		}
		Fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not mark messages read")
		return
	}
	c.Status(http.StatusNoContent)
}

// UnreadCount handles GET /messages/unread.
func (h *Handlers) UnreadCount(c *gin.Context) {
	n, err := h.messages.UnreadCount(c.Request.Context(), actingUser(c))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			Fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
			return
		}
		Fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not count unread messages")
		return
	}
	ok(c, gin.H{"unread": n})
}
