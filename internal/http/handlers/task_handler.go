// Background task HTTP handlers.
//
// Endpoints:
//   - POST /tasks/export_posts   (launch the export, 409 when one is running)
//   - GET  /tasks/export_posts   (the active task, 404 when none)
//
// Progress is not served here: the runner publishes it into the
// notification stream, which clients already poll.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-microblog-backend/internal/services"
)

// LaunchExport handles POST /tasks/export_posts. A duplicate launch while
// one is active returns 409 with task_already_active; clients show it as
// information, not as a failure.
func (h *Handlers) LaunchExport(c *gin.Context) {
	t, err := h.tasks.Launch(c.Request.Context(), actingUser(c), services.TaskExportPosts, "Exporting posts...")
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTaskAlreadyActive):
			Fail(c, http.StatusConflict, ErrCodeTaskActive, err.Error())
		case errors.Is(err, services.ErrUserNotFound):
			Fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		case errors.Is(err, services.ErrUnknownTaskType):
			Fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			Fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not launch task")
		}
		return
	}
	created(c, t)
}

// ExportInProgress handles GET /tasks/export_posts.
func (h *Handlers) ExportInProgress(c *gin.Context) {
	t, err := h.tasks.InProgress(c.Request.Context(), actingUser(c), services.TaskExportPosts)
	if err != nil {
		Fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load task")
		return
	}
	if t == nil {
		Fail(c, http.StatusNotFound, ErrCodeNotFound, "no export in progress")
		return
	}
	ok(c, t)
}
