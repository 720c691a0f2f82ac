// User profile and social graph HTTP handlers.
//
// Endpoints:
//   - GET  /users/:username           (profile with graph counts)
//   - GET  /users/:username/posts     (their posts, paginated)
//   - POST /users/:username/follow    (idempotent)
//   - POST /users/:username/unfollow  (idempotent)
//   - PUT  /profile                   (edit own profile)
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-microblog-backend/internal/domain"
	"github.com/tbourn/go-microblog-backend/internal/services"
	"github.com/tbourn/go-microblog-backend/internal/utils"
)

// ProfileResponse is a user profile enriched with social graph counts.
type ProfileResponse struct {
	User      *domain.User `json:"user"`
	Followers int64        `json:"followers"`
	Following int64        `json:"following"`
	// IsFollowing reports whether the acting user follows this profile.
	IsFollowing bool `json:"is_following"`
}

// UpdateProfileRequest is the JSON payload for editing the own profile.
type UpdateProfileRequest struct {
	Username string `json:"username" binding:"required,min=1,max=64"`
	AboutMe  string `json:"about_me" binding:"max=280"`
}

// GetProfile handles GET /users/:username.
func (h *Handlers) GetProfile(c *gin.Context) {
	u, err := h.users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.failUser(c, err)
		return
	}
	followers, following, err := h.graph.Counts(c.Request.Context(), u.ID)
	if err != nil {
		Fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load profile")
		return
	}
	isFollowing, err := h.graph.IsFollowing(c.Request.Context(), actingUser(c), u.ID)
	if err != nil {
		Fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load profile")
		return
	}
	ok(c, ProfileResponse{User: u, Followers: followers, Following: following, IsFollowing: isFollowing})
}

// ListUserPosts handles GET /users/:username/posts.
func (h *Handlers) ListUserPosts(c *gin.Context) {
	u, err := h.users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.failUser(c, err)
		return
	}
	page, pageSize := pageParams(c)
	posts, total, err := h.posts.ListByAuthor(c.Request.Context(), u.ID, page, pageSize)
	if err != nil {
		Fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load posts")
		return
	}
	ok(c, PostsResponse{Posts: posts, Pagination: utils.NewPageMeta(page, pageSize, total)})
}

// Follow handles POST /users/:username/follow.
func (h *Handlers) Follow(c *gin.Context) {
	h.mutateEdge(c, h.graph.Follow)
}

// Unfollow handles POST /users/:username/unfollow.
func (h *Handlers) Unfollow(c *gin.Context) {
	h.mutateEdge(c, h.graph.Unfollow)
}

// mutateEdge resolves :username and applies a follow-graph mutation with
// the shared error mapping. Both mutations are idempotent, so a repeated
// submission returns the same 204.
func (h *Handlers) mutateEdge(c *gin.Context, op func(ctx context.Context, follower, followee uint) error) {
	u, err := h.users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.failUser(c, err)
		return
	}
	if err := op(c.Request.Context(), actingUser(c), u.ID); err != nil {
		switch {
		case errors.Is(err, services.ErrSelfFollow):
			Fail(c, http.StatusBadRequest, ErrCodeSelfFollow, err.Error())
		case errors.Is(err, services.ErrUserNotFound):
			Fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		default:
			Fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not update follow state")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateProfile handles PUT /profile.
func (h *Handlers) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}
	err := h.users.UpdateProfile(c.Request.Context(), actingUser(c), req.Username, req.AboutMe)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			Fail(c, http.StatusConflict, ErrCodeUsernameTaken, err.Error())
		case errors.Is(err, services.ErrUserNotFound):
			Fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		case errors.Is(err, services.ErrEmptyBody):
			Fail(c, http.StatusBadRequest, ErrCodeBadRequest, "username must not be empty")
		default:
			Fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not update profile")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// failUser maps identity-store lookup errors to HTTP.
func (h *Handlers) failUser(c *gin.Context, err error) {
	if errors.Is(err, services.ErrUserNotFound) {
		Fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		return
	}
	Fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load user")
}
