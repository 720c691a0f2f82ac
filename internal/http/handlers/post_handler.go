// Post, feed, and search HTTP handlers.
//
// Endpoints:
//   - POST /posts            (create a post)
//   - GET  /feed             (home timeline, paginated)
//   - GET  /explore          (all posts, paginated)
//   - GET  /search?q=        (full-text search over posts)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-microblog-backend/internal/domain"
	"github.com/tbourn/go-microblog-backend/internal/services"
	"github.com/tbourn/go-microblog-backend/internal/utils"
)

// CreatePostRequest is the JSON payload for authoring a post.
type CreatePostRequest struct {
	// Body is the post text (1–280 runes).
	Body string `json:"body" binding:"required"`
}

// PostsResponse wraps a page of posts and pagination information.
type PostsResponse struct {
	Posts      []domain.Post  `json:"posts"`
	Pagination utils.PageMeta `json:"pagination"`
}

// CreatePost handles POST /posts.
func (h *Handlers) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}
	p, err := h.posts.Create(c.Request.Context(), actingUser(c), req.Body)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyBody), errors.Is(err, services.ErrTooLong):
			Fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, services.ErrUserNotFound):
			Fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
		default:
			Fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not create post")
		}
		return
	}
	created(c, p)
}

// HomeFeed handles GET /feed.
func (h *Handlers) HomeFeed(c *gin.Context) {
	page, pageSize := pageParams(c)
	posts, total, err := h.feed.HomeFeed(c.Request.Context(), actingUser(c), page, pageSize)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			Fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
			return
		}
		Fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load feed")
		return
	}
	ok(c, PostsResponse{Posts: posts, Pagination: utils.NewPageMeta(page, pageSize, total)})
}

// Explore handles GET /explore.
func (h *Handlers) Explore(c *gin.Context) {
	page, pageSize := pageParams(c)
	posts, total, err := h.posts.ListAll(c.Request.Context(), page, pageSize)
	if err != nil {
		Fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load posts")
		return
	}
	ok(c, PostsResponse{Posts: posts, Pagination: utils.NewPageMeta(page, pageSize, total)})
}

// SearchPosts handles GET /search. An empty query yields an empty result,
// not an error.
func (h *Handlers) SearchPosts(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	page, pageSize := pageParams(c)
	posts, total, err := h.posts.Search(c.Request.Context(), q, page, pageSize)
	if err != nil {
		Fail(c, http.StatusInternalServerError, ErrCodeInternal, "search failed")
		return
	}
	ok(c, PostsResponse{Posts: posts, Pagination: utils.NewPageMeta(page, pageSize, total)})
}
