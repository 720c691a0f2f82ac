// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the service contracts the transport layer depends on
// and the Handlers aggregate that binds them. Handlers are transport-thin:
// they parse input, call application services with the explicitly resolved
// acting user, and translate results (including sentinel errors) into HTTP
// responses. No business rule lives here.
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-microblog-backend/internal/domain"
	"github.com/tbourn/go-microblog-backend/internal/http/middleware"
	"github.com/tbourn/go-microblog-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// UserService exposes identity-store operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type UserService interface {
	// Get fetches a user by internal ID.
	Get(ctx context.Context, id uint) (*domain.User, error)
	// GetByUsername fetches a user by public handle.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// UpdateProfile changes the acting user's handle and about text.
	UpdateProfile(ctx context.Context, userID uint, username, aboutMe string) error
}

// GraphService exposes the social graph operations.
type GraphService interface {
	// Follow creates the acting-user -> followee edge (idempotent).
	Follow(ctx context.Context, followerID, followeeID uint) error
	// Unfollow removes the edge (no-op when absent).
	Unfollow(ctx context.Context, followerID, followeeID uint) error
	// IsFollowing reports whether a follows b.
	IsFollowing(ctx context.Context, a, b uint) (bool, error)
	// Counts returns (followers, following) for a profile.
	Counts(ctx context.Context, userID uint) (int64, int64, error)
}

// PostService exposes the post ledger.
type PostService interface {
	// Create appends a post authored by the acting user.
	Create(ctx context.Context, authorID uint, body string) (*domain.Post, error)
	// ListByAuthor returns a page of one author's posts plus the total.
	ListByAuthor(ctx context.Context, authorID uint, page, pageSize int) ([]domain.Post, int64, error)
	// ListAll returns a page of every post (explore view) plus the total.
	ListAll(ctx context.Context, page, pageSize int) ([]domain.Post, int64, error)
	// Search delegates ranking to the search index collaborator.
	Search(ctx context.Context, query string, page, pageSize int) ([]domain.Post, int64, error)
}

// FeedService composes home timelines.
type FeedService interface {
	// HomeFeed returns a page of the user's timeline plus the total.
	HomeFeed(ctx context.Context, userID uint, page, pageSize int) ([]domain.Post, int64, error)
}

// MessageService exposes the private messaging channel.
type MessageService interface {
	// Send delivers a message and updates the recipient's unread stream.
	Send(ctx context.Context, senderID, recipientID uint, body string) (*domain.Message, error)
	// UnreadCount returns the acting user's unread badge value.
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	// MarkAllRead moves the watermark and pushes the zeroed badge.
	MarkAllRead(ctx context.Context, userID uint) error
	// Received returns a page of the inbox plus the total.
	Received(ctx context.Context, userID uint, page, pageSize int) ([]domain.Message, int64, error)
}

// NotificationService exposes the pollable notification stream.
type NotificationService interface {
	// Since returns events newer than the given timestamp, ascending.
	Since(ctx context.Context, ownerID uint, since float64) ([]domain.Notification, error)
}

// TaskService exposes the background task tracker.
type TaskService interface {
	// Launch starts a background task of the given type.
	Launch(ctx context.Context, userID uint, name, description string) (*domain.Task, error)
	// InProgress returns the active task of the given type, or nil.
	InProgress(ctx context.Context, userID uint, name string) (*domain.Task, error)
}

// Translator forwards text to the external translation service.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, destLang string) (string, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints of the public API. It depends on
// abstract service interfaces to keep transport concerns separate from
// business logic.
type Handlers struct {
	users         UserService
	graph         GraphService
	posts         PostService
	feed          FeedService
	messages      MessageService
	notifications NotificationService
	tasks         TaskService
	translator    Translator
}

// New constructs a Handlers instance bound to the given services.
func New(
	users UserService,
	graph GraphService,
	posts PostService,
	feed FeedService,
	messages MessageService,
	notifications NotificationService,
	tasks TaskService,
	translator Translator,
) *Handlers {
	return &Handlers{
		users:         users,
		graph:         graph,
		posts:         posts,
		feed:          feed,
		messages:      messages,
		notifications: notifications,
		tasks:         tasks,
		translator:    translator,
	}
}

// actingUser returns the user ID resolved by the identity middleware.
func actingUser(c *gin.Context) uint {
	return middleware.UserIDFrom(c)
}

// pageParams reads ?page= and ?page_size= with the shared defaults.
func pageParams(c *gin.Context) (int, int) {
	page := utils.AtoiDefault(c.Query("page"), 1)
	pageSize := utils.AtoiDefault(c.Query("page_size"), 20)
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
