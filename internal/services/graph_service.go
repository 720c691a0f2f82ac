// Package services – GraphService
//
// The social graph: directed follow edges between users. Follow and
// unfollow are idempotent so a duplicate submission (e.g. a double-click)
// neither errors nor duplicates an edge; self-edges are rejected before any
// write. The graph never publishes notifications.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-microblog-backend/internal/repo"
)

// GraphService maintains follow edges and answers feed-membership queries.
type GraphService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewGraphService constructs a GraphService.
func NewGraphService(db *gorm.DB) *GraphService {
	return &GraphService{DB: db}
}

// Follow creates the follower -> followee edge. It fails with ErrSelfFollow
// when the two are the same user and with ErrUserNotFound when the followee
// does not exist; an existing edge is a silent success.
func (s *GraphService) Follow(ctx context.Context, followerID, followeeID uint) error {
	tr := otel.Tracer("services/GraphService")
	ctx, span := tr.Start(ctx, "Follow",
		trace.WithAttributes(
			attribute.Int64("follower.id", int64(followerID)),
			attribute.Int64("followee.id", int64(followeeID)),
		),
	)
	defer span.End()

	if followerID == followeeID {
		return ErrSelfFollow
	}
	if err := s.ensureUser(ctx, followeeID); err != nil {
		return err
	}
	_, err := repo.CreateFollow(ctx, s.DB, followerID, followeeID)
	return err
}

// Unfollow removes the follower -> followee edge. Same guards as Follow; a
// missing edge is a silent no-op, keeping the operation idempotent.
func (s *GraphService) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	tr := otel.Tracer("services/GraphService")
	ctx, span := tr.Start(ctx, "Unfollow",
		trace.WithAttributes(
			attribute.Int64("follower.id", int64(followerID)),
			attribute.Int64("followee.id", int64(followeeID)),
		),
	)
	defer span.End()

	if followerID == followeeID {
		return ErrSelfFollow
	}
	if err := s.ensureUser(ctx, followeeID); err != nil {
		return err
	}
	_, err := repo.DeleteFollow(ctx, s.DB, followerID, followeeID)
	return err
}

// IsFollowing reports whether a follows b.
func (s *GraphService) IsFollowing(ctx context.Context, a, b uint) (bool, error) {
	return repo.FollowExists(ctx, s.DB, a, b)
}

// FeedAuthors returns the user plus everyone they follow: the author set the
// feed composer draws the home timeline from. Self-inclusive so users always
// see their own posts.
func (s *GraphService) FeedAuthors(ctx context.Context, userID uint) ([]uint, error) {
	ids, err := repo.ListFollowedIDs(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	return append(ids, userID), nil
}

// Counts returns (followers, following) for a profile page.
func (s *GraphService) Counts(ctx context.Context, userID uint) (int64, int64, error) {
	followers, err := repo.CountFollowers(ctx, s.DB, userID)
	if err != nil {
		return 0, 0, err
	}
	following, err := repo.CountFollowing(ctx, s.DB, userID)
	if err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}

// ensureUser maps a missing user to ErrUserNotFound before any mutation.
func (s *GraphService) ensureUser(ctx context.Context, id uint) error {
	if _, err := repo.GetUser(ctx, s.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
