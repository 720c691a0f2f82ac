// Package services – FeedService
//
// The feed composer: it joins the social graph's author set with the post
// ledger to produce a user's home timeline. Purely a read-side orchestrator;
// it owns no state of its own.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-microblog-backend/internal/domain"
	"github.com/tbourn/go-microblog-backend/internal/repo"
)

// FeedService composes home timelines from the graph and the ledger.
type FeedService struct {
	DB    *gorm.DB
	Graph *GraphService
}

// NewFeedService constructs a FeedService.
func NewFeedService(db *gorm.DB, graph *GraphService) *FeedService {
	return &FeedService{DB: db, Graph: graph}
}

// HomeFeed returns one page of posts whose author is the user or someone the
// user follows, newest first (ties: higher post ID first), plus the total
// count for pagination. Fails with ErrUserNotFound for unknown users.
func (s *FeedService) HomeFeed(ctx context.Context, userID uint, page, pageSize int) ([]domain.Post, int64, error) {
	tr := otel.Tracer("services/FeedService")
	ctx, span := tr.Start(ctx, "HomeFeed",
		trace.WithAttributes(
			attribute.Int64("user.id", int64(userID)),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if _, err := repo.GetUser(ctx, s.DB, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrUserNotFound
		}
		return nil, 0, err
	}

	authors, err := s.Graph.FeedAuthors(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	page, pageSize = normalizePage(page, pageSize)
	total, err := repo.CountPostsByAuthors(ctx, s.DB, authors)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Post{}, 0, nil
	}
	items, err := repo.ListPostsByAuthorsPage(ctx, s.DB, authors, (page-1)*pageSize, pageSize)
	return items, total, err
}
