// Package services – PostService
//
// The append-only post ledger. Creation runs the body through the language
// detection collaborator (best-effort: a detection failure stores the empty
// tag and never fails the write) and feeds the new post into the search
// index. Listing queries serve the profile and explore views; Search
// delegates ranking entirely to the index collaborator.
//
// Observability: the hot paths are OpenTelemetry-instrumented; spans carry
// author and pagination attributes.
package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-microblog-backend/internal/domain"
	"github.com/tbourn/go-microblog-backend/internal/langdetect"
	"github.com/tbourn/go-microblog-backend/internal/repo"
	"github.com/tbourn/go-microblog-backend/internal/search"
)

// PostService owns the lifecycle of posts.
type PostService struct {
	DB       *gorm.DB
	Detector langdetect.Detector
	Index    search.Index

	// MaxBodyRunes guards post length; 0 disables the check.
	MaxBodyRunes int
}

// NewPostService constructs a PostService with the standard body limit.
func NewPostService(db *gorm.DB, det langdetect.Detector, idx search.Index) *PostService {
	return &PostService{DB: db, Detector: det, Index: idx, MaxBodyRunes: 280}
}

// Create appends a post for the author. The body is validated, the language
// tag is detected best-effort, and the stored post is added to the search
// index. Fails with ErrUserNotFound when the author does not exist.
func (s *PostService) Create(ctx context.Context, authorID uint, body string) (*domain.Post, error) {
	tr := otel.Tracer("services/PostService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.Int64("author.id", int64(authorID))),
	)
	defer span.End()

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyBody
	}
	if s.MaxBodyRunes > 0 && utf8.RuneCountInString(body) > s.MaxBodyRunes {
		return nil, ErrTooLong
	}
	if _, err := repo.GetUser(ctx, s.DB, authorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	lang := ""
	if s.Detector != nil {
		if tag, err := s.Detector.Detect(body); err == nil {
			lang = tag
		}
		// Indeterminate detection stores the empty tag; the post itself
		// always goes through.
	}

	p, err := repo.CreatePost(ctx, s.DB, authorID, body, lang)
	if err != nil {
		return nil, err
	}
	if s.Index != nil {
		s.Index.Add(p.ID, p.Body)
	}
	return p, nil
}

// ListByAuthor returns a page of the author's posts, newest first, plus the
// total count. Fails with ErrUserNotFound for unknown authors.
func (s *PostService) ListByAuthor(ctx context.Context, authorID uint, page, pageSize int) ([]domain.Post, int64, error) {
	tr := otel.Tracer("services/PostService")
	ctx, span := tr.Start(ctx, "ListByAuthor",
		trace.WithAttributes(
			attribute.Int64("author.id", int64(authorID)),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if _, err := repo.GetUser(ctx, s.DB, authorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrUserNotFound
		}
		return nil, 0, err
	}

	page, pageSize = normalizePage(page, pageSize)
	total, err := repo.CountPostsByAuthor(ctx, s.DB, authorID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Post{}, 0, nil
	}
	items, err := repo.ListPostsByAuthorPage(ctx, s.DB, authorID, (page-1)*pageSize, pageSize)
	return items, total, err
}

// ListAll returns a page of every post in the ledger, newest first (the
// explore view).
func (s *PostService) ListAll(ctx context.Context, page, pageSize int) ([]domain.Post, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	total, err := repo.CountPosts(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Post{}, 0, nil
	}
	items, err := repo.ListPostsPage(ctx, s.DB, (page-1)*pageSize, pageSize)
	return items, total, err
}

// Search delegates ranking to the index collaborator and resolves the
// returned IDs against the ledger. Empty result pages are valid, not errors.
func (s *PostService) Search(ctx context.Context, query string, page, pageSize int) ([]domain.Post, int64, error) {
	tr := otel.Tracer("services/PostService")
	ctx, span := tr.Start(ctx, "Search",
		trace.WithAttributes(
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if s.Index == nil {
		return []domain.Post{}, 0, nil
	}
	page, pageSize = normalizePage(page, pageSize)
	ids, total := s.Index.Search(query, page, pageSize)
	if len(ids) == 0 {
		return []domain.Post{}, int64(total), nil
	}
	posts, err := repo.GetPostsByIDs(ctx, s.DB, ids)
	if err != nil {
		return nil, 0, err
	}
	// Preserve the index's ranking, not the ledger's recency order.
	byID := make(map[uint]domain.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	out := make([]domain.Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, int64(total), nil
}

// WarmIndex replays the whole ledger into the search index. Called once at
// boot so restarts do not lose searchability.
func (s *PostService) WarmIndex(ctx context.Context) error {
	if s.Index == nil {
		return nil
	}
	const batch = 500
	var rows []domain.Post
	res := s.DB.WithContext(ctx).
		Order("id asc").
		FindInBatches(&rows, batch, func(_ *gorm.DB, _ int) error {
			for i := range rows {
				s.Index.Add(rows[i].ID, rows[i].Body)
			}
			return nil
		})
	return res.Error
}

// normalizePage applies the shared pagination defaults.
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return page, pageSize
}
