// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Post
// ledger: append-only writes and the newest-first listing queries behind
// the profile, explore, and home feed views.
//
// Ordering: every listing is created_at DESC, id DESC. The secondary key
// keeps posts written within the same clock tick in insertion order
// (higher id first), which the pagination contract relies on.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-microblog-backend/internal/domain"
)

// CreatePost appends a post to the ledger. Posts are never updated after
// this insert.
func CreatePost(ctx context.Context, db *gorm.DB, authorID uint, body, language string) (*domain.Post, error) {
	p := &domain.Post{
		AuthorID:  authorID,
		Body:      body,
		Language:  language,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// GetPost fetches a post by primary key, or ErrNotFound if missing.
func GetPost(ctx context.Context, db *gorm.DB, id uint) (*domain.Post, error) {
	var p domain.Post
	if err := db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPostsByIDs fetches the given posts preserving newest-first order.
// Missing IDs are skipped; the search index may briefly reference a post
// the ledger no longer has.
func GetPostsByIDs(ctx context.Context, db *gorm.DB, ids []uint) ([]domain.Post, error) {
	if len(ids) == 0 {
		return []domain.Post{}, nil
	}
	var out []domain.Post
	err := db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at desc").
		Order("id desc").
		Find(&out).Error
	return out, err
}

// CountPostsByAuthor returns the author's total post count.
func CountPostsByAuthor(ctx context.Context, db *gorm.DB, authorID uint) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Post{}).
		Where("author_id = ?", authorID).
		Count(&total).Error
	return total, err
}

// ListPostsByAuthorPage returns a page of the author's posts, newest first.
func ListPostsByAuthorPage(ctx context.Context, db *gorm.DB, authorID uint, offset, limit int) ([]domain.Post, error) {
	var out []domain.Post
	err := db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at desc").
		Order("id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountPosts returns the global post count (explore view).
func CountPosts(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Post{}).Count(&total).Error
	return total, err
}

// ListPostsPage returns a page of all posts, newest first (explore view).
func ListPostsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Post, error) {
	var out []domain.Post
	err := db.WithContext(ctx).
		Order("created_at desc").
		Order("id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountPostsByAuthors returns the total count of posts authored by any of
// the given users (home feed).
func CountPostsByAuthors(ctx context.Context, db *gorm.DB, authorIDs []uint) (int64, error) {
	if len(authorIDs) == 0 {
		return 0, nil
	}
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Post{}).
		Where("author_id IN ?", authorIDs).
		Count(&total).Error
	return total, err
}

// ListPostsByAuthorsPage returns a page of posts authored by any of the
// given users, newest first (home feed).
func ListPostsByAuthorsPage(ctx context.Context, db *gorm.DB, authorIDs []uint, offset, limit int) ([]domain.Post, error) {
	if len(authorIDs) == 0 {
		return []domain.Post{}, nil
	}
	var out []domain.Post
	err := db.WithContext(ctx).
		Where("author_id IN ?", authorIDs).
		Order("created_at desc").
		Order("id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ForEachPostByAuthor streams the author's posts oldest-first in fixed-size
// batches, invoking fn per post. Used by the export runner so a large
// history never has to fit in memory at once.
func ForEachPostByAuthor(ctx context.Context, db *gorm.DB, authorID uint, batch int, fn func(p *domain.Post) error) error {
	if batch <= 0 {
		batch = 100
	}
	var rows []domain.Post
	res := db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at asc").
		Order("id asc").
		FindInBatches(&rows, batch, func(tx *gorm.DB, _ int) error {
			for i := range rows {
				if err := fn(&rows[i]); err != nil {
					return err
				}
			}
			return nil
		})
	return res.Error
}
