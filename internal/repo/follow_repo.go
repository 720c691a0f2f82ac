// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the social
// graph (Follow edges).
//
// Idempotence: CreateFollow uses INSERT ... ON CONFLICT DO NOTHING against
// the composite unique index on (follower_id, followed_id), so a duplicate
// follow is a silent no-op rather than an error. DeleteFollow reports
// whether an edge was actually removed; callers treat zero rows as a no-op.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-microblog-backend/internal/domain"
)

// CreateFollow inserts the (follower, followed) edge if it does not exist.
// Returns true when a new edge was created, false when it already existed.
func CreateFollow(ctx context.Context, db *gorm.DB, followerID, followedID uint) (bool, error) {
	f := &domain.Follow{
		FollowerID: followerID,
		FollowedID: followedID,
		CreatedAt:  time.Now().UTC(),
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(f)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteFollow removes the (follower, followed) edge. Returns true when an
// edge was removed, false when it was already absent.
func DeleteFollow(ctx context.Context, db *gorm.DB, followerID, followedID uint) (bool, error) {
	res := db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&domain.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FollowExists reports whether follower follows followed.
func FollowExists(ctx context.Context, db *gorm.DB, followerID, followedID uint) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&n).Error
	return n > 0, err
}

// ListFollowedIDs returns the IDs of everyone the user follows (the user
// itself is not included; feed composition adds it).
func ListFollowedIDs(ctx context.Context, db *gorm.DB, followerID uint) ([]uint, error) {
	var ids []uint
	err := db.WithContext(ctx).
		Model(&domain.Follow{}).
		Where("follower_id = ?", followerID).
		Order("followed_id").
		Pluck("followed_id", &ids).Error
	return ids, err
}

// CountFollowing returns how many users the given user follows.
func CountFollowing(ctx context.Context, db *gorm.DB, userID uint) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Follow{}).
		Where("follower_id = ?", userID).
		Count(&n).Error
	return n, err
}

// CountFollowers returns how many users follow the given user.
func CountFollowers(ctx context.Context, db *gorm.DB, userID uint) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Follow{}).
		Where("followed_id = ?", userID).
		Count(&n).Error
	return n, err
}
