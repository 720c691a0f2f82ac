// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a user is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - A username collision surfaces as gorm.ErrDuplicatedKey via the unique
//     index on users.username.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-microblog-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateUser inserts a new user with the given handle and profile text.
func CreateUser(ctx context.Context, db *gorm.DB, username, aboutMe string) (*domain.User, error) {
	u := &domain.User{
		Username:  username,
		AboutMe:   aboutMe,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// GetUser fetches a user by primary key, or ErrNotFound if missing.
func GetUser(ctx context.Context, db *gorm.DB, id uint) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByUsername fetches a user by handle, or ErrNotFound if missing.
func GetUserByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Where("username = ?", username).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile updates the handle and profile text of a user. Returns
// ErrNotFound when the user does not exist; a taken username surfaces as
// gorm.ErrDuplicatedKey.
func UpdateProfile(ctx context.Context, db *gorm.DB, id uint, username, aboutMe string) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"username": username, "about_me": aboutMe})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// TouchLastSeen refreshes the user's last_seen timestamp. Missing users are
// ignored; presence tracking is best-effort.
func TouchLastSeen(ctx context.Context, db *gorm.DB, id uint, now time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Update("last_seen", now.UTC()).Error
}

// SetLastMessageReadTime moves the unread watermark forward. Used by the
// messaging channel when the user opens their inbox.
func SetLastMessageReadTime(ctx context.Context, db *gorm.DB, id uint, now time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Update("last_message_read_time", now.UTC())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
