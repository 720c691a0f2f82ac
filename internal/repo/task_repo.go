// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for background
// task records.
//
// Launch atomicity: CreateTask relies on the partial-style unique index
// ux_tasks_active over (user_id, name, active). Running rows carry
// active=1; finished rows carry active=NULL, and SQLite treats NULLs as
// distinct, so the index only ever constrains the running row. Two
// concurrent launches for the same (user, name) therefore race on a single
// INSERT and exactly one wins; the loser observes gorm.ErrDuplicatedKey.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-microblog-backend/internal/domain"
)

// CreateTask inserts a new running task row. Returns gorm.ErrDuplicatedKey
// when the user already has an active task of the same name.
func CreateTask(ctx context.Context, db *gorm.DB, userID uint, name, description string) (*domain.Task, error) {
	active := true
	t := &domain.Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		Description: description,
		Active:      &active,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// GetTask fetches a task by ID, or ErrNotFound if missing.
func GetTask(ctx context.Context, db *gorm.DB, id string) (*domain.Task, error) {
	var t domain.Task
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetActiveTask returns the user's running task of the given name, or
// ErrNotFound when none is active.
func GetActiveTask(ctx context.Context, db *gorm.DB, userID uint, name string) (*domain.Task, error) {
	var t domain.Task
	err := db.WithContext(ctx).
		Where("user_id = ? AND name = ? AND complete = ?", userID, name, false).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CompleteTask marks the task finished and stores its result. Clearing
// `active` (to NULL) releases the uniqueness slot so the next launch of the
// same task name can succeed. Returns ErrNotFound when the task does not
// exist or was already complete.
func CompleteTask(ctx context.Context, db *gorm.DB, id, result string) error {
	res := db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("id = ? AND complete = ?", id, false).
		Updates(map[string]any{"complete": true, "active": nil, "result": result})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
