// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the per-user
// notification log.
//
// The log is append-only: rows are inserted by InsertNotification and read
// back by ListSince; nothing updates or deletes them in normal operation.
// Timestamp assignment (the strictly-increasing-per-owner rule) lives in
// the service layer, which calls MaxTimestamp and InsertNotification inside
// one transaction.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-microblog-backend/internal/domain"
)

// MaxTimestamp returns the largest notification timestamp recorded for the
// owner, or 0 when the log is empty.
func MaxTimestamp(ctx context.Context, db *gorm.DB, userID uint) (float64, error) {
	var ts float64
	err := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ?", userID).
		Select("COALESCE(MAX(timestamp), 0)").
		Scan(&ts).Error
	return ts, err
}

// InsertNotification appends one event to the owner's log. The caller is
// responsible for having assigned a timestamp strictly greater than every
// existing one for that owner.
func InsertNotification(ctx context.Context, db *gorm.DB, n *domain.Notification) error {
	return db.WithContext(ctx).Create(n).Error
}

// ListSince returns the owner's notifications with timestamp strictly
// greater than since, ascending. The query is idempotent: polling again
// with the same floor returns the same rows.
func ListSince(ctx context.Context, db *gorm.DB, userID uint, since float64) ([]domain.Notification, error) {
	var out []domain.Notification
	err := db.WithContext(ctx).
		Where("user_id = ? AND timestamp > ?", userID, since).
		Order("timestamp asc").
		Find(&out).Error
	return out, err
}
