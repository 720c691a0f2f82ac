// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for private
// messages. Unread counting is derived from the recipient's watermark
// (users.last_message_read_time), never stored per-row.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-microblog-backend/internal/domain"
)

// CreateMessage appends a private message from sender to recipient.
func CreateMessage(ctx context.Context, db *gorm.DB, senderID, recipientID uint, body string) (*domain.Message, error) {
	m := &domain.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Body:        body,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// CountUnread returns how many messages arrived for the recipient after the
// given watermark.
func CountUnread(ctx context.Context, db *gorm.DB, recipientID uint, since time.Time) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("recipient_id = ? AND created_at > ?", recipientID, since).
		Count(&n).Error
	return n, err
}

// CountReceived returns the recipient's total message count.
func CountReceived(ctx context.Context, db *gorm.DB, recipientID uint) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("recipient_id = ?", recipientID).
		Count(&n).Error
	return n, err
}

// ListReceivedPage returns a page of the recipient's messages, newest first.
func ListReceivedPage(ctx context.Context, db *gorm.DB, recipientID uint, offset, limit int) ([]domain.Message, error) {
	var out []domain.Message
	err := db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at desc").
		Order("id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
