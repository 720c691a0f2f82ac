// Package services – MessageService
//
// The pairwise messaging channel. Sending a message and publishing the
// recipient's refreshed unread_message_count notification happen in one
// transaction, so a reader polling the notification stream can never
// observe a count that disagrees with the store. Unread counting is
// watermark-based: everything newer than the recipient's
// last_message_read_time is unread.
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-microblog-backend/internal/domain"
	"github.com/tbourn/go-microblog-backend/internal/repo"
)

// UnreadCountNotification is the stream event name clients subscribe to for
// inbox badge updates.
const UnreadCountNotification = "unread_message_count"

// MessageService owns private messages and the unread watermark.
type MessageService struct {
	DB            *gorm.DB
	Notifications *NotificationService

	// MaxBodyRunes guards message length; 0 disables the check.
	MaxBodyRunes int
}

// NewMessageService constructs a MessageService with the standard body limit.
func NewMessageService(db *gorm.DB, nt *NotificationService) *MessageService {
	return &MessageService{DB: db, Notifications: nt, MaxBodyRunes: 280}
}

// Send delivers a message from sender to recipient and pushes the
// recipient's recomputed unread count into their notification stream, all
// within one transaction. Fails with ErrUserNotFound when the recipient
// does not exist; nothing is written in that case.
func (s *MessageService) Send(ctx context.Context, senderID, recipientID uint, body string) (*domain.Message, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "Send",
		trace.WithAttributes(
			attribute.Int64("sender.id", int64(senderID)),
			attribute.Int64("recipient.id", int64(recipientID)),
		),
	)
	defer span.End()

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyBody
	}
	if s.MaxBodyRunes > 0 && utf8.RuneCountInString(body) > s.MaxBodyRunes {
		return nil, ErrTooLong
	}

	recipient, err := repo.GetUser(ctx, s.DB, recipientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var msg *domain.Message
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := repo.CreateMessage(ctx, tx, senderID, recipientID, body)
		if err != nil {
			return err
		}
		msg = m

		unread, err := repo.CountUnread(ctx, tx, recipientID, recipient.LastMessageReadTime)
		if err != nil {
			return err
		}
		_, err = s.Notifications.PublishTx(ctx, tx, recipientID, UnreadCountNotification, unread)
		return err
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// UnreadCount returns how many messages the user has not read yet.
func (s *MessageService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	u, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	return repo.CountUnread(ctx, s.DB, userID, u.LastMessageReadTime)
}

// MarkAllRead moves the user's watermark to now and unconditionally pushes
// an unread_message_count notification with payload 0, giving polling
// clients a fresh badge even when nothing was unread.
func (s *MessageService) MarkAllRead(ctx context.Context, userID uint) error {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "MarkAllRead",
		trace.WithAttributes(attribute.Int64("user.id", int64(userID))),
	)
	defer span.End()

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.SetLastMessageReadTime(ctx, tx, userID, time.Now()); err != nil {
			return err
		}
		_, err := s.Notifications.PublishTx(ctx, tx, userID, UnreadCountNotification, 0)
		return err
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}

// Received returns a page of the user's inbox, newest first, plus the total
// count.
func (s *MessageService) Received(ctx context.Context, userID uint, page, pageSize int) ([]domain.Message, int64, error) {
	page, pageSize = normalizePage(page, pageSize)
	total, err := repo.CountReceived(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Message{}, 0, nil
	}
	items, err := repo.ListReceivedPage(ctx, s.DB, userID, (page-1)*pageSize, pageSize)
	return items, total, err
}
