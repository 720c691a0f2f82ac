// Package services – NotificationService
//
// This file implements the per-user notification stream: an append-only,
// pollable event log. Clients poll GET /notifications?since=<ts> and keep
// the highest timestamp they have seen; the stream guarantees they never
// miss or duplicate an event because timestamps are strictly increasing per
// owner.
//
// Timestamps are float64 unix seconds. A publish never trusts the wall
// clock alone: inside the insert transaction it reads the owner's current
// maximum and takes max(now, last+epsilon), so two publishes within one
// clock tick still order correctly.
package services

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-microblog-backend/internal/domain"
	"github.com/tbourn/go-microblog-backend/internal/repo"
)

// timestampEpsilon is the minimum spacing between two notifications for the
// same owner when the wall clock has not advanced.
const timestampEpsilon = 1e-6

// NotificationService owns the append-only notification log.
type NotificationService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

// Publish appends one event to the owner's log in its own transaction.
// Payload must be JSON-serializable.
func (s *NotificationService) Publish(ctx context.Context, ownerID uint, name string, payload any) (*domain.Notification, error) {
	var n *domain.Notification
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		n, err = s.PublishTx(ctx, tx, ownerID, name, payload)
		return err
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

// PublishTx appends one event within the caller's transaction. Services
// that must keep a state change and its notification atomic (message send,
// task transitions) compose through this.
func (s *NotificationService) PublishTx(ctx context.Context, tx *gorm.DB, ownerID uint, name string, payload any) (*domain.Notification, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	last, err := repo.MaxTimestamp(ctx, tx, ownerID)
	if err != nil {
		return nil, err
	}
	ts := float64(time.Now().UnixNano()) / 1e9
	if ts <= last {
		ts = last + timestampEpsilon
	}

	n := &domain.Notification{
		UserID:    ownerID,
		Name:      name,
		Payload:   string(raw),
		Timestamp: ts,
	}
	if err := repo.InsertNotification(ctx, tx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Since returns the owner's notifications newer than the given timestamp,
// ascending. The read has no consumption side effect; polling again with
// the same floor is idempotent, and an empty result is not an error.
func (s *NotificationService) Since(ctx context.Context, ownerID uint, since float64) ([]domain.Notification, error) {
	tr := otel.Tracer("services/NotificationService")
	ctx, span := tr.Start(ctx, "Since",
		trace.WithAttributes(
			attribute.Int64("user.id", int64(ownerID)),
			attribute.Float64("since", since),
		),
	)
	defer span.End()

	return repo.ListSince(ctx, s.DB, ownerID, since)
}
