package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tbourn/go-microblog-backend/internal/domain"
)

func TestSend_Validation(t *testing.T) {
	db := newSvcDB(t)
	a := mustRegister(t, db, "a")
	b := mustRegister(t, db, "b")
	svc := NewMessageService(db, NewNotificationService(db))

	if _, err := svc.Send(context.Background(), a.ID, b.ID, "  "); !errors.Is(err, ErrEmptyBody) {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
	if _, err := svc.Send(context.Background(), a.ID, b.ID, strings.Repeat("x", 281)); !errors.Is(err, ErrTooLong) {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}
}

func TestSend_UnknownRecipient_NoSideEffects(t *testing.T) {
	db := newSvcDB(t)
	a := mustRegister(t, db, "a")
	svc := NewMessageService(db, NewNotificationService(db))

	if _, err := svc.Send(context.Background(), a.ID, 999, "hi"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	var msgs, notes int64
	db.Model(&domain.Message{}).Count(&msgs)
	db.Model(&domain.Notification{}).Count(&notes)
	if msgs != 0 || notes != 0 {
		t.Fatalf("failed send left side effects: messages=%d notifications=%d", msgs, notes)
	}
}

func TestSend_PushesUnreadCountToRecipient(t *testing.T) {
	db := newSvcDB(t)
	a := mustRegister(t, db, "a")
	b := mustRegister(t, db, "b")
	notif := NewNotificationService(db)
	svc := NewMessageService(db, notif)

	if _, err := svc.Send(context.Background(), a.ID, b.ID, "first"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if _, err := svc.Send(context.Background(), a.ID, b.ID, "second"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	n, err := svc.UnreadCount(context.Background(), b.ID)
	if err != nil || n != 2 {
		t.Fatalf("UnreadCount: got %d err=%v", n, err)
	}

	events, err := notif.Since(context.Background(), b.ID, 0)
	if err != nil {
		t.Fatalf("Since: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected one notification per send, got %d", len(events))
	}
	last := events[len(events)-1]
	if last.Name != UnreadCountNotification {
		t.Fatalf("unexpected notification name %q", last.Name)
	}
	if v, ok := last.Data().(float64); !ok || v != 2 {
		t.Fatalf("expected unread count payload 2, got %#v", last.Data())
	}

	// The sender's stream is untouched.
	mine, err := notif.Since(context.Background(), a.ID, 0)
	if err != nil || len(mine) != 0 {
		t.Fatalf("sender stream should be empty: %v err=%v", mine, err)
	}
}

func TestMarkAllRead_ZeroesBadgeAndPublishes(t *testing.T) {
	db := newSvcDB(t)
	a := mustRegister(t, db, "a")
	b := mustRegister(t, db, "b")
	notif := NewNotificationService(db)
	svc := NewMessageService(db, notif)

	if _, err := svc.Send(context.Background(), a.ID, b.ID, "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := svc.MarkAllRead(context.Background(), b.ID); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}

	n, err := svc.UnreadCount(context.Background(), b.ID)
	if err != nil || n != 0 {
		t.Fatalf("UnreadCount after read: got %d err=%v", n, err)
	}

	events, err := notif.Since(context.Background(), b.ID, 0)
	if err != nil {
		t.Fatalf("Since: %v", err)
	}
	last := events[len(events)-1]
	if last.Name != UnreadCountNotification {
		t.Fatalf("unexpected notification name %q", last.Name)
	}
	if v, ok := last.Data().(float64); !ok || v != 0 {
		t.Fatalf("expected zeroed badge, got %#v", last.Data())
	}
}

func TestMarkAllRead_PublishesEvenWithoutUnread(t *testing.T) {
	db := newSvcDB(t)
	b := mustRegister(t, db, "b")
	notif := NewNotificationService(db)
	svc := NewMessageService(db, notif)

	if err := svc.MarkAllRead(context.Background(), b.ID); err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	events, err := notif.Since(context.Background(), b.ID, 0)
	if err != nil || len(events) != 1 {
		t.Fatalf("expected the unconditional badge event, got %v err=%v", events, err)
	}
}

func TestMarkAllRead_UnknownUser(t *testing.T) {
	db := newSvcDB(t)
	svc := NewMessageService(db, NewNotificationService(db))

	if err := svc.MarkAllRead(context.Background(), 999); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestReceived_PagesInbox(t *testing.T) {
	db := newSvcDB(t)
	a := mustRegister(t, db, "a")
	b := mustRegister(t, db, "b")
	svc := NewMessageService(db, NewNotificationService(db))

	for _, body := range []string{"one", "two", "three"} {
		if _, err := svc.Send(context.Background(), a.ID, b.ID, body); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}

	items, total, err := svc.Received(context.Background(), b.ID, 1, 2)
	if err != nil {
		t.Fatalf("Received: %v", err)
	}
	if total != 3 || len(items) != 2 {
		t.Fatalf("got total=%d len=%d", total, len(items))
	}
	if items[0].Body != "three" {
		t.Fatalf("expected newest first, got %q", items[0].Body)
	}
}
