// Package domain defines the persistence models for users, posts, the follow
// graph, private messages, notifications, and background tasks. These types
// are mapped with GORM and form the core data layer of the microblog backend.
package domain

import (
	"encoding/json"
	"time"
)

// User represents a registered account. Usernames are unique across the
// whole system and act as the public handle; the numeric ID is the internal
// reference used by every other table.
//
// Fields:
//   - ID: autoincrement primary key.
//   - Username: unique public handle (indexed).
//   - AboutMe: free-form profile text.
//   - LastSeen: last request timestamp, refreshed by the identity middleware.
//   - LastMessageReadTime: watermark for unread-message counting; messages
//     created after this instant count as unread.
type User struct {
	ID                  uint      `json:"id"        gorm:"primaryKey"`
	Username            string    `json:"username"  gorm:"type:varchar(64);not null;uniqueIndex:ux_users_username"`
	AboutMe             string    `json:"about_me"  gorm:"type:varchar(280)"`
	LastSeen            time.Time `json:"last_seen"`
	LastMessageReadTime time.Time `json:"-"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"-"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Follow is a directed edge in the social graph: FollowerID follows
// FollowedID. The composite unique index makes the follow action idempotent
// at the storage level; a duplicate submission cannot create a second edge.
// Self-edges are rejected in the service layer before any write.
type Follow struct {
	ID         uint      `json:"id"          gorm:"primaryKey"`
	FollowerID uint      `json:"follower_id" gorm:"not null;index;uniqueIndex:ux_follows_pair"`
	FollowedID uint      `json:"followed_id" gorm:"not null;index;uniqueIndex:ux_follows_pair"`
	CreatedAt  time.Time `json:"created_at"`

	Follower User `json:"-" gorm:"foreignKey:FollowerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Followed User `json:"-" gorm:"foreignKey:FollowedID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Follow.
func (Follow) TableName() string { return "follows" }

// Post is a single authored entry in the append-only post ledger. Posts are
// immutable after creation. Language carries a best-effort BCP 47 tag from
// the detector, or "" when detection failed.
//
// Feed ordering is created_at descending with ID descending as the
// tie-break, so two posts written within the same clock tick still have a
// stable newest-first order (higher ID = inserted later).
type Post struct {
	ID        uint      `json:"id"        gorm:"primaryKey"`
	AuthorID  uint      `json:"author_id" gorm:"not null;index:idx_posts_author,priority:1"`
	Body      string    `json:"body"      gorm:"type:varchar(280);not null"`
	Language  string    `json:"language,omitempty" gorm:"type:varchar(8)"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_posts_author,priority:2;index"`

	Author User `json:"-" gorm:"foreignKey:AuthorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Post.
func (Post) TableName() string { return "posts" }

// Message is a directed private message between two users. Immutable; the
// recipient's unread count is derived by comparing CreatedAt against the
// recipient's LastMessageReadTime watermark, never stored on the row.
type Message struct {
	ID          uint      `json:"id"           gorm:"primaryKey"`
	SenderID    uint      `json:"sender_id"    gorm:"not null;index"`
	RecipientID uint      `json:"recipient_id" gorm:"not null;index:idx_messages_recipient,priority:1"`
	Body        string    `json:"body"         gorm:"type:varchar(280);not null"`
	CreatedAt   time.Time `json:"created_at"   gorm:"index:idx_messages_recipient,priority:2"`

	Sender    User `json:"-" gorm:"foreignKey:SenderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Recipient User `json:"-" gorm:"foreignKey:RecipientID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }

// Notification is one entry in a user's append-only event log, consumed by
// clients polling with ?since=<last seen timestamp>.
//
// Timestamp is a float64 unix time, strictly increasing per owner: the
// publisher assigns max(now, lastForOwner+epsilon) inside the insert
// transaction, so two rapid publishes never compare equal and the since
// protocol can neither miss nor duplicate an event.
type Notification struct {
	ID        uint    `json:"id"        gorm:"primaryKey"`
	UserID    uint    `json:"user_id"   gorm:"not null;index:idx_notifications_user,priority:1"`
	Name      string  `json:"name"      gorm:"type:varchar(128);not null;index"`
	Payload   string  `json:"-"         gorm:"type:text;not null"`
	Timestamp float64 `json:"timestamp" gorm:"not null;index:idx_notifications_user,priority:2"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Notification.
func (Notification) TableName() string { return "notifications" }

// Data decodes the JSON payload. Malformed payloads decode to nil, matching
// the tolerant read side of an append-only log.
func (n *Notification) Data() any {
	var v any
	if err := json.Unmarshal([]byte(n.Payload), &v); err != nil {
		return nil
	}
	return v
}

// Task records one background job owned by a user. Name is the task type
// (e.g. "export_posts").
//
// Active mirrors the completion flag for the storage layer: it is a pointer
// so the finished state is stored as NULL. SQLite treats NULLs as distinct
// in unique indexes, so ux_tasks_active ("one active task per user and
// type") only constrains rows that are still running. Launch is therefore a
// single constrained INSERT rather than a read-then-write race.
type Task struct {
	ID          string    `json:"id"          gorm:"type:char(36);primaryKey"`
	UserID      uint      `json:"user_id"     gorm:"not null;index;uniqueIndex:ux_tasks_active"`
	Name        string    `json:"name"        gorm:"type:varchar(128);not null;uniqueIndex:ux_tasks_active"`
	Description string    `json:"description" gorm:"type:varchar(128)"`
	Complete    bool      `json:"complete"    gorm:"not null;default:false"`
	Active      *bool     `json:"-"           gorm:"uniqueIndex:ux_tasks_active"`
	Result      string    `json:"result,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"-"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Task.
func (Task) TableName() string { return "tasks" }
