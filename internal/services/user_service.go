// Package services – UserService
//
// The identity store. It resolves user references for every other
// component, maintains profile data, and tracks presence (last_seen).
// Authentication itself is out of scope: callers arrive with an already
// resolved user reference from the identity middleware.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/tbourn/go-microblog-backend/internal/domain"
	"github.com/tbourn/go-microblog-backend/internal/repo"
)

// UserService provides account lookup and profile maintenance.
type UserService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// AboutMaxLen caps profile text by rune length.
	AboutMaxLen int
}

// NewUserService constructs a UserService with sane defaults.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db, AboutMaxLen: 280}
}

// Register creates a new account with a unique username.
func (s *UserService) Register(ctx context.Context, username, aboutMe string) (*domain.User, error) {
	username = normalizeUsername(username)
	if username == "" {
		return nil, ErrEmptyBody
	}
	u, err := repo.CreateUser(ctx, s.DB, username, s.clipAbout(aboutMe))
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return u, nil
}

// Get fetches a user by ID.
func (s *UserService) Get(ctx context.Context, id uint) (*domain.User, error) {
	u, err := repo.GetUser(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// GetByUsername fetches a user by handle.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, err := repo.GetUserByUsername(ctx, s.DB, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdateProfile changes the acting user's handle and about text.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, username, aboutMe string) error {
	username = normalizeUsername(username)
	if username == "" {
		return ErrEmptyBody
	}
	err := repo.UpdateProfile(ctx, s.DB, userID, username, s.clipAbout(aboutMe))
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return ErrUsernameTaken
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// TouchLastSeen records presence for the acting user. Errors are returned
// but callers typically only log them; presence is best-effort.
func (s *UserService) TouchLastSeen(ctx context.Context, userID uint) error {
	return repo.TouchLastSeen(ctx, s.DB, userID, time.Now())
}

// clipAbout truncates profile text to the configured maximum rune length.
func (s *UserService) clipAbout(about string) string {
	about = strings.TrimSpace(about)
	if s.AboutMaxLen > 0 && utf8.RuneCountInString(about) > s.AboutMaxLen {
		return string([]rune(about)[:s.AboutMaxLen])
	}
	return about
}

// normalizeUsername trims whitespace and collapses inner runs to one space.
func normalizeUsername(s string) string {
	return usernameWS.ReplaceAllString(strings.TrimSpace(s), " ")
}

// usernameWS collapses consecutive whitespace to a single space.
var usernameWS = regexp.MustCompile(`\s+`)
