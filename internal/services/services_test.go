package services

import (
	"context"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-microblog-backend/internal/domain"
)

// ---------- shared test helpers ----------

// newSvcDB opens a fresh in-memory database with the full schema.
// TranslateError matches production so uniqueness violations arrive as
// gorm.ErrDuplicatedKey.
func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	err = db.AutoMigrate(
		&domain.User{},
		&domain.Follow{},
		&domain.Post{},
		&domain.Message{},
		&domain.Notification{},
		&domain.Task{},
	)
	if err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func mustRegister(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	u, err := NewUserService(db).Register(context.Background(), username, "")
	if err != nil {
		t.Fatalf("register %q: %v", username, err)
	}
	return u
}

// fakeRunner records launched tasks without executing anything.
type fakeRunner struct {
	names   map[string]bool
	started []*domain.Task
}

func newFakeRunner(names ...string) *fakeRunner {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return &fakeRunner{names: m}
}

func (f *fakeRunner) Supports(name string) bool { return f.names[name] }

func (f *fakeRunner) Start(task *domain.Task) { f.started = append(f.started, task) }

// fixedDetector always answers with the same tag.
type fixedDetector struct {
	tag string
	err error
}

func (d fixedDetector) Detect(string) (string, error) { return d.tag, d.err }
