package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-microblog-backend/internal/config"
	"github.com/tbourn/go-microblog-backend/internal/domain"
	"github.com/tbourn/go-microblog-backend/internal/langdetect"
	"github.com/tbourn/go-microblog-backend/internal/search"
	"github.com/tbourn/go-microblog-backend/internal/services"
	"github.com/tbourn/go-microblog-backend/internal/translate"
)

// newAppRouter stands up the full engine on an in-memory database, the way
// cmd/server wires it (minus the task runner; these tests never launch one).
func newAppRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&domain.User{}, &domain.Follow{}, &domain.Post{},
		&domain.Message{}, &domain.Notification{}, &domain.Task{},
	)
	if err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	cfg := config.Config{
		GinMode:     gin.TestMode,
		APIBasePath: "/api/v1",
		RateRPS:     1000,
		RateBurst:   1000,
	}

	graph := services.NewGraphService(db)
	notif := services.NewNotificationService(db)
	svc := Services{
		Users:         services.NewUserService(db),
		Graph:         graph,
		Posts:         services.NewPostService(db, langdetect.NewStopwordDetector(), search.NewMemory()),
		Feed:          services.NewFeedService(db, graph),
		Messages:      services.NewMessageService(db, notif),
		Notifications: notif,
		Tasks:         services.NewTaskService(db, notif),
		Translator:    translate.Unconfigured{},
	}

	r := gin.New()
	RegisterRoutes(r, svc, cfg)
	return r, db
}

func seedRouterUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	u := &domain.User{Username: username}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestRouter_HealthIsOpen(t *testing.T) {
	r, _ := newAppRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRouter_MetricsIsOpen(t *testing.T) {
	r, _ := newAppRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "microblog_") {
		t.Fatalf("expected service metrics in exposition output")
	}
}

func TestRouter_UnknownRouteEnvelope(t *testing.T) {
	r, _ := newAppRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	var e map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if e["code"] != "not_found" {
		t.Fatalf("code = %v", e["code"])
	}
}

func TestRouter_APIRejectsAnonymous(t *testing.T) {
	r, _ := newAppRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/feed", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRouter_PostAndFeedRoundTrip(t *testing.T) {
	r, db := newAppRouter(t)
	u := seedRouterUser(t, db, "alice")

	body := strings.NewReader(`{"body":"hello from the router"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", strconv.FormatUint(uint64(u.ID), 10))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create post: status = %d\n%s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/feed", nil)
	req.Header.Set("X-User-ID", strconv.FormatUint(uint64(u.ID), 10))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("feed: status = %d\n%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "hello from the router") {
		t.Fatalf("feed does not contain the new post:\n%s", w.Body.String())
	}
}

func TestRouter_IdentityRefreshesPresence(t *testing.T) {
	r, db := newAppRouter(t)
	u := seedRouterUser(t, db, "bob")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/explore", nil)
	req.Header.Set("X-User-ID", strconv.FormatUint(uint64(u.ID), 10))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var got domain.User
	if err := db.First(&got, u.ID).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if got.LastSeen.IsZero() {
		t.Fatalf("last_seen not refreshed by the request")
	}
}
