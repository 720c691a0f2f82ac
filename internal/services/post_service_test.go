package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tbourn/go-microblog-backend/internal/langdetect"
	"github.com/tbourn/go-microblog-backend/internal/search"
)

func TestCreatePost_Validation(t *testing.T) {
	db := newSvcDB(t)
	u := mustRegister(t, db, "author")
	svc := NewPostService(db, nil, nil)

	if _, err := svc.Create(context.Background(), u.ID, "   "); !errors.Is(err, ErrEmptyBody) {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
	if _, err := svc.Create(context.Background(), u.ID, strings.Repeat("x", 281)); !errors.Is(err, ErrTooLong) {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}
	if _, err := svc.Create(context.Background(), 999, "hello"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestCreatePost_BodyAtLimitAccepted(t *testing.T) {
	db := newSvcDB(t)
	u := mustRegister(t, db, "author")
	svc := NewPostService(db, nil, nil)

	p, err := svc.Create(context.Background(), u.ID, strings.Repeat("y", 280))
	if err != nil {
		t.Fatalf("Create at limit: %v", err)
	}
	if p.ID == 0 {
		t.Fatalf("post not persisted: %+v", p)
	}
}

func TestCreatePost_LanguageDetection(t *testing.T) {
	db := newSvcDB(t)
	u := mustRegister(t, db, "author")

	svc := NewPostService(db, fixedDetector{tag: "es"}, nil)
	p, err := svc.Create(context.Background(), u.ID, "hola a todos")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Language != "es" {
		t.Fatalf("expected detected tag, got %q", p.Language)
	}

	// Indeterminate detection stores the empty tag and never fails the post.
	svc = NewPostService(db, fixedDetector{err: langdetect.ErrIndeterminate}, nil)
	p, err = svc.Create(context.Background(), u.ID, "zzz qqq")
	if err != nil {
		t.Fatalf("Create with indeterminate detector: %v", err)
	}
	if p.Language != "" {
		t.Fatalf("expected empty tag, got %q", p.Language)
	}
}

func TestListByAuthor_UnknownAuthor(t *testing.T) {
	db := newSvcDB(t)
	svc := NewPostService(db, nil, nil)

	if _, _, err := svc.ListByAuthor(context.Background(), 42, 1, 10); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestListAll_PaginatesNewestFirst(t *testing.T) {
	db := newSvcDB(t)
	u := mustRegister(t, db, "author")
	svc := NewPostService(db, nil, nil)

	for _, body := range []string{"one", "two", "three", "four", "five"} {
		if _, err := svc.Create(context.Background(), u.ID, body); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	posts, total, err := svc.ListAll(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if total != 5 || len(posts) != 2 {
		t.Fatalf("got total=%d len=%d", total, len(posts))
	}
	if posts[0].Body != "five" || posts[1].Body != "four" {
		t.Fatalf("unexpected first page: %q, %q", posts[0].Body, posts[1].Body)
	}

	last, _, err := svc.ListAll(context.Background(), 3, 2)
	if err != nil {
		t.Fatalf("ListAll last page: %v", err)
	}
	if len(last) != 1 || last[0].Body != "one" {
		t.Fatalf("unexpected last page: %+v", last)
	}
}

func TestSearch_RankingPreservedFromIndex(t *testing.T) {
	db := newSvcDB(t)
	u := mustRegister(t, db, "author")
	svc := NewPostService(db, nil, search.NewMemory())

	if _, err := svc.Create(context.Background(), u.ID, "quick fox"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(context.Background(), u.ID, "lazy dogs sleep all day"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(context.Background(), u.ID, "quick quick quick"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	posts, total, err := svc.Search(context.Background(), "quick fox", 1, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if total != 2 || len(posts) != 2 {
		t.Fatalf("got total=%d len=%d", total, len(posts))
	}
	if posts[0].Body != "quick fox" {
		t.Fatalf("best match should come first, got %q", posts[0].Body)
	}
}

func TestSearch_NilIndexIsEmptyResult(t *testing.T) {
	db := newSvcDB(t)
	svc := NewPostService(db, nil, nil)

	posts, total, err := svc.Search(context.Background(), "anything", 1, 10)
	if err != nil || total != 0 || len(posts) != 0 {
		t.Fatalf("expected empty result: posts=%v total=%d err=%v", posts, total, err)
	}
}

func TestWarmIndex_ReplaysLedger(t *testing.T) {
	db := newSvcDB(t)
	u := mustRegister(t, db, "author")

	// Write posts without any index attached.
	writer := NewPostService(db, nil, nil)
	if _, err := writer.Create(context.Background(), u.ID, "searchable content here"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// A fresh service with an empty index finds them after warming.
	svc := NewPostService(db, nil, search.NewMemory())
	if err := svc.WarmIndex(context.Background()); err != nil {
		t.Fatalf("WarmIndex: %v", err)
	}
	posts, _, err := svc.Search(context.Background(), "searchable content", 1, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("expected warmed index to find the post, got %d", len(posts))
	}
}
