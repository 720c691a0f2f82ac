package repo

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/tbourn/go-microblog-backend/internal/domain"
)

func seedUsers(t *testing.T, db *gorm.DB, names ...string) []uint {
	t.Helper()
	ids := make([]uint, 0, len(names))
	for _, n := range names {
		u, err := CreateUser(context.Background(), db, n, "")
		if err != nil {
			t.Fatalf("seed user %q: %v", n, err)
		}
		ids = append(ids, u.ID)
	}
	return ids
}

func TestCreateFollow_IdempotentSingleEdge(t *testing.T) {
	db := newRepoDB(t, &domain.User{}, &domain.Follow{})
	ids := seedUsers(t, db, "a", "b")

	created, err := CreateFollow(context.Background(), db, ids[0], ids[1])
	if err != nil {
		t.Fatalf("CreateFollow: %v", err)
	}
	if !created {
		t.Fatalf("expected first follow to create an edge")
	}

	created, err = CreateFollow(context.Background(), db, ids[0], ids[1])
	if err != nil {
		t.Fatalf("repeat CreateFollow: %v", err)
	}
	if created {
		t.Fatalf("repeat follow must not create a second edge")
	}

	var n int64
	if err := db.Model(&domain.Follow{}).Count(&n).Error; err != nil {
		t.Fatalf("count follows: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly one edge, got %d", n)
	}
}

func TestDeleteFollow_ReportsRemoval(t *testing.T) {
	db := newRepoDB(t, &domain.User{}, &domain.Follow{})
	ids := seedUsers(t, db, "a", "b")

	if _, err := CreateFollow(context.Background(), db, ids[0], ids[1]); err != nil {
		t.Fatalf("CreateFollow: %v", err)
	}
	removed, err := DeleteFollow(context.Background(), db, ids[0], ids[1])
	if err != nil {
		t.Fatalf("DeleteFollow: %v", err)
	}
	if !removed {
		t.Fatalf("expected removal of existing edge")
	}

	removed, err = DeleteFollow(context.Background(), db, ids[0], ids[1])
	if err != nil {
		t.Fatalf("repeat DeleteFollow: %v", err)
	}
	if removed {
		t.Fatalf("deleting an absent edge must be a no-op")
	}
}

func TestFollowExists_And_ListFollowedIDs(t *testing.T) {
	db := newRepoDB(t, &domain.User{}, &domain.Follow{})
	ids := seedUsers(t, db, "a", "b", "c")

	if _, err := CreateFollow(context.Background(), db, ids[0], ids[1]); err != nil {
		t.Fatalf("CreateFollow: %v", err)
	}
	if _, err := CreateFollow(context.Background(), db, ids[0], ids[2]); err != nil {
		t.Fatalf("CreateFollow: %v", err)
	}

	ok, err := FollowExists(context.Background(), db, ids[0], ids[1])
	if err != nil || !ok {
		t.Fatalf("expected edge a->b, ok=%v err=%v", ok, err)
	}
	ok, err = FollowExists(context.Background(), db, ids[1], ids[0])
	if err != nil || ok {
		t.Fatalf("edge b->a must not exist, ok=%v err=%v", ok, err)
	}

	followed, err := ListFollowedIDs(context.Background(), db, ids[0])
	if err != nil {
		t.Fatalf("ListFollowedIDs: %v", err)
	}
	if len(followed) != 2 {
		t.Fatalf("expected 2 followed ids, got %v", followed)
	}
}

func TestFollowCounts(t *testing.T) {
	db := newRepoDB(t, &domain.User{}, &domain.Follow{})
	ids := seedUsers(t, db, "a", "b", "c")

	// b and c follow a; a follows b.
	if _, err := CreateFollow(context.Background(), db, ids[1], ids[0]); err != nil {
		t.Fatalf("CreateFollow: %v", err)
	}
	if _, err := CreateFollow(context.Background(), db, ids[2], ids[0]); err != nil {
		t.Fatalf("CreateFollow: %v", err)
	}
	if _, err := CreateFollow(context.Background(), db, ids[0], ids[1]); err != nil {
		t.Fatalf("CreateFollow: %v", err)
	}

	followers, err := CountFollowers(context.Background(), db, ids[0])
	if err != nil || followers != 2 {
		t.Fatalf("CountFollowers: got %d err=%v", followers, err)
	}
	following, err := CountFollowing(context.Background(), db, ids[0])
	if err != nil || following != 1 {
		t.Fatalf("CountFollowing: got %d err=%v", following, err)
	}
}
