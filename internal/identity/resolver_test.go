package identity

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"restart50-service/internal/domain"
	"restart50-service/internal/store"
	"restart50-service/internal/validation"
)

func newTestResolver() (*Resolver, *store.Repository[domain.User]) {
	repo := store.NewRepository[domain.User](store.NewMemoryBackend(), "users", nil)
	n := 0
	now := func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	newID := func() string {
		n++
		return fmt.Sprintf("user-%d", n)
	}
	return NewResolverWithClock(repo, now, newID, nil), repo
}

func TestLoginTwiceCreatesOneUser(t *testing.T) {
	ctx := context.Background()
	r, repo := newTestResolver()

	first, created, err := r.Login(ctx, "Ana", "ana@example.com")
	if err != nil || !created {
		t.Fatalf("first login: created=%v err=%v", created, err)
	}
	second, created, err := r.Login(ctx, "Outra Pessoa", " ANA@Example.com ")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if created {
		t.Fatalf("second login must reuse the record")
	}
	if second.ID != first.ID || second.Name != "Ana" {
		t.Fatalf("expected existing identity to win, got %+v", second)
	}

	users, _ := repo.Load(ctx)
	if users.Len() != 1 {
		t.Fatalf("expected exactly one user, got %d", users.Len())
	}
}

func TestLoginDefaultsBlankName(t *testing.T) {
	r, _ := newTestResolver()
	u, _, err := r.Login(context.Background(), "   ", "bia@example.com")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.Name != PlaceholderName {
		t.Fatalf("expected placeholder name, got %q", u.Name)
	}
	if u.Joined.Location() != time.UTC || u.Joined.Year() != 2025 {
		t.Fatalf("expected UTC join time, got %v", u.Joined.Time)
	}
	if u.Progress == nil || len(u.Progress) != 0 {
		t.Fatalf("expected empty progress map, got %v", u.Progress)
	}
}

func TestLoginRejectsBlankEmail(t *testing.T) {
	ctx := context.Background()
	r, repo := newTestResolver()
	_, _, err := r.Login(ctx, "Ana", "   ")
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Fields[0].Field != "email" {
		t.Fatalf("expected email field error, got %+v", verr.Fields)
	}
	users, _ := repo.Load(ctx)
	if users.Len() != 0 {
		t.Fatalf("expected no user created")
	}
}

func TestFindByEmailAndGet(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestResolver()

	if _, ok, err := r.FindByEmail(ctx, "nobody@example.com"); err != nil || ok {
		t.Fatalf("expected no match, got ok=%v err=%v", ok, err)
	}
	created, err := r.Create(ctx, "Caio", "Caio@Example.com")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	found, ok, err := r.FindByEmail(ctx, "caio@example.com")
	if err != nil || !ok || found.ID != created.ID {
		t.Fatalf("expected case-insensitive match, got %+v ok=%v err=%v", found, ok, err)
	}
	if _, err := r.Get(ctx, created.ID); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := r.Get(ctx, "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
