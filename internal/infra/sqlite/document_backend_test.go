package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"restart50-service/internal/domain"
	"restart50-service/internal/store"
)

func TestDocumentBackendUpsert(t *testing.T) {
	ctx := context.Background()
	backend, err := Open(filepath.Join(t.TempDir(), "restart.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer backend.Close()

	if _, err := backend.Load(ctx, "users"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := backend.Save(ctx, "users", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := backend.Save(ctx, "users", []byte(`{"b":2}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, err := backend.Load(ctx, "users")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(data) != `{"b":2}` {
		t.Fatalf("expected latest document, got %s", data)
	}
}

func TestDocumentBackendWithRepository(t *testing.T) {
	ctx := context.Background()
	backend, err := Open(filepath.Join(t.TempDir(), "restart.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer backend.Close()

	repo := store.NewRepository[domain.ContactMessage](backend, "contacts", nil)
	err = repo.Update(ctx, func(c *store.Collection[domain.ContactMessage]) error {
		c.Put("m2", domain.ContactMessage{ID: "m2", Message: "segundo"})
		c.Put("m1", domain.ContactMessage{ID: "m1", Message: "primeiro"})
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	loaded, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	keys := loaded.Keys()
	if len(keys) != 2 || keys[0] != "m2" || keys[1] != "m1" {
		t.Fatalf("unexpected order %v", keys)
	}
}
