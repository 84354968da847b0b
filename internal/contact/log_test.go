package contact

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"restart50-service/internal/catalog"
	"restart50-service/internal/domain"
	"restart50-service/internal/store"
	"restart50-service/internal/validation"
)

func newTestLog() (*Log, *store.Repository[domain.ContactMessage]) {
	repo := store.NewRepository[domain.ContactMessage](store.NewMemoryBackend(), "contacts", nil)
	tick := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	n := 0
	now := func() time.Time {
		tick = tick.Add(time.Hour)
		return tick
	}
	newID := func() string {
		n++
		return fmt.Sprintf("msg-%d", n)
	}
	return NewLogWithClock(repo, now, newID, nil), repo
}

func TestSubmitRejectsBlankMessage(t *testing.T) {
	ctx := context.Background()
	l, repo := newTestLog()

	for _, msg := range []string{"", "   ", "\n\t"} {
		_, err := l.Submit(ctx, "Ana", "ana@example.com", "Geral", msg)
		var verr *validation.Error
		if !errors.As(err, &verr) {
			t.Fatalf("expected validation error for %q, got %v", msg, err)
		}
	}
	all, _ := repo.Load(ctx)
	if all.Len() != 0 {
		t.Fatalf("expected no stored messages, got %d", all.Len())
	}
}

func TestSubmitFillsDefaults(t *testing.T) {
	l, _ := newTestLog()
	m, err := l.Submit(context.Background(), " ", "", "", "Como faço o quiz?")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if m.Name != AnonymousName || m.Course != catalog.GeneralLabel || m.Status != domain.StatusNew {
		t.Fatalf("unexpected defaults %+v", m)
	}
	if m.ID != "msg-1" || m.Timestamp.IsZero() {
		t.Fatalf("expected id and timestamp, got %+v", m)
	}
}

func TestListByEmailNewestFirstCapped(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLog()
	for i := 0; i < 7; i++ {
		if _, err := l.Submit(ctx, "Ana", "ana@example.com", "Geral", fmt.Sprintf("pergunta %d", i)); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}
	if _, err := l.Submit(ctx, "Bia", "bia@example.com", "Geral", "outra"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	got, err := l.ListByEmail(ctx, "ANA@example.com")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != RecentLimit {
		t.Fatalf("expected %d messages, got %d", RecentLimit, len(got))
	}
	if got[0].Message != "pergunta 6" || got[4].Message != "pergunta 2" {
		t.Fatalf("unexpected order: first=%q last=%q", got[0].Message, got[4].Message)
	}

	none, err := l.ListByEmail(ctx, "")
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty list for blank email, got %v %v", none, err)
	}
}
