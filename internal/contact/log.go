package contact

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"restart50-service/internal/catalog"
	"restart50-service/internal/domain"
	"restart50-service/internal/logger"
	"restart50-service/internal/store"
	"restart50-service/internal/validation"
)

const (
	// AnonymousName is stored when the sender leaves the name blank.
	AnonymousName = "Anônimo"
	// RecentLimit caps how many messages ListByEmail returns.
	RecentLimit = 5
)

// Log is the append-only store of contact messages.
type Log struct {
	messages *store.Repository[domain.ContactMessage]
	now      func() time.Time
	newID    func() string
	log      *logger.Logger
}

func NewLog(messages *store.Repository[domain.ContactMessage], log *logger.Logger) *Log {
	return NewLogWithClock(messages, time.Now, uuid.NewString, log)
}

// NewLogWithClock allows deterministic ids and timestamps in tests.
func NewLogWithClock(messages *store.Repository[domain.ContactMessage], now func() time.Time, newID func() string, log *logger.Logger) *Log {
	if log == nil {
		log = logger.NewNop()
	}
	return &Log{messages: messages, now: now, newID: newID, log: log}
}

type submitInput struct {
	Message string `json:"message" validate:"required"`
}

// Submit validates and appends a message. A blank message is rejected and
// nothing is stored.
func (l *Log) Submit(ctx context.Context, name, email, courseLabel, message string) (domain.ContactMessage, error) {
	if err := validation.Struct(submitInput{Message: validation.Clean(message)}); err != nil {
		return domain.ContactMessage{}, err
	}

	msg := domain.ContactMessage{
		ID:        l.newID(),
		Name:      orDefault(name, AnonymousName),
		Email:     validation.Clean(email),
		Course:    orDefault(courseLabel, catalog.GeneralLabel),
		Message:   message,
		Timestamp: domain.NewTimestamp(l.now()),
		Status:    domain.StatusNew,
	}
	err := l.messages.Update(ctx, func(c *store.Collection[domain.ContactMessage]) error {
		c.Put(msg.ID, msg)
		return nil
	})
	if err != nil {
		return domain.ContactMessage{}, err
	}
	l.log.Info("contact message stored", "message_id", msg.ID, "course", msg.Course, "email", msg.Email)
	return msg, nil
}

// ListByEmail returns the sender's most recent messages, newest first.
func (l *Log) ListByEmail(ctx context.Context, email string) ([]domain.ContactMessage, error) {
	email = validation.Clean(email)
	if email == "" {
		return []domain.ContactMessage{}, nil
	}
	all, err := l.messages.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ContactMessage, 0)
	for _, m := range all.Values() {
		if strings.EqualFold(m.Email, email) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp.Time)
	})
	if len(out) > RecentLimit {
		out = out[:RecentLimit]
	}
	return out, nil
}

func orDefault(s, fallback string) string {
	if s = strings.TrimSpace(s); s == "" {
		return fallback
	}
	return s
}
