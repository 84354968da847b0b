package identity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"restart50-service/internal/domain"
	"restart50-service/internal/logger"
	"restart50-service/internal/store"
	"restart50-service/internal/validation"
)

// PlaceholderName is stored when a new user logs in without a name.
const PlaceholderName = "Visitante"

// Resolver maps emails to user records, creating them on first login.
type Resolver struct {
	users *store.Repository[domain.User]
	now   func() time.Time
	newID func() string
	log   *logger.Logger
}

func NewResolver(users *store.Repository[domain.User], log *logger.Logger) *Resolver {
	return NewResolverWithClock(users, time.Now, uuid.NewString, log)
}

// NewResolverWithClock allows deterministic ids and timestamps in tests.
func NewResolverWithClock(users *store.Repository[domain.User], now func() time.Time, newID func() string, log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.NewNop()
	}
	return &Resolver{users: users, now: now, newID: newID, log: log}
}

type loginInput struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"required"`
}

// FindByEmail returns the first user whose email matches, ignoring case.
func (r *Resolver) FindByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	email = validation.Clean(email)
	if email == "" {
		return domain.User{}, false, nil
	}
	users, err := r.users.Load(ctx)
	if err != nil {
		return domain.User{}, false, err
	}
	u, ok := users.Find(emailMatcher(email))
	return normalize(u), ok, nil
}

// Create stores a new user and returns it.
func (r *Resolver) Create(ctx context.Context, name, email string) (domain.User, error) {
	u := r.newUser(name, email)
	err := r.users.Update(ctx, func(c *store.Collection[domain.User]) error {
		c.Put(u.ID, u)
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}
	r.log.Info("user created", "user_id", u.ID, "email", u.Email)
	return u, nil
}

// Login resolves email to an existing user, or creates one. A repeat login
// keeps the name on file. The bool reports whether a user was created.
func (r *Resolver) Login(ctx context.Context, name, email string) (domain.User, bool, error) {
	in := loginInput{Name: validation.Clean(name), Email: validation.Clean(email)}
	if err := validation.Struct(in); err != nil {
		return domain.User{}, false, err
	}

	if u, ok, err := r.FindByEmail(ctx, in.Email); err != nil || ok {
		return u, false, err
	}

	if in.Name == "" {
		in.Name = PlaceholderName
	}
	var (
		result  domain.User
		created bool
	)
	err := r.users.Update(ctx, func(c *store.Collection[domain.User]) error {
		// Re-check under the write lock; another request may have created it.
		if u, ok := c.Find(emailMatcher(in.Email)); ok {
			result = normalize(u)
			return store.ErrNoChange
		}
		result = r.newUser(in.Name, in.Email)
		created = true
		c.Put(result.ID, result)
		return nil
	})
	if err != nil {
		return domain.User{}, false, err
	}
	if created {
		r.log.Info("user created", "user_id", result.ID, "email", result.Email)
	}
	return result, created, nil
}

// Get returns the user with the given id.
func (r *Resolver) Get(ctx context.Context, id string) (domain.User, error) {
	users, err := r.users.Load(ctx)
	if err != nil {
		return domain.User{}, err
	}
	u, ok := users.Get(id)
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return normalize(u), nil
}

func (r *Resolver) newUser(name, email string) domain.User {
	return domain.User{
		ID:       r.newID(),
		Name:     name,
		Email:    email,
		Joined:   domain.NewTimestamp(r.now()),
		Progress: make(map[string]domain.CourseProgress),
	}
}

func emailMatcher(email string) func(domain.User) bool {
	return func(u domain.User) bool {
		return u.Email != "" && strings.EqualFold(u.Email, email)
	}
}

func normalize(u domain.User) domain.User {
	if u.Progress == nil {
		u.Progress = make(map[string]domain.CourseProgress)
	}
	return u
}
