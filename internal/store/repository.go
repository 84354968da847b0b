package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"restart50-service/internal/logger"
)

// ErrNoChange may be returned from an Update callback to skip the save.
var ErrNoChange = errors.New("no change")

// Repository loads and saves one named document as a Collection.
//
// Absent or unparseable documents load as an empty collection. Backend
// transport failures are returned. Writes inside a process are serialized;
// separate processes sharing a backend are last-writer-wins.
type Repository[T any] struct {
	backend Backend
	name    string
	log     *logger.Logger
	sf      singleflight.Group

	mu sync.RWMutex
}

func NewRepository[T any](backend Backend, name string, log *logger.Logger) *Repository[T] {
	if log == nil {
		log = logger.NewNop()
	}
	return &Repository[T]{backend: backend, name: name, log: log}
}

// Name is the document name handed to the backend.
func (r *Repository[T]) Name() string {
	return r.name
}

// Load returns a fresh copy of the stored collection. Concurrent loads share a
// single backend read.
func (r *Repository[T]) Load(ctx context.Context) (*Collection[T], error) {
	res, err, _ := r.sf.Do(r.name, func() (interface{}, error) {
		r.mu.RLock()
		defer r.mu.RUnlock()
		return r.read(ctx)
	})
	if err != nil {
		return nil, err
	}
	return r.decode(res.([]byte)), nil
}

// Save overwrites the stored document with c.
func (r *Repository[T]) Save(ctx context.Context, c *Collection[T]) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.write(ctx, c)
}

// Update loads the collection, applies fn and saves the result. Nothing is
// written when fn returns an error; ErrNoChange is swallowed.
func (r *Repository[T]) Update(ctx context.Context, fn func(c *Collection[T]) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := r.read(ctx)
	if err != nil {
		return err
	}
	c := r.decode(data)
	if err := fn(c); err != nil {
		if errors.Is(err, ErrNoChange) {
			return nil
		}
		return err
	}
	return r.write(ctx, c)
}

func (r *Repository[T]) read(ctx context.Context) ([]byte, error) {
	data, err := r.backend.Load(ctx, r.name)
	if errors.Is(err, ErrNotFound) {
		return []byte(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", r.name, err)
	}
	return data, nil
}

func (r *Repository[T]) decode(data []byte) *Collection[T] {
	c := NewCollection[T]()
	if len(bytes.TrimSpace(data)) == 0 {
		return c
	}
	if err := json.Unmarshal(data, c); err != nil {
		r.log.Warn("unreadable document treated as empty", "document", r.name, "error", err)
		return NewCollection[T]()
	}
	return c
}

func (r *Repository[T]) write(ctx context.Context, c *Collection[T]) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode %s: %w", r.name, err)
	}
	if err := r.backend.Save(ctx, r.name, buf.Bytes()); err != nil {
		return fmt.Errorf("save %s: %w", r.name, err)
	}
	return nil
}
