package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var errNotObject = errors.New("document is not a JSON object")

// Collection is an id-keyed mapping that remembers insertion order.
type Collection[T any] struct {
	keys  []string
	items map[string]T
}

func NewCollection[T any]() *Collection[T] {
	return &Collection[T]{items: make(map[string]T)}
}

func (c *Collection[T]) Get(id string) (T, bool) {
	v, ok := c.items[id]
	return v, ok
}

// Put inserts or replaces the value for id. Replacing keeps its position.
func (c *Collection[T]) Put(id string, v T) {
	if _, ok := c.items[id]; !ok {
		c.keys = append(c.keys, id)
	}
	c.items[id] = v
}

func (c *Collection[T]) Len() int {
	return len(c.keys)
}

// Keys returns ids in insertion order.
func (c *Collection[T]) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Values returns the stored values in insertion order.
func (c *Collection[T]) Values() []T {
	out := make([]T, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, c.items[k])
	}
	return out
}

// Find returns the first value, in insertion order, for which match is true.
func (c *Collection[T]) Find(match func(T) bool) (T, bool) {
	for _, k := range c.keys {
		if v := c.items[k]; match(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func (c *Collection[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := encode(k)
		if err != nil {
			return nil, err
		}
		val, err := encode(c.items[k])
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON keeps the key order of the document. A repeated key keeps its
// first position and its last value.
func (c *Collection[T]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errNotObject
	}
	next := NewCollection[T]()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var v T
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("decode %q: %w", key, err)
		}
		next.Put(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = *next
	return nil
}

func encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
