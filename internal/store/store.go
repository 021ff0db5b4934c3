// Package store is the storage collaborator: named collections of JSON
// documents addressed by conjunctions of exact-match field filters.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate id")
)

// Filter is a conjunction of exact matches on top-level document fields.
// Values must be scalars (string, bool, number) or nil. An empty filter
// matches every document.
type Filter map[string]any

// Backend stores raw JSON documents. Every document carries its id under "id".
type Backend interface {
	Insert(ctx context.Context, collection, id string, doc []byte) error
	Find(ctx context.Context, collection string, f Filter) ([][]byte, error)
	// Update merges set into every matching document and returns the count.
	Update(ctx context.Context, collection string, f Filter, set map[string]any) (int, error)
	Delete(ctx context.Context, collection string, f Filter) (int, error)
	Close() error
}

var fieldName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// CheckFields rejects field names backends cannot address safely.
func CheckFields[V any](m map[string]V) error {
	for k := range m {
		if !fieldName.MatchString(k) {
			return fmt.Errorf("store: invalid field name %q", k)
		}
	}
	return nil
}

// Normalize maps v onto the value space of decoded JSON (string, float64,
// bool, nil) so filters compare equal to stored fields.
func Normalize(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	switch out.(type) {
	case map[string]any, []any:
		return nil, fmt.Errorf("store: non-scalar filter value %T", v)
	}
	return out, nil
}

// Collection is a typed view over one backend collection. T is stored as its
// JSON encoding, so filter and update keys are T's JSON field names.
type Collection[T any] struct {
	backend Backend
	name    string
	id      func(T) string
}

// NewCollection returns the collection name of b; id extracts a record's id.
func NewCollection[T any](b Backend, name string, id func(T) string) *Collection[T] {
	return &Collection[T]{backend: b, name: name, id: id}
}

func (c *Collection[T]) Name() string { return c.name }

func (c *Collection[T]) Insert(ctx context.Context, v T) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.name, err)
	}
	return c.backend.Insert(ctx, c.name, c.id(v), doc)
}

// Find returns matching records in insertion order.
func (c *Collection[T]) Find(ctx context.Context, f Filter) ([]T, error) {
	docs, err := c.backend.Find(ctx, c.name, f)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := json.Unmarshal(d, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.name, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// FindOne returns the first match or ErrNotFound.
func (c *Collection[T]) FindOne(ctx context.Context, f Filter) (T, error) {
	var zero T
	all, err := c.Find(ctx, f)
	if err != nil {
		return zero, err
	}
	if len(all) == 0 {
		return zero, ErrNotFound
	}
	return all[0], nil
}

func (c *Collection[T]) Count(ctx context.Context, f Filter) (int, error) {
	docs, err := c.backend.Find(ctx, c.name, f)
	return len(docs), err
}

// Update merges set into matching records; zero matches is ErrNotFound.
func (c *Collection[T]) Update(ctx context.Context, f Filter, set map[string]any) error {
	n, err := c.backend.Update(ctx, c.name, f, set)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes matching records and returns how many went away.
func (c *Collection[T]) Delete(ctx context.Context, f Filter) (int, error) {
	return c.backend.Delete(ctx, c.name, f)
}
