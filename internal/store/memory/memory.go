// Package memory is the in-process store backend.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"portfoliotracker/internal/store"
)

type record struct {
	id  string
	doc map[string]any
}

// Store keeps documents decoded in memory, per collection, in insertion order.
type Store struct {
	mu          sync.RWMutex
	collections map[string][]record
}

func New() *Store { return &Store{collections: make(map[string][]record)} }

func (s *Store) Insert(_ context.Context, collection, id string, doc []byte) error {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return fmt.Errorf("memory: decode: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.collections[collection] {
		if r.id == id { return store.ErrDuplicate }
	}
	s.collections[collection] = append(s.collections[collection], record{id: id, doc: m})
	return nil
}

func (s *Store) Find(_ context.Context, collection string, f store.Filter) ([][]byte, error) {
	want, err := normalizeFilter(f)
	if err != nil { return nil, err }
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out [][]byte
	for _, r := range s.collections[collection] {
		if !matches(r.doc, want) { continue }
		b, err := json.Marshal(r.doc)
		if err != nil { return nil, err }
		out = append(out, b)
	}
	return out, nil
}

func (s *Store) Update(_ context.Context, collection string, f store.Filter, set map[string]any) (int, error) {
	want, err := normalizeFilter(f)
	if err != nil { return 0, err }
	if err := store.CheckFields(set); err != nil { return 0, err }
	// round-trip through JSON so stored values keep the decoded shape
	b, err := json.Marshal(set)
	if err != nil { return 0, err }
	var patch map[string]any
	if err := json.Unmarshal(b, &patch); err != nil { return 0, err }

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.collections[collection] {
		if !matches(r.doc, want) { continue }
		for k, v := range patch { r.doc[k] = v }
		n++
	}
	return n, nil
}

func (s *Store) Delete(_ context.Context, collection string, f store.Filter) (int, error) {
	want, err := normalizeFilter(f)
	if err != nil { return 0, err }
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.collections[collection][:0]
	n := 0
	for _, r := range s.collections[collection] {
		if matches(r.doc, want) { n++; continue }
		kept = append(kept, r)
	}
	s.collections[collection] = kept
	return n, nil
}

func (s *Store) Close() error { return nil }

func normalizeFilter(f store.Filter) (map[string]any, error) {
	if err := store.CheckFields(f); err != nil { return nil, err }
	out := make(map[string]any, len(f))
	for k, v := range f {
		n, err := store.Normalize(v)
		if err != nil { return nil, err }
		out[k] = n
	}
	return out, nil
}

func matches(doc, want map[string]any) bool {
	for k, v := range want {
		if doc[k] != v { return false }
	}
	return true
}
