// Package overrides holds user overrides keyed by transaction key.
//
// Stores are copy-on-write: each mutation builds a new map and swaps it in,
// so a reader sees either the whole old state or the whole new one.
package overrides

import (
	"maps"
	"sort"
	"sync/atomic"

	"github.com/cleared-dev/cardspend/internal/model"
)

// Store maps transaction keys to override values. The zero value is an
// empty store ready to use. A Store must not be copied after first use.
type Store[V comparable] struct {
	m atomic.Pointer[map[string]V]
}

// NewStore returns an empty Store.
func NewStore[V comparable]() *Store[V] {
	return &Store[V]{}
}

// Get returns the override for key, if any.
func (s *Store[V]) Get(key string) (V, bool) {
	v, ok := s.load()[key]
	return v, ok
}

// Set inserts or replaces the override for key.
func (s *Store[V]) Set(key string, v V) {
	next := maps.Clone(s.load())
	if next == nil {
		next = make(map[string]V, 1)
	}
	next[key] = v
	s.swap(next)
}

// Clear removes the override for key.
func (s *Store[V]) Clear(key string) {
	cur := s.load()
	if _, ok := cur[key]; !ok {
		return
	}
	next := maps.Clone(cur)
	delete(next, key)
	s.swap(next)
}

// ClearAll removes every override.
func (s *Store[V]) ClearAll() {
	s.swap(map[string]V{})
}

// Len returns the number of overrides.
func (s *Store[V]) Len() int {
	return len(s.load())
}

// Snapshot returns a copy of the current overrides.
func (s *Store[V]) Snapshot() map[string]V {
	snap := maps.Clone(s.load())
	if snap == nil {
		snap = map[string]V{}
	}
	return snap
}

// Keys returns the overridden keys in sorted order.
func (s *Store[V]) Keys() []string {
	cur := s.load()
	keys := make([]string, 0, len(cur))
	for k := range cur {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Store[V]) load() map[string]V {
	if p := s.m.Load(); p != nil {
		return *p
	}
	return nil
}

func (s *Store[V]) swap(m map[string]V) {
	s.m.Store(&m)
}

// Categories maps transaction keys to custom category ids.
type Categories struct {
	Store[string]
}

// NewCategories returns an empty category override store.
func NewCategories() *Categories {
	return &Categories{}
}

// NeedWants maps transaction keys to explicit need/want overrides.
// An "auto" value is never stored.
type NeedWants struct {
	Store[model.NeedWant]
}

// NewNeedWants returns an empty need/want override store.
func NewNeedWants() *NeedWants {
	return &NeedWants{}
}

// Set stores v for key. Setting model.NeedWantAuto clears the key.
func (n *NeedWants) Set(key string, v model.NeedWant) {
	if v == model.NeedWantAuto {
		n.Clear(key)
		return
	}
	n.Store.Set(key, v)
}

// Value returns the override for key, or model.NeedWantAuto when absent.
func (n *NeedWants) Value(key string) model.NeedWant {
	if v, ok := n.Get(key); ok {
		return v
	}
	return model.NeedWantAuto
}
