// Package tags holds the tag set and the per-note aggregation that fills it.
package tags

import (
	"slices"
	"strings"
	"sync"
)

// Set is an unordered collection of unique tags, safe for concurrent use.
type Set struct {
	mu    sync.Mutex
	items map[string]struct{}
}

// NewSet returns a set pre-filled with tags.
func NewSet(tags ...string) *Set {
	s := &Set{items: make(map[string]struct{}, len(tags))}
	for _, t := range tags {
		s.items[t] = struct{}{}
	}
	return s
}

// Add inserts tags into the set.
func (s *Set) Add(tags ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tags {
		s.items[t] = struct{}{}
	}
}

// AddNew inserts tag and reports whether it was not already present.
func (s *Set) AddNew(tag string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[tag]; ok {
		return false
	}
	s.items[tag] = struct{}{}
	return true
}

// Contains reports whether tag is in the set.
func (s *Set) Contains(tag string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[tag]
	return ok
}

// Len returns the number of tags.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Merge adds every tag of other to s.
func (s *Set) Merge(other *Set) {
	s.Add(other.Slice()...)
}

// Slice returns the tags in sorted order.
func (s *Set) Slice() []string {
	s.mu.Lock()
	out := make([]string, 0, len(s.items))
	for t := range s.items {
		out = append(out, t)
	}
	s.mu.Unlock()
	slices.Sort(out)
	return out
}

// Normalized returns a new set with leading '#' characters stripped from
// every tag. Tags that become empty are dropped.
func (s *Set) Normalized() *Set {
	out := NewSet()
	for _, t := range s.Slice() {
		if n := Normalize(t); n != "" {
			out.items[n] = struct{}{}
		}
	}
	return out
}

// Normalize strips any number of leading '#' characters.
func Normalize(tag string) string {
	return strings.TrimLeft(tag, "#")
}
