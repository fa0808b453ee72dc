package trait

import "sort"

// Set is a mutable set of traits keyed by id. The zero value is not usable;
// build one with NewSet.
type Set struct {
	m map[string]Trait
}

func NewSet(traits ...Trait) *Set {
	s := &Set{m: make(map[string]Trait, len(traits))}
	for _, t := range traits {
		s.m[t.ID()] = t
	}
	return s
}

// Add inserts t and reports whether the set changed.
func (s *Set) Add(t Trait) bool {
	if _, ok := s.m[t.ID()]; ok {
		return false
	}
	s.m[t.ID()] = t
	return true
}

// Remove deletes t and reports whether the set changed.
func (s *Set) Remove(t Trait) bool {
	if _, ok := s.m[t.ID()]; !ok {
		return false
	}
	delete(s.m, t.ID())
	return true
}

func (s *Set) Contains(t Trait) bool {
	_, ok := s.m[t.ID()]
	return ok
}

func (s *Set) ContainsID(id string) bool {
	_, ok := s.m[id]
	return ok
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.m)
}

func (s *Set) Clear() {
	for id := range s.m {
		delete(s.m, id)
	}
}

// Slice returns the traits sorted by id.
func (s *Set) Slice() []Trait {
	if s == nil {
		return nil
	}
	out := make([]Trait, 0, len(s.m))
	for _, t := range s.m {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// IDs returns the trait ids sorted.
func (s *Set) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.m))
	for id := range s.m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns an independent set holding the same shared traits.
func (s *Set) Clone() *Set {
	if s == nil {
		return NewSet()
	}
	cp := &Set{m: make(map[string]Trait, len(s.m))}
	for id, t := range s.m {
		cp.m[id] = t
	}
	return cp
}

// Equal compares membership by id.
func (s *Set) Equal(other *Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	if s == nil {
		return true
	}
	for id := range s.m {
		if !other.ContainsID(id) {
			return false
		}
	}
	return true
}
