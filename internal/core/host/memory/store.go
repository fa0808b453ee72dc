// Package memory is an in-process reference implementation of the host
// contracts. It backs the demo binary and the package tests.
package memory

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/zeusync/reveries/internal/core/events/bus"
	"github.com/zeusync/reveries/internal/core/host"
)

// EventSource tags events published by the in-memory host.
const EventSource = "host"

var _ host.EntityStore = (*Store)(nil)

// Store keeps entities and their data in maps guarded by one mutex. Events
// are published after the lock is released.
type Store struct {
	events bus.EventBus

	mu       sync.RWMutex
	worlds   map[string]struct{}
	entities map[uuid.UUID]*Entity
	data     map[uuid.UUID]map[string]host.Data

	// RefuseSpawn makes SpawnEntity report false, as a host does when a
	// plugin cancels the spawn.
	RefuseSpawn bool
	// CreateErr is returned by CreateEntity when set.
	CreateErr error
	// OfferErr is returned by OfferData when set, leaving stored data as is.
	OfferErr error
}

func NewStore(events bus.EventBus, worlds ...string) *Store {
	s := &Store{
		events:   events,
		worlds:   make(map[string]struct{}, len(worlds)),
		entities: make(map[uuid.UUID]*Entity),
		data:     make(map[uuid.UUID]map[string]host.Data),
	}
	for _, w := range worlds {
		s.worlds[w] = struct{}{}
	}
	return s
}

// AddWorld makes a world available to CreateEntity.
func (s *Store) AddWorld(name string) {
	s.mu.Lock()
	s.worlds[name] = struct{}{}
	s.mu.Unlock()
}

// CreateEntity builds an entity that is not yet spawned.
func (s *Store) CreateEntity(kind host.EntityType, loc host.Location) (host.Entity, error) {
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	if kind.IsZero() {
		return nil, errors.New("entity type required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.worlds[loc.World]; !ok {
		return nil, fmt.Errorf("%w: %q", host.ErrUnknownWorld, loc.World)
	}
	e := &Entity{id: uuid.New(), kind: kind, loc: loc}
	s.entities[e.id] = e
	return e, nil
}

func (s *Store) SpawnEntity(e host.Entity, _ host.Cause) bool {
	if s.RefuseSpawn {
		return false
	}
	s.mu.Lock()
	me, ok := s.entities[e.UniqueID()]
	if !ok || me.Spawned() {
		s.mu.Unlock()
		return false
	}
	me.mu.Lock()
	me.spawned = true
	me.mu.Unlock()
	s.mu.Unlock()

	s.publish(bus.EntitySpawned, me)
	return true
}

func (s *Store) AttachData(e host.Entity, d host.Data) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entities[e.UniqueID()]; !ok {
		return false
	}
	byKind := s.data[e.UniqueID()]
	if byKind == nil {
		byKind = make(map[string]host.Data)
		s.data[e.UniqueID()] = byKind
	}
	if _, exists := byKind[d.DataKind()]; exists {
		return false
	}
	byKind[d.DataKind()] = d
	return true
}

func (s *Store) OfferData(e host.Entity, d host.Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entities[e.UniqueID()]; !ok {
		return fmt.Errorf("%w: %s", host.ErrEntityNotFound, e.UniqueID())
	}
	if s.OfferErr != nil {
		return s.OfferErr
	}
	byKind := s.data[e.UniqueID()]
	if byKind == nil {
		byKind = make(map[string]host.Data)
		s.data[e.UniqueID()] = byKind
	}
	byKind[d.DataKind()] = d
	return nil
}

func (s *Store) GetData(e host.Entity, kind string) (host.Data, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.data[e.UniqueID()][kind]
	return d, ok
}

// RemoveData drops data of the given kind from e.
func (s *Store) RemoveData(e host.Entity, kind string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	byKind, ok := s.data[e.UniqueID()]
	if !ok {
		return false
	}
	if _, ok := byKind[kind]; !ok {
		return false
	}
	delete(byKind, kind)
	return true
}

func (s *Store) Entity(id uuid.UUID) (host.Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[id]
	if !ok || !e.Spawned() {
		return nil, false
	}
	return e, true
}

// Entities returns the spawned entities ordered by id.
func (s *Store) Entities() []host.Entity {
	s.mu.RLock()
	out := make([]host.Entity, 0, len(s.entities))
	for _, e := range s.entities {
		if e.Spawned() {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].UniqueID().String() < out[j].UniqueID().String()
	})
	return out
}

func (s *Store) RemoveEntity(id uuid.UUID) bool {
	s.mu.Lock()
	e, ok := s.entities[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.entities, id)
	delete(s.data, id)
	s.mu.Unlock()

	s.publish(bus.EntityRemoved, e)
	return true
}

func (s *Store) publish(typ string, e *Entity) {
	if s.events == nil {
		return
	}
	// listener failures belong to the listener; the host carries on
	_ = s.events.Publish(bus.NewEvent(typ, EventSource, e))
}
