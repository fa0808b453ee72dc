package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/zeusync/reveries/internal/core/host"
	"github.com/zeusync/reveries/internal/core/text"
)

var (
	_ host.Entity       = (*Entity)(nil)
	_ host.DisplayNamed = (*Entity)(nil)
	_ host.Skinned      = (*Entity)(nil)
)

// Entity is an in-memory host entity. Display name and skin may be written
// from background goroutines.
type Entity struct {
	id   uuid.UUID
	kind host.EntityType
	loc  host.Location

	mu          sync.RWMutex
	displayName text.Text
	skin        uuid.UUID
	spawned     bool
}

func (e *Entity) UniqueID() uuid.UUID     { return e.id }
func (e *Entity) Type() host.EntityType   { return e.kind }
func (e *Entity) Location() host.Location { return e.loc }

func (e *Entity) DisplayName() text.Text {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.displayName
}

func (e *Entity) SetDisplayName(name text.Text) {
	e.mu.Lock()
	e.displayName = name
	e.mu.Unlock()
}

func (e *Entity) Skin() uuid.UUID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.skin
}

func (e *Entity) SetSkin(id uuid.UUID) {
	e.mu.Lock()
	e.skin = id
	e.mu.Unlock()
}

// Spawned reports whether the entity has been placed in its world.
func (e *Entity) Spawned() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.spawned
}
