package data

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/zeusync/reveries/internal/core/npc/trait"
	"github.com/zeusync/reveries/internal/core/text"
	"github.com/zeusync/reveries/pkg/container"
)

var _ Snapshotter = Immutable{}

// Immutable is a frozen snapshot of a Component, safe to share with
// read-only code and across goroutines.
type Immutable struct {
	ownerID     uuid.UUID
	displayName text.Text
	sightRange  float64
	// never handed out; Traits and Get return copies
	traits *trait.Set
}

func (i Immutable) DataKind() string { return Kind }

func (i Immutable) OwnerID() uuid.UUID     { return i.ownerID }
func (i Immutable) DisplayName() text.Text { return i.displayName }
func (i Immutable) SightRange() float64    { return i.sightRange }

// Traits returns the traits sorted by id.
func (i Immutable) Traits() []trait.Trait { return i.traits.Slice() }

func (i Immutable) HasTrait(id string) bool {
	return i.traits != nil && i.traits.ContainsID(id)
}

func (i Immutable) Get(key FieldKey) (any, bool) {
	acc, ok := NpcKeys.lookup(key.ID())
	if !ok {
		return nil, false
	}
	return acc.view(i), true
}

// With returns a new snapshot with one field replaced.
func (i Immutable) With(key FieldKey, value any) (Immutable, error) {
	m, err := i.AsMutable().Set(key, value)
	if err != nil {
		return i, err
	}
	return m.AsImmutable(), nil
}

// AsMutable returns a fresh Component; changes to it do not affect i.
func (i Immutable) AsMutable() *Component {
	return New(i.ownerID, i.displayName, i.sightRange, i.traits.Clone())
}

// ToContainer writes the same shape as Component.ToContainer so either form
// can be rebuilt from the other's container.
func (i Immutable) ToContainer() *container.Container {
	return encodeFields(i.ownerID, i.displayName, i.sightRange, i.traits)
}

func (i Immutable) Equal(other Immutable) bool {
	return i.ownerID == other.ownerID &&
		i.displayName == other.displayName &&
		i.sightRange == other.sightRange &&
		i.traits.Equal(other.traits)
}

func (i Immutable) String() string {
	return fmt.Sprintf("ImmutableNpcComponent{owner=%s, displayName=%q, sightRange=%g, traits=%v}",
		i.ownerID, i.displayName.Plain(), i.sightRange, i.traits.IDs())
}
