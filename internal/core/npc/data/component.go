// Package data implements the NPC data component: a mutable record attached
// to a host entity, its immutable snapshot and the codec translating both
// to and from the generic container.
package data

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/zeusync/reveries/internal/core/host"
	"github.com/zeusync/reveries/internal/core/npc"
	"github.com/zeusync/reveries/internal/core/npc/trait"
	"github.com/zeusync/reveries/internal/core/text"
	"github.com/zeusync/reveries/pkg/container"
)

// Kind is the data kind NPC components are stored under on a host entity.
const Kind = "reveries:npc"

// Holder is implemented by both component forms.
type Holder interface {
	Get(key FieldKey) (any, bool)
}

// Snapshotter is implemented by both component forms; Codec.Build and
// Component.From are its inverse.
type Snapshotter interface {
	Holder
	ToContainer() *container.Container
}

// MergeFunc decides which of two components survives a Fill.
type MergeFunc func(original, replacement *Component) *Component

var (
	_ host.Data   = (*Component)(nil)
	_ Snapshotter = (*Component)(nil)
)

// Component is the live NPC record. It is not safe for concurrent use; the
// host mutates it from its tick goroutine.
type Component struct {
	ownerID     uuid.UUID
	displayName text.Text
	sightRange  float64
	traits      *trait.Set
}

// New builds a component. A nil traits set is replaced by an empty one.
func New(ownerID uuid.UUID, displayName text.Text, sightRange float64, traits *trait.Set) *Component {
	if traits == nil {
		traits = trait.NewSet()
	}
	return &Component{
		ownerID:     ownerID,
		displayName: displayName,
		sightRange:  sightRange,
		traits:      traits,
	}
}

func (c *Component) DataKind() string { return Kind }

func (c *Component) OwnerID() uuid.UUID     { return c.ownerID }
func (c *Component) DisplayName() text.Text { return c.displayName }
func (c *Component) SightRange() float64    { return c.sightRange }

// Traits returns the live trait set. Callers mutate it in place and must not
// keep the reference across Copy.
func (c *Component) Traits() *trait.Set { return c.traits }

func (c *Component) Get(key FieldKey) (any, bool) {
	acc, ok := NpcKeys.lookup(key.ID())
	if !ok {
		return nil, false
	}
	return acc.get(c), true
}

// Set writes one field and returns c for chaining. Unknown keys fail with
// npc.ErrPrecondition, wrongly typed or invalid values with
// npc.ErrUnsupportedValue; c is unchanged on error.
func (c *Component) Set(key FieldKey, value any) (*Component, error) {
	acc, ok := NpcKeys.lookup(key.ID())
	if !ok {
		return nil, fmt.Errorf("%w: unknown key %s", npc.ErrPrecondition, key.ID())
	}
	if err := acc.set(c, value); err != nil {
		return nil, err
	}
	return c, nil
}

// Copy returns a component with its own trait set.
func (c *Component) Copy() *Component {
	return New(c.ownerID, c.displayName, c.sightRange, c.traits.Clone())
}

func (c *Component) AsImmutable() Immutable {
	return Immutable{
		ownerID:     c.ownerID,
		displayName: c.displayName,
		sightRange:  c.sightRange,
		traits:      c.traits.Clone(),
	}
}

// Fill would copy compatible fields from data already held by an entity.
// Merging is not supported: it always reports no data.
func (c *Component) Fill(_ host.Entity, _ MergeFunc) (*Component, bool) {
	return nil, false
}

// From reads every field from ct into c. It reports false, leaving c
// untouched, when OwnerId, DisplayName or Traits is missing or unreadable.
// Trait ids are resolved through traits.
func (c *Component) From(ct *container.Container, traits trait.Lookup) (*Component, bool) {
	f, ok := decodeFields(ct, traits)
	if !ok {
		return nil, false
	}
	c.ownerID = f.ownerID
	c.displayName = f.displayName
	c.sightRange = f.sightRange
	c.traits = f.traits
	return c, true
}

// ToContainer writes the content version and every field.
func (c *Component) ToContainer() *container.Container {
	return encodeFields(c.ownerID, c.displayName, c.sightRange, c.traits)
}

// Equal compares components field by field, traits by id.
func (c *Component) Equal(other *Component) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.ownerID == other.ownerID &&
		c.displayName == other.displayName &&
		c.sightRange == other.sightRange &&
		c.traits.Equal(other.traits)
}

func (c *Component) String() string {
	return fmt.Sprintf("NpcComponent{owner=%s, displayName=%q, sightRange=%g, traits=%v}",
		c.ownerID, c.displayName.Plain(), c.sightRange, c.traits.IDs())
}

// Value reads a typed field from either component form.
func Value[T any](h Holder, key Key[T]) (T, bool) {
	var zero T
	v, ok := h.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// Of returns the NPC component attached to e, if any.
func Of(store host.EntityStore, e host.Entity) (*Component, bool) {
	if e == nil {
		return nil, false
	}
	d, ok := store.GetData(e, Kind)
	if !ok {
		return nil, false
	}
	c, ok := d.(*Component)
	return c, ok
}
