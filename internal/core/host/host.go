// Package host declares the narrow contracts the NPC core consumes from the
// host simulation: entities and their data, the tick scheduler, profile
// lookup, messaging and the event bus.
package host

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/reveries/internal/core/events/bus"
	"github.com/zeusync/reveries/internal/core/text"
)

var (
	ErrEntityNotFound  = errors.New("entity not found")
	ErrUnknownWorld    = errors.New("unknown world")
	ErrProfileNotFound = errors.New("profile not found")
)

// Host aggregates every host service the plugin needs.
type Host interface {
	Entities() EntityStore
	Scheduler() Scheduler
	Profiles() IdentityResolver
	Messenger() Messenger
	Events() bus.EventBus
}

// Vector3 is a position inside a world.
type Vector3 struct {
	X, Y, Z float64
}

func (v Vector3) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}

// Location is a position within a named world.
type Location struct {
	World    string
	Position Vector3
}

func (l Location) String() string {
	return l.World + l.Position.String()
}

// EntityType describes a kind of entity. Only living kinds can host NPC
// behaviour.
type EntityType struct {
	ID     string
	Living bool
}

func (t EntityType) IsZero() bool { return t.ID == "" }

func (t EntityType) String() string { return t.ID }

// Well-known entity types.
var (
	EntityTypeHuman      = EntityType{ID: "human", Living: true}
	EntityTypeVillager   = EntityType{ID: "villager", Living: true}
	EntityTypeZombie     = EntityType{ID: "zombie", Living: true}
	EntityTypeArmorStand = EntityType{ID: "armor_stand", Living: false}
	EntityTypeItem       = EntityType{ID: "item", Living: false}
)

// Identifiable is anything with a stable unique id: players, entities,
// profiles.
type Identifiable interface {
	UniqueID() uuid.UUID
}

// Entity is a live host entity.
type Entity interface {
	Identifiable
	Type() EntityType
	Location() Location
}

// DisplayNamed is implemented by entities with a native display name.
type DisplayNamed interface {
	DisplayName() text.Text
	SetDisplayName(name text.Text)
}

// Skinned is implemented by entities whose appearance can be copied from a
// player profile.
type Skinned interface {
	Skin() uuid.UUID
	SetSkin(id uuid.UUID)
}

// Data is a manipulator the host can store on an entity, one per kind.
type Data interface {
	DataKind() string
}

// Cause attributes an action. Owner must be Identifiable for actions that
// need ownership bookkeeping.
type Cause struct {
	Source any
	Owner  any
}

// EntityStore is the host's entity and data storage.
type EntityStore interface {
	CreateEntity(kind EntityType, loc Location) (Entity, error)
	// SpawnEntity places a created entity in its world. It returns false when
	// the host refuses.
	SpawnEntity(e Entity, cause Cause) bool
	// AttachData stores d on e unless data of the same kind is already
	// present; it reports whether d was stored.
	AttachData(e Entity, d Data) bool
	// OfferData stores d on e, replacing data of the same kind.
	OfferData(e Entity, d Data) error
	GetData(e Entity, kind string) (Data, bool)
	Entity(id uuid.UUID) (Entity, bool)
	Entities() []Entity
	RemoveEntity(id uuid.UUID) bool
}

// TaskHandle identifies a scheduled task.
type TaskHandle struct {
	ID uuid.UUID
}

func (h TaskHandle) IsZero() bool { return h.ID == uuid.Nil }

// Scheduler runs tasks aligned to the host tick.
type Scheduler interface {
	Schedule(initialDelay, interval time.Duration, task func()) TaskHandle
	// Cancel stops a task; it reports whether the task was still scheduled.
	Cancel(h TaskHandle) bool
}

// Profile is a resolved player identity.
type Profile struct {
	ID   uuid.UUID
	Name string
}

// IdentityResolver looks players up by name. Calls may block on remote I/O.
type IdentityResolver interface {
	ResolveByName(ctx context.Context, name string) (Profile, error)
}

// CommandSource is whoever issued a command: a player or the console.
type CommandSource interface {
	Name() string
}

// Locatable is implemented by sources that have a position, such as players.
type Locatable interface {
	Location() Location
}

// Messenger delivers templated messages to command sources.
type Messenger interface {
	Send(to CommandSource, msg text.Template, subs map[string]any)
}
