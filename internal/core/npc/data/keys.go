package data

import (
	"fmt"
	"math"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/zeusync/reveries/internal/core/npc"
	"github.com/zeusync/reveries/internal/core/npc/trait"
	"github.com/zeusync/reveries/internal/core/text"
	"github.com/zeusync/reveries/pkg/container"
)

// ValueType binds a key to the representation the codec reads and writes.
type ValueType uint8

const (
	TypeUUID ValueType = iota + 1
	TypeText
	TypeFloat64
	TypeTraitSet
)

func (t ValueType) String() string {
	switch t {
	case TypeUUID:
		return "uuid"
	case TypeText:
		return "text"
	case TypeFloat64:
		return "float64"
	case TypeTraitSet:
		return "trait_set"
	default:
		return fmt.Sprintf("value_type(%d)", uint8(t))
	}
}

// FieldKey is the untyped view of a Key, used for introspection.
type FieldKey interface {
	ID() string
	Query() container.Query
	ValueType() ValueType
}

// Key is a typed field key.
type Key[T any] struct {
	id    string
	query container.Query
	vt    ValueType
}

func NewKey[T any](id string, query container.Query, vt ValueType) Key[T] {
	return Key[T]{id: id, query: query, vt: vt}
}

func (k Key[T]) ID() string             { return k.id }
func (k Key[T]) Query() container.Query { return k.query }
func (k Key[T]) ValueType() ValueType   { return k.vt }
func (k Key[T]) String() string         { return k.id }

// Getter reads a field of a mutable component.
type Getter func(c *Component) any

// Setter validates and writes a field of a mutable component. It must not
// modify c when it returns an error.
type Setter func(c *Component, value any) error

// View reads a field of an immutable snapshot.
type View func(i Immutable) any

type accessor struct {
	key  FieldKey
	get  Getter
	set  Setter
	view View
}

// KeyRegistry maps key ids to their accessors.
type KeyRegistry struct {
	mu      sync.RWMutex
	byID    map[string]accessor
	queries map[container.Query]string
	order   []FieldKey
}

func NewKeyRegistry() *KeyRegistry {
	return &KeyRegistry{
		byID:    make(map[string]accessor),
		queries: make(map[container.Query]string),
	}
}

// Register binds key to its accessors. A key id or container query may only
// be registered once.
func (r *KeyRegistry) Register(key FieldKey, get Getter, set Setter, view View) error {
	if key.ID() == "" || key.Query() == "" {
		return fmt.Errorf("%w: key needs an id and a query", npc.ErrPrecondition)
	}
	if get == nil || set == nil || view == nil {
		return fmt.Errorf("%w: key %s needs a getter, a setter and a view", npc.ErrPrecondition, key.ID())
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[key.ID()]; exists {
		return fmt.Errorf("%w: key %s registered twice", npc.ErrPrecondition, key.ID())
	}
	if owner, exists := r.queries[key.Query()]; exists {
		return fmt.Errorf("%w: query %s already bound to %s", npc.ErrPrecondition, key.Query(), owner)
	}
	r.byID[key.ID()] = accessor{key: key, get: get, set: set, view: view}
	r.queries[key.Query()] = key.ID()
	r.order = append(r.order, key)
	return nil
}

// MustRegister panics when Register fails.
func (r *KeyRegistry) MustRegister(key FieldKey, get Getter, set Setter, view View) {
	if err := r.Register(key, get, set, view); err != nil {
		panic(err)
	}
}

// AllKeys returns the keys in registration order.
func (r *KeyRegistry) AllKeys() []FieldKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]FieldKey, len(r.order))
	copy(out, r.order)
	return out
}

func (r *KeyRegistry) Lookup(id string) (FieldKey, bool) {
	acc, ok := r.lookup(id)
	return acc.key, ok
}

func (r *KeyRegistry) lookup(id string) (accessor, bool) {
	r.mu.RLock()
	acc, ok := r.byID[id]
	r.mu.RUnlock()
	return acc, ok
}

// NPC field keys.
var (
	OwnerID     = NewKey[uuid.UUID]("reveries:owner_id", "OwnerId", TypeUUID)
	DisplayName = NewKey[text.Text]("reveries:display_name", "DisplayName", TypeText)
	SightRange  = NewKey[float64]("reveries:sight_range", "SightRange", TypeFloat64)
	Traits      = NewKey[*trait.Set]("reveries:traits", "Traits", TypeTraitSet)
)

// NpcKeys is the key registry every Component and Immutable resolves
// through. It is complete once the package is initialised.
var NpcKeys = newNpcKeys()

func newNpcKeys() *KeyRegistry {
	r := NewKeyRegistry()
	r.MustRegister(OwnerID,
		func(c *Component) any { return c.ownerID },
		func(c *Component, v any) error {
			id, ok := v.(uuid.UUID)
			if !ok {
				return unsupported(OwnerID, v)
			}
			c.ownerID = id
			return nil
		},
		func(i Immutable) any { return i.ownerID },
	)
	r.MustRegister(DisplayName,
		func(c *Component) any { return c.displayName },
		func(c *Component, v any) error {
			t, ok := toText(v)
			if !ok {
				return unsupported(DisplayName, v)
			}
			c.displayName = t
			return nil
		},
		func(i Immutable) any { return i.displayName },
	)
	r.MustRegister(SightRange,
		func(c *Component) any { return c.sightRange },
		func(c *Component, v any) error {
			f, ok := ToSightRange(v)
			if !ok {
				return unsupported(SightRange, v)
			}
			c.sightRange = f
			return nil
		},
		func(i Immutable) any { return i.sightRange },
	)
	r.MustRegister(Traits,
		func(c *Component) any { return c.traits },
		func(c *Component, v any) error {
			switch tv := v.(type) {
			case *trait.Set:
				if tv == nil {
					tv = trait.NewSet()
				}
				c.traits = tv
			case []trait.Trait:
				c.traits = trait.NewSet(tv...)
			default:
				return unsupported(Traits, v)
			}
			return nil
		},
		func(i Immutable) any { return i.traits.Clone() },
	)
	return r
}

// ToSightRange converts numeric values into a valid sight range: finite and
// not negative.
func ToSightRange(v any) (float64, bool) {
	var f float64
	switch tv := v.(type) {
	case float64:
		f = tv
	case float32:
		f = float64(tv)
	case int:
		f = float64(tv)
	case int32:
		f = float64(tv)
	case int64:
		f = float64(tv)
	case uint:
		f = float64(tv)
	case uint32:
		f = float64(tv)
	case uint64:
		f = float64(tv)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}

// toText accepts text and formatting-code strings. Invalid UTF-8 is refused
// because JSON cannot carry it through a round trip.
func toText(v any) (text.Text, bool) {
	var t text.Text
	switch tv := v.(type) {
	case text.Text:
		t = tv
	case string:
		if !utf8.ValidString(tv) {
			return text.Empty, false
		}
		t = text.FromFormattingCode(tv)
	default:
		return text.Empty, false
	}
	if !utf8.ValidString(t.Code()) {
		return text.Empty, false
	}
	return t, true
}

func unsupported(key FieldKey, v any) error {
	return fmt.Errorf("%w: %T for key %s (%s)", npc.ErrUnsupportedValue, v, key.ID(), key.ValueType())
}
