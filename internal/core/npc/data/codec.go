package data

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/zeusync/reveries/internal/core/host"
	"github.com/zeusync/reveries/internal/core/npc"
	"github.com/zeusync/reveries/internal/core/npc/trait"
	"github.com/zeusync/reveries/internal/core/text"
	"github.com/zeusync/reveries/pkg/container"
	"github.com/zeusync/reveries/pkg/encoding"
)

const (
	// ContentVersion is the container shape written by ToContainer.
	ContentVersion = 1
	// DefaultSightRange is used when a container has no SightRange.
	DefaultSightRange = 0.0
)

// Migration upgrades a container written at one content version to the
// next. It reports false when the container cannot be upgraded.
type Migration func(ct *container.Container) (*container.Container, bool)

type CodecOption func(*Codec)

// WithDefaultDisplayName sets the label given to freshly created components.
func WithDefaultDisplayName(name text.Text) CodecOption {
	return func(c *Codec) {
		c.defaultName = name
	}
}

// WithFormat selects the byte form used by Marshal and Unmarshal.
func WithFormat(f encoding.Format) CodecOption {
	return func(c *Codec) {
		c.format = f
	}
}

// Codec builds components from defaults and from containers. It is the only
// place that knows component defaults.
type Codec struct {
	traits      trait.Lookup
	defaultName text.Text
	format      encoding.Format

	mu         sync.RWMutex
	migrations map[int]Migration
}

func NewCodec(traits trait.Lookup, opts ...CodecOption) *Codec {
	c := &Codec{
		traits:      traits,
		defaultName: text.Of("NPC"),
		format:      encoding.FormatYAML,
		migrations:  make(map[int]Migration),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Codec) DefaultDisplayName() text.Text { return c.defaultName }

// RegisterMigration installs the upgrade from version from to from+1.
func (c *Codec) RegisterMigration(from int, m Migration) error {
	if m == nil {
		return fmt.Errorf("%w: nil migration", npc.ErrPrecondition)
	}
	if from < 0 || from >= ContentVersion {
		return fmt.Errorf("%w: migration from version %d (current %d)", npc.ErrPrecondition, from, ContentVersion)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.migrations[from]; exists {
		return fmt.Errorf("%w: migration from version %d registered twice", npc.ErrPrecondition, from)
	}
	c.migrations[from] = m
	return nil
}

// Create returns a component holding only defaults.
func (c *Codec) Create() *Component {
	return New(uuid.Nil, c.defaultName, DefaultSightRange, trait.NewSet())
}

// CreateFor returns a default component owned by owner.
func (c *Codec) CreateFor(owner uuid.UUID) *Component {
	return New(owner, c.defaultName, DefaultSightRange, trait.NewSet())
}

// CreateFrom creates a component and fills it from the holder's existing
// data. Filling is not supported, so the result is always absent.
func (c *Codec) CreateFrom(holder host.Entity) (*Component, bool) {
	return c.Create().Fill(holder, nil)
}

// Build decodes a container into a component. It reports false when the
// version is unknown, newer than ContentVersion or cannot be migrated, or
// when a required field is missing or unreadable.
func (c *Codec) Build(ct *container.Container) (*Component, bool) {
	ct, ok := c.upgrade(ct)
	if !ok {
		return nil, false
	}
	return c.Create().From(ct, c.traits)
}

// BuildImmutable is Build for the snapshot form.
func (c *Codec) BuildImmutable(ct *container.Container) (Immutable, bool) {
	comp, ok := c.Build(ct)
	if !ok {
		return Immutable{}, false
	}
	return comp.AsImmutable(), true
}

// Marshal encodes a component of either form for host persistence.
func (c *Codec) Marshal(s Snapshotter) ([]byte, error) {
	if name, ok := Value(s, DisplayName); ok && !utf8.ValidString(name.Code()) {
		return nil, fmt.Errorf("marshal npc component: %w: display name is not valid UTF-8", npc.ErrUnsupportedValue)
	}
	b, err := s.ToContainer().WithFormat(c.format).Serialize()
	if err != nil {
		return nil, fmt.Errorf("marshal npc component: %w", err)
	}
	return b, nil
}

// Unmarshal decodes bytes written by Marshal. A malformed document is an
// error; a well-formed one that Build refuses is reported as absent.
func (c *Codec) Unmarshal(b []byte) (*Component, bool, error) {
	ct := container.New().WithFormat(c.format)
	if err := ct.Deserialize(b); err != nil {
		return nil, false, fmt.Errorf("unmarshal npc component: %w", err)
	}
	comp, ok := c.Build(ct)
	return comp, ok, nil
}

func (c *Codec) upgrade(ct *container.Container) (*container.Container, bool) {
	if ct == nil {
		return nil, false
	}
	version, ok := ct.Int(container.ContentVersion)
	if !ok || version > ContentVersion || version < 0 {
		return nil, false
	}
	if version == ContentVersion {
		return ct, true
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	ct = ct.Copy()
	for v := version; v < ContentVersion; v++ {
		m, exists := c.migrations[v]
		if !exists {
			return nil, false
		}
		if ct, ok = m(ct); !ok || ct == nil {
			return nil, false
		}
	}
	ct.Set(container.ContentVersion, ContentVersion)
	return ct, true
}

type fields struct {
	ownerID     uuid.UUID
	displayName text.Text
	sightRange  float64
	traits      *trait.Set
}

func decodeFields(ct *container.Container, lookup trait.Lookup) (fields, bool) {
	var f fields
	if ct == nil || !ct.Contains(OwnerID.Query(), DisplayName.Query(), Traits.Query()) {
		return f, false
	}

	var ok bool
	if f.ownerID, ok = ct.UUID(OwnerID.Query()); !ok {
		return f, false
	}
	if !ct.Decode(DisplayName.Query(), &f.displayName) {
		return f, false
	}

	f.sightRange = DefaultSightRange
	if raw, present := ct.Get(SightRange.Query()); present {
		if f.sightRange, ok = ToSightRange(raw); !ok {
			return f, false
		}
	}

	ids, ok := ct.StringList(Traits.Query())
	if !ok {
		return f, false
	}
	f.traits = trait.NewSet()
	for _, id := range ids {
		if lookup == nil {
			return f, false
		}
		t, found := lookup.Get(id)
		if !found {
			return f, false
		}
		f.traits.Add(t)
	}
	return f, true
}

func encodeFields(ownerID uuid.UUID, displayName text.Text, sightRange float64, traits *trait.Set) *container.Container {
	ids := traits.IDs()
	if ids == nil {
		ids = []string{}
	}
	return container.New().
		Set(container.ContentVersion, ContentVersion).
		Set(OwnerID.Query(), ownerID).
		Set(DisplayName.Query(), displayName).
		Set(SightRange.Query(), sightRange).
		Set(Traits.Query(), ids)
}
