package data

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/reveries/internal/core/npc"
	"github.com/zeusync/reveries/internal/core/npc/trait"
	"github.com/zeusync/reveries/internal/core/text"
	"github.com/zeusync/reveries/pkg/container"
	"github.com/zeusync/reveries/pkg/encoding"
)

func newTraits(t *testing.T) *trait.Registry {
	t.Helper()
	r := trait.NewRegistry()
	require.NoError(t, trait.RegisterBuiltins(r))
	r.Seal()
	return r
}

func sample() *Component {
	return New(uuid.New(), text.FromFormattingCode("&aGuard"), 12.5, trait.NewSet(trait.Immobile, trait.Silent))
}

func TestNpcKeysRegistered(t *testing.T) {
	keys := NpcKeys.AllKeys()
	require.Len(t, keys, 4)
	assert.Equal(t, "reveries:owner_id", keys[0].ID())
	assert.Equal(t, container.Query("Traits"), keys[3].Query())

	k, ok := NpcKeys.Lookup("reveries:sight_range")
	require.True(t, ok)
	assert.Equal(t, TypeFloat64, k.ValueType())
}

func TestKeyRegistryRejectsDuplicates(t *testing.T) {
	r := NewKeyRegistry()
	get := func(c *Component) any { return nil }
	set := func(c *Component, v any) error { return nil }
	view := func(i Immutable) any { return nil }

	require.NoError(t, r.Register(OwnerID, get, set, view))
	assert.ErrorIs(t, r.Register(OwnerID, get, set, view), npc.ErrPrecondition)
	assert.ErrorIs(t, r.Register(NewKey[string]("other", "OwnerId", TypeText), get, set, view), npc.ErrPrecondition)
	assert.Panics(t, func() { r.MustRegister(OwnerID, get, set, view) })
}

func TestComponentGetSet(t *testing.T) {
	c := sample()

	_, err := c.Set(SightRange, 3)
	require.NoError(t, err)
	got, ok := Value(c, SightRange)
	require.True(t, ok)
	assert.Equal(t, 3.0, got)

	_, err = c.Set(DisplayName, "&bBob")
	require.NoError(t, err)
	assert.Equal(t, "§bBob", c.DisplayName().Code())

	c.Traits().Add(trait.Invulnerable)
	assert.True(t, c.Traits().Contains(trait.Invulnerable))
}

func TestComponentSetRejectsBadValues(t *testing.T) {
	c := sample()
	before := c.Copy()

	for _, v := range []any{-1.0, math.NaN(), math.Inf(1), "far"} {
		out, err := c.Set(SightRange, v)
		assert.ErrorIs(t, err, npc.ErrUnsupportedValue)
		assert.Nil(t, out)
	}
	for _, v := range []any{"a\xffb", text.Of("a\xffb")} {
		_, err := c.Set(DisplayName, v)
		assert.ErrorIs(t, err, npc.ErrUnsupportedValue)
	}
	_, err := c.Set(OwnerID, "not-a-uuid-value")
	assert.ErrorIs(t, err, npc.ErrUnsupportedValue)

	_, err = c.Set(NewKey[int]("unknown", "Unknown", TypeFloat64), 1)
	assert.ErrorIs(t, err, npc.ErrPrecondition)

	assert.True(t, before.Equal(c))
}

func TestCopyIsIndependent(t *testing.T) {
	c := sample()
	cp := c.Copy()
	cp.Traits().Add(trait.LookAtPlayers)

	assert.False(t, c.Traits().Contains(trait.LookAtPlayers))
	assert.False(t, c.Equal(cp))
}

func TestImmutableSnapshot(t *testing.T) {
	c := sample()
	snap := c.AsImmutable()
	c.Traits().Add(trait.Invulnerable)
	_, err := c.Set(SightRange, 99.0)
	require.NoError(t, err)

	assert.Equal(t, 12.5, snap.SightRange())
	assert.False(t, snap.HasTrait(trait.Invulnerable.ID()))

	set, ok := Value(snap, Traits)
	require.True(t, ok)
	set.Add(trait.Invulnerable)
	assert.False(t, snap.HasTrait(trait.Invulnerable.ID()))

	next, err := snap.With(SightRange, 4.0)
	require.NoError(t, err)
	assert.Equal(t, 4.0, next.SightRange())
	assert.Equal(t, 12.5, snap.SightRange())

	_, err = snap.With(SightRange, -4.0)
	assert.ErrorIs(t, err, npc.ErrUnsupportedValue)

	assert.True(t, snap.AsMutable().AsImmutable().Equal(snap))
}

func TestFillIsAlwaysAbsent(t *testing.T) {
	codec := NewCodec(newTraits(t))
	out, ok := codec.CreateFrom(nil)
	assert.False(t, ok)
	assert.Nil(t, out)
}

func TestCodecCreateDefaults(t *testing.T) {
	codec := NewCodec(newTraits(t), WithDefaultDisplayName(text.Of("Villager")))
	c := codec.Create()

	assert.Equal(t, uuid.Nil, c.OwnerID())
	assert.Equal(t, "Villager", c.DisplayName().Plain())
	assert.Equal(t, DefaultSightRange, c.SightRange())
	assert.Equal(t, 0, c.Traits().Len())
}

func TestCodecRoundTrip(t *testing.T) {
	codec := NewCodec(newTraits(t))
	c := sample()

	built, ok := codec.Build(c.ToContainer())
	require.True(t, ok)
	assert.True(t, c.Equal(built))

	snap, ok := codec.BuildImmutable(c.AsImmutable().ToContainer())
	require.True(t, ok)
	assert.True(t, snap.Equal(c.AsImmutable()))
}

func TestCodecRoundTripThroughBytes(t *testing.T) {
	for _, format := range []encoding.Format{encoding.FormatYAML, encoding.FormatJSON} {
		t.Run(format.String(), func(t *testing.T) {
			codec := NewCodec(newTraits(t), WithFormat(format))
			c := sample()

			b, err := codec.Marshal(c)
			require.NoError(t, err)

			got, ok, err := codec.Unmarshal(b)
			require.NoError(t, err)
			require.True(t, ok)
			assert.True(t, c.Equal(got), "got %s", got)
		})
	}
}

func TestCodecMarshalRefusesInvalidUTF8Name(t *testing.T) {
	c := New(uuid.New(), text.Of("a\xffb"), 0, trait.NewSet())
	for _, format := range []encoding.Format{encoding.FormatYAML, encoding.FormatJSON} {
		codec := NewCodec(newTraits(t), WithFormat(format))
		_, err := codec.Marshal(c)
		assert.ErrorIs(t, err, npc.ErrUnsupportedValue, format.String())
		_, err = codec.Marshal(c.AsImmutable())
		assert.ErrorIs(t, err, npc.ErrUnsupportedValue, format.String())
	}
}

func TestCodecUnmarshalMalformed(t *testing.T) {
	codec := NewCodec(newTraits(t))
	_, ok, err := codec.Unmarshal([]byte("{not yaml"))
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestCodecMissingRequiredFieldIsAbsent(t *testing.T) {
	codec := NewCodec(newTraits(t))
	for _, q := range []container.Query{OwnerID.Query(), DisplayName.Query(), Traits.Query(), container.ContentVersion} {
		ct := sample().ToContainer()
		ct.Remove(q)
		_, ok := codec.Build(ct)
		assert.False(t, ok, "without %s", q)
	}
}

func TestCodecMissingSightRangeDefaults(t *testing.T) {
	codec := NewCodec(newTraits(t))
	ct := sample().ToContainer()
	ct.Remove(SightRange.Query())

	c, ok := codec.Build(ct)
	require.True(t, ok)
	assert.Equal(t, DefaultSightRange, c.SightRange())
}

func TestCodecRejectsInvalidContent(t *testing.T) {
	codec := NewCodec(newTraits(t))

	cases := map[string]func(ct *container.Container){
		"future version":   func(ct *container.Container) { ct.Set(container.ContentVersion, ContentVersion+1) },
		"negative range":   func(ct *container.Container) { ct.Set(SightRange.Query(), -2.0) },
		"unknown trait":    func(ct *container.Container) { ct.Set(Traits.Query(), []string{"reveries:flying"}) },
		"owner not a uuid": func(ct *container.Container) { ct.Set(OwnerID.Query(), 42) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			ct := sample().ToContainer()
			mutate(ct)
			_, ok := codec.Build(ct)
			assert.False(t, ok)
		})
	}
}

func TestCodecFromLeavesReceiverOnFailure(t *testing.T) {
	traits := newTraits(t)
	c := sample()
	before := c.Copy()

	ct := sample().ToContainer()
	ct.Remove(Traits.Query())
	out, ok := c.From(ct, traits)
	assert.False(t, ok)
	assert.Nil(t, out)
	assert.True(t, before.Equal(c))
}

func TestCodecMigrations(t *testing.T) {
	codec := NewCodec(newTraits(t))
	owner := uuid.New()
	legacy := container.New().
		Set(container.ContentVersion, 0).
		Set("Owner", owner.String()).
		Set(DisplayName.Query(), "Old").
		Set(Traits.Query(), []string{})

	_, ok := codec.Build(legacy)
	assert.False(t, ok, "no migration registered")

	require.NoError(t, codec.RegisterMigration(0, func(ct *container.Container) (*container.Container, bool) {
		v, ok := ct.Get("Owner")
		if !ok {
			return nil, false
		}
		ct.Remove("Owner")
		return ct.Set(OwnerID.Query(), v), true
	}))
	assert.ErrorIs(t, codec.RegisterMigration(0, func(ct *container.Container) (*container.Container, bool) { return ct, true }), npc.ErrPrecondition)
	assert.ErrorIs(t, codec.RegisterMigration(ContentVersion, func(ct *container.Container) (*container.Container, bool) { return ct, true }), npc.ErrPrecondition)

	c, ok := codec.Build(legacy)
	require.True(t, ok)
	assert.Equal(t, owner, c.OwnerID())
	assert.True(t, legacy.Contains("Owner"), "migration works on a copy")
}
