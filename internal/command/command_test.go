package command

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/reveries/internal/core/host"
	"github.com/zeusync/reveries/internal/core/host/memory"
	"github.com/zeusync/reveries/internal/core/npc"
	"github.com/zeusync/reveries/internal/core/npc/data"
	"github.com/zeusync/reveries/internal/core/npc/property"
	"github.com/zeusync/reveries/internal/core/npc/spawn"
	"github.com/zeusync/reveries/internal/core/npc/trait"
	"github.com/zeusync/reveries/internal/core/observability/log"
	"github.com/zeusync/reveries/internal/core/text"
)

const owner = "test"

type fixture struct {
	host       *memory.Host
	dispatcher *Dispatcher
	player     *memory.Player
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	h := memory.New("overworld")
	msgs := text.DefaultMessages()
	logger := log.NewNop()

	traits := trait.NewRegistry()
	require.NoError(t, trait.RegisterBuiltins(traits))
	props := property.NewRegistry()
	require.NoError(t, property.RegisterBuiltins(props, property.Env{
		Store:     h.Entities(),
		Profiles:  h.Profiles(),
		Messenger: h.Messenger(),
		Messages:  msgs,
		Log:       logger,
	}))

	codec := data.NewCodec(traits, data.WithDefaultDisplayName(msgs.DefaultDisplayName))
	coordinator := spawn.NewCoordinator(h.Entities(), codec, h.Events(), logger)
	x := NewExecutors(Info{Name: "Reveries", Version: "1.2.3"}, h.Entities(), coordinator, traits, props, h.Messenger(), msgs, logger)

	d := NewDispatcher(h.Messenger(), logger)
	require.NoError(t, x.Register(d, owner))

	return &fixture{
		host:       h,
		dispatcher: d,
		player:     memory.NewPlayer("alex", host.Location{World: "overworld"}),
	}
}

func (f *fixture) last(t *testing.T) string {
	t.Helper()
	m, ok := f.host.Chat().Last()
	require.True(t, ok)
	return m.Text.Plain()
}

func (f *fixture) create(t *testing.T, args Args) host.Entity {
	t.Helper()
	require.NoError(t, f.dispatcher.Dispatch(context.Background(), f.player, CmdCreate, args))
	entities := f.host.Store().Entities()
	require.NotEmpty(t, entities)
	return entities[len(entities)-1]
}

func TestDispatcherRegistration(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, []string{CmdCreate, CmdProperties, CmdTraits, CmdVersion}, f.dispatcher.Commands())

	err := f.dispatcher.Register("other", Spec{Name: CmdVersion, Exec: func(context.Context, host.CommandSource, Args) error { return nil }})
	assert.ErrorIs(t, err, ErrDuplicate)

	assert.ErrorIs(t, f.dispatcher.Dispatch(context.Background(), f.player, "nope", nil), ErrUnknownCommand)

	assert.Equal(t, 4, f.dispatcher.Deregister(owner))
	assert.Empty(t, f.dispatcher.Commands())
}

func TestVersion(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.dispatcher.Dispatch(context.Background(), f.player, CmdVersion, nil))
	assert.Equal(t, "Reveries v1.2.3", f.last(t))
}

func TestCreateSendsSpawnSuccess(t *testing.T) {
	f := newFixture(t)
	e := f.create(t, Args{ArgDisplayName: "&aGuard"})

	comp, ok := data.Of(f.host.Entities(), e)
	require.True(t, ok)
	assert.Equal(t, f.player.ID, comp.OwnerID())
	assert.Equal(t, "§aGuard", comp.DisplayName().Code())
	assert.Equal(t, "Guard", e.(host.DisplayNamed).DisplayName().Plain())
	assert.Equal(t, f.player.Loc, e.Location())

	want := fmt.Sprintf("Spawned NPC Guard (human %s) owned by %s", e.UniqueID(), f.player.ID)
	assert.Equal(t, want, f.last(t))
}

func TestCreateDefaults(t *testing.T) {
	f := newFixture(t)
	e := f.create(t, Args{ArgEntityType: host.EntityTypeVillager})

	comp, _ := data.Of(f.host.Entities(), e)
	assert.Equal(t, "NPC", comp.DisplayName().Plain())
	assert.Equal(t, host.EntityTypeVillager, e.Type())
}

func TestCreateFromConsole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var cmdErr *Error
	err := f.dispatcher.Dispatch(ctx, memory.Console{}, CmdCreate, nil)
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "A location is required when not run by a player.", f.last(t))

	err = f.dispatcher.Dispatch(ctx, memory.Console{}, CmdCreate, Args{ArgLocation: host.Location{World: "overworld"}})
	assert.ErrorIs(t, err, npc.ErrPrecondition)
	assert.Equal(t, "Could not spawn NPC.", f.last(t))
	assert.Empty(t, f.host.Store().Entities())
}

func TestCreateSpawnFailure(t *testing.T) {
	f := newFixture(t)
	f.host.Store().RefuseSpawn = true

	err := f.dispatcher.Dispatch(context.Background(), f.player, CmdCreate, nil)
	assert.ErrorIs(t, err, npc.ErrSpawnFailed)
	assert.Equal(t, "Could not spawn NPC.", f.last(t))
}

func TestTraits(t *testing.T) {
	f := newFixture(t)
	e := f.create(t, nil)
	ctx := context.Background()

	require.NoError(t, f.dispatcher.Dispatch(ctx, f.player, CmdTraits, Args{
		ArgNPC:                 e,
		trait.Immobile.ID():    true,
		trait.Silent.ID():      true,
		"reveries:not_a_trait": true,
	}))
	assert.Equal(t, "Updated 2 trait(s).", f.last(t))

	require.NoError(t, f.dispatcher.Dispatch(ctx, f.player, CmdTraits, Args{ArgNPC: e, trait.Silent.ID(): false}))
	comp, _ := data.Of(f.host.Entities(), e)
	assert.Equal(t, []string{trait.Immobile.ID()}, comp.Traits().IDs())
}

func TestTraitsOnNonNPC(t *testing.T) {
	f := newFixture(t)
	plain, err := f.host.Store().CreateEntity(host.EntityTypeZombie, host.Location{World: "overworld"})
	require.NoError(t, err)

	err = f.dispatcher.Dispatch(context.Background(), f.player, CmdTraits, Args{ArgNPC: plain})
	var cmdErr *Error
	assert.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "That entity is not an NPC.", f.last(t))
}

func TestProperties(t *testing.T) {
	f := newFixture(t)
	e := f.create(t, nil)
	ctx := context.Background()
	skin := uuid.New()

	args := Args{
		ArgNPC:                 e,
		property.SightRangeID:  16.0,
		property.DisplayNameID: "&bBob",
		property.SkinID:        skin,
	}
	require.NoError(t, f.dispatcher.Dispatch(ctx, f.player, CmdProperties, args))
	assert.Equal(t, "Updated 3 property(ies).", f.last(t))

	require.NoError(t, f.dispatcher.Dispatch(ctx, f.player, CmdProperties, args))
	assert.Equal(t, "Updated 0 property(ies).", f.last(t))

	comp, _ := data.Of(f.host.Entities(), e)
	assert.Equal(t, 16.0, comp.SightRange())
	assert.Equal(t, "Bob", comp.DisplayName().Plain())
	assert.Equal(t, skin, e.(host.Skinned).Skin())
}

func TestPropertiesUnsupportedType(t *testing.T) {
	f := newFixture(t)
	e := f.create(t, nil)

	err := f.dispatcher.Dispatch(context.Background(), f.player, CmdProperties, Args{
		ArgNPC:                e,
		property.SightRangeID: "far",
	})
	var cmdErr *Error
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, "Unsupported value for property reveries:sight_range.", f.last(t))
}

func TestPropertiesRejected(t *testing.T) {
	f := newFixture(t)
	e := f.create(t, nil)

	err := f.dispatcher.Dispatch(context.Background(), f.player, CmdProperties, Args{
		ArgNPC:                e,
		property.SightRangeID: -3.0,
	})
	assert.ErrorIs(t, err, npc.ErrPropertyRejected)
	assert.Equal(t, "Unsupported value for property reveries:sight_range.", f.last(t))
}
