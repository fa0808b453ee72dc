package spawn

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/reveries/internal/core/events/bus"
	"github.com/zeusync/reveries/internal/core/host"
	"github.com/zeusync/reveries/internal/core/host/memory"
	"github.com/zeusync/reveries/internal/core/npc"
	"github.com/zeusync/reveries/internal/core/npc/data"
	"github.com/zeusync/reveries/internal/core/npc/trait"
	"github.com/zeusync/reveries/internal/core/observability/log"
	"github.com/zeusync/reveries/internal/core/text"
)

var overworld = host.Location{World: "overworld"}

type named string

func (n named) Name() string { return string(n) }

func setup(t *testing.T) (*memory.Host, *Coordinator) {
	t.Helper()
	h := memory.New("overworld")
	codec := data.NewCodec(trait.NewRegistry(), data.WithDefaultDisplayName(text.Of("NPC")))
	return h, NewCoordinator(h.Entities(), codec, h.Events(), log.NewNop())
}

func TestCreateAndSpawn(t *testing.T) {
	h, c := setup(t)
	player := memory.NewPlayer("alex", overworld)

	var announced []host.Entity
	_, err := h.Events().Subscribe(bus.NpcSpawned, func(e bus.Event) error {
		announced = append(announced, e.Data().(host.Entity))
		return nil
	})
	require.NoError(t, err)

	loc := overworld
	e, err := c.CreateAndSpawn(host.EntityTypeVillager, &loc, &host.Cause{Source: "test", Owner: player})
	require.NoError(t, err)

	comp, ok := data.Of(h.Entities(), e)
	require.True(t, ok)
	assert.Equal(t, player.ID, comp.OwnerID())
	assert.Equal(t, "NPC", comp.DisplayName().Plain())
	assert.Equal(t, 0.0, comp.SightRange())
	assert.Zero(t, comp.Traits().Len())
	assert.Equal(t, "NPC", e.(host.DisplayNamed).DisplayName().Plain())

	require.Len(t, announced, 1)
	assert.Equal(t, e.UniqueID(), announced[0].UniqueID())
}

func TestCreateAndSpawnPreconditions(t *testing.T) {
	h, c := setup(t)
	player := memory.NewPlayer("alex", overworld)
	loc := overworld

	cases := map[string]func() (host.Entity, error){
		"zero kind": func() (host.Entity, error) {
			return c.CreateAndSpawn(host.EntityType{}, &loc, &host.Cause{Owner: player})
		},
		"nil loc": func() (host.Entity, error) {
			return c.CreateAndSpawn(host.EntityTypeHuman, nil, &host.Cause{Owner: player})
		},
		"nil cause": func() (host.Entity, error) { return c.CreateAndSpawn(host.EntityTypeHuman, &loc, nil) },
		"no owner":  func() (host.Entity, error) { return c.CreateAndSpawn(host.EntityTypeHuman, &loc, &host.Cause{}) },
		"named only": func() (host.Entity, error) {
			return c.CreateAndSpawn(host.EntityTypeHuman, &loc, &host.Cause{Owner: named("console")})
		},
		"nil uuid": func() (host.Entity, error) {
			return c.CreateAndSpawn(host.EntityTypeHuman, &loc, &host.Cause{Owner: &memory.Player{ID: uuid.Nil}})
		},
	}
	for name, call := range cases {
		t.Run(name, func(t *testing.T) {
			e, err := call()
			assert.ErrorIs(t, err, npc.ErrPrecondition)
			assert.Nil(t, e)
		})
	}
	assert.Empty(t, h.Store().Entities())
}

func TestCreateAndSpawnFailures(t *testing.T) {
	player := memory.NewPlayer("alex", overworld)

	t.Run("not living", func(t *testing.T) {
		h, c := setup(t)
		loc := overworld
		_, err := c.CreateAndSpawn(host.EntityTypeArmorStand, &loc, &host.Cause{Owner: player})
		assert.ErrorIs(t, err, npc.ErrSpawnFailed)
		assert.Empty(t, h.Store().Entities())
	})

	t.Run("host refuses", func(t *testing.T) {
		h, c := setup(t)
		h.Store().RefuseSpawn = true
		loc := overworld
		_, err := c.CreateAndSpawn(host.EntityTypeHuman, &loc, &host.Cause{Owner: player})
		assert.ErrorIs(t, err, npc.ErrSpawnFailed)
		assert.Empty(t, h.Store().Entities())
	})

	t.Run("create fails", func(t *testing.T) {
		h, c := setup(t)
		boom := errors.New("boom")
		h.Store().CreateErr = boom
		loc := overworld
		_, err := c.CreateAndSpawn(host.EntityTypeHuman, &loc, &host.Cause{Owner: player})
		assert.ErrorIs(t, err, npc.ErrSpawnFailed)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("unknown world", func(t *testing.T) {
		_, c := setup(t)
		loc := host.Location{World: "nether"}
		_, err := c.CreateAndSpawn(host.EntityTypeHuman, &loc, &host.Cause{Owner: player})
		assert.ErrorIs(t, err, npc.ErrSpawnFailed)
		assert.ErrorIs(t, err, host.ErrUnknownWorld)
	})
}
