// Package spawn creates NPCs: it materializes a living host entity, attaches
// a fresh component owned by the cause's owner and announces the result.
package spawn

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/zeusync/reveries/internal/core/events/bus"
	"github.com/zeusync/reveries/internal/core/host"
	"github.com/zeusync/reveries/internal/core/npc"
	"github.com/zeusync/reveries/internal/core/npc/data"
	"github.com/zeusync/reveries/internal/core/observability/log"
)

// EventSource tags events published by the coordinator.
const EventSource = "reveries.spawn"

type Coordinator struct {
	store  host.EntityStore
	codec  *data.Codec
	events bus.EventBus
	log    log.Log
}

func NewCoordinator(store host.EntityStore, codec *data.Codec, events bus.EventBus, logger log.Log) *Coordinator {
	return &Coordinator{
		store:  store,
		codec:  codec,
		events: events,
		log:    logger.With(log.String("component", "spawn")),
	}
}

// CreateAndSpawn spawns a living entity of kind at loc and makes it an NPC
// owned by cause.Owner.
//
// Missing arguments or an owner that is not host.Identifiable fail with
// npc.ErrPrecondition before the host is touched. A non-living kind or a
// host refusal fails with npc.ErrSpawnFailed and leaves no NPC behind.
func (c *Coordinator) CreateAndSpawn(kind host.EntityType, loc *host.Location, cause *host.Cause) (host.Entity, error) {
	if kind.IsZero() {
		return nil, fmt.Errorf("%w: nil entity type", npc.ErrPrecondition)
	}
	if loc == nil {
		return nil, fmt.Errorf("%w: nil location", npc.ErrPrecondition)
	}
	if cause == nil {
		return nil, fmt.Errorf("%w: nil cause", npc.ErrPrecondition)
	}
	owner, ok := cause.Owner.(host.Identifiable)
	if !ok || owner.UniqueID() == uuid.Nil {
		return nil, fmt.Errorf("%w: cause owner must be identifiable", npc.ErrPrecondition)
	}
	if !kind.Living {
		return nil, fmt.Errorf("%w: %s is not a living entity type", npc.ErrSpawnFailed, kind)
	}

	entity, err := c.store.CreateEntity(kind, *loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", npc.ErrSpawnFailed, err)
	}
	if !c.store.SpawnEntity(entity, *cause) {
		c.store.RemoveEntity(entity.UniqueID())
		return nil, fmt.Errorf("%w: host refused to spawn %s", npc.ErrSpawnFailed, kind)
	}

	comp := c.codec.CreateFor(owner.UniqueID())
	if !c.store.AttachData(entity, comp) {
		c.store.RemoveEntity(entity.UniqueID())
		return nil, fmt.Errorf("%w: %s already carries npc data", npc.ErrSpawnFailed, entity.UniqueID())
	}
	if named, ok := entity.(host.DisplayNamed); ok {
		named.SetDisplayName(comp.DisplayName())
	}

	c.log.Debug("NPC spawned",
		log.UUID("entity", entity.UniqueID()),
		log.String("type", kind.ID),
		log.UUID("owner", owner.UniqueID()),
		log.Stringer("location", *loc))

	if err := c.events.Publish(bus.NewEvent(bus.NpcSpawned, EventSource, entity)); err != nil {
		c.log.Warn("NPC spawn listener failed", log.UUID("entity", entity.UniqueID()), log.Error(err))
	}
	return entity, nil
}
