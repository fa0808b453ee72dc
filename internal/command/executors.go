package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/zeusync/reveries/internal/core/host"
	"github.com/zeusync/reveries/internal/core/npc/data"
	"github.com/zeusync/reveries/internal/core/npc/property"
	"github.com/zeusync/reveries/internal/core/npc/trait"
	"github.com/zeusync/reveries/internal/core/observability/log"
	"github.com/zeusync/reveries/internal/core/text"
)

// Command names.
const (
	CmdVersion    = "version"
	CmdCreate     = "create"
	CmdTraits     = "traits"
	CmdProperties = "properties"
)

// Argument names.
const (
	ArgEntityType  = "entityType"
	ArgLocation    = "location"
	ArgDisplayName = "displayName"
	ArgNPC         = "npc"
)

// Info identifies the plugin in the version command.
type Info struct {
	Name    string
	Version string
}

// Spawner is the slice of the spawn coordinator the create command needs.
type Spawner interface {
	CreateAndSpawn(kind host.EntityType, loc *host.Location, cause *host.Cause) (host.Entity, error)
}

type Executors struct {
	info       Info
	store      host.EntityStore
	spawner    Spawner
	traits     *trait.Registry
	properties *property.Registry
	messenger  host.Messenger
	messages   text.Messages
	log        log.Log
}

func NewExecutors(
	info Info,
	store host.EntityStore,
	spawner Spawner,
	traits *trait.Registry,
	properties *property.Registry,
	messenger host.Messenger,
	messages text.Messages,
	logger log.Log,
) *Executors {
	return &Executors{
		info:       info,
		store:      store,
		spawner:    spawner,
		traits:     traits,
		properties: properties,
		messenger:  messenger,
		messages:   messages,
		log:        logger.With(log.String("component", "command")),
	}
}

// Register adds every command to d on behalf of owner.
func (x *Executors) Register(d *Dispatcher, owner string) error {
	specs := []Spec{
		{Name: CmdVersion, Description: "Shows the plugin version", Permission: "reveries.command.version", Exec: x.Version},
		{Name: CmdCreate, Description: "Creates a new NPC", Permission: "reveries.command.create", Exec: x.Create},
		{Name: CmdTraits, Description: "Toggles NPC traits", Permission: "reveries.command.traits", Exec: x.Traits},
		{Name: CmdProperties, Description: "Sets NPC properties", Permission: "reveries.command.properties", Exec: x.Properties},
	}
	var errs []error
	for _, spec := range specs {
		if err := d.Register(owner, spec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (x *Executors) Version(_ context.Context, src host.CommandSource, _ Args) error {
	x.messenger.Send(src, x.messages.Version, map[string]any{
		"plugin.name":    x.info.Name,
		"plugin.version": x.info.Version,
	})
	return nil
}

// Create spawns an NPC owned by src. The entity type defaults to a human
// and the location to where src stands.
func (x *Executors) Create(_ context.Context, src host.CommandSource, args Args) error {
	kind := host.EntityTypeHuman
	if v, ok := args[ArgEntityType].(host.EntityType); ok && !v.IsZero() {
		kind = v
	}

	var loc host.Location
	switch v := args[ArgLocation].(type) {
	case host.Location:
		loc = v
	default:
		locatable, ok := src.(host.Locatable)
		if !ok {
			return &Error{Message: x.messages.NoLocation}
		}
		loc = locatable.Location()
	}

	name := x.messages.DefaultDisplayName
	if s, ok := args.String(ArgDisplayName); ok {
		name = text.FromFormattingCode(s)
	}

	entity, err := x.spawner.CreateAndSpawn(kind, &loc, &host.Cause{Source: x.info.Name, Owner: src})
	if err != nil {
		return &Error{Message: x.messages.SpawnFailed, Err: err}
	}

	comp, ok := data.Of(x.store, entity)
	if !ok {
		return &Error{Message: x.messages.SpawnFailed, Err: fmt.Errorf("entity %s has no npc data", entity.UniqueID())}
	}
	if _, err := comp.Set(data.DisplayName, name); err != nil {
		return err
	}
	if err := x.store.OfferData(entity, comp); err != nil {
		return err
	}
	if named, ok := entity.(host.DisplayNamed); ok {
		named.SetDisplayName(name)
	}

	displayName := comp.DisplayName()
	if displayName.IsEmpty() {
		displayName = x.messages.None
	}
	x.messenger.Send(src, x.messages.SpawnSuccess, map[string]any{
		"npc.owner":       comp.OwnerID(),
		"npc.entity.type": entity.Type().ID,
		"npc.entity.uuid": entity.UniqueID(),
		"npc.displayName": displayName,
	})
	return nil
}

// Traits adds or removes every trait whose id appears in args as a bool.
func (x *Executors) Traits(_ context.Context, src host.CommandSource, args Args) error {
	entity, comp, err := x.npc(args)
	if err != nil {
		return err
	}

	traits := comp.Traits()
	updates := 0
	for _, t := range x.traits.All() {
		on, ok := args.Bool(t.ID())
		if !ok {
			continue
		}
		updates++
		if on {
			traits.Add(t)
		} else {
			traits.Remove(t)
		}
	}
	if _, err := comp.Set(data.Traits, traits); err != nil {
		return err
	}
	if err := x.store.OfferData(entity, comp); err != nil {
		return err
	}

	x.messenger.Send(src, x.messages.UpdatedTraits, map[string]any{"amount": updates})
	return nil
}

// Properties sets every property whose id appears in args. It stops at the
// first value a property refuses.
func (x *Executors) Properties(ctx context.Context, src host.CommandSource, args Args) error {
	entity, _, err := x.npc(args)
	if err != nil {
		return err
	}
	if !entity.Type().Living {
		return &Error{Message: x.messages.NotAnNPC}
	}

	updates := 0
	for _, p := range x.properties.All() {
		value, ok := args.Get(p.ID())
		if !ok {
			continue
		}
		if !p.Supports(value) {
			return &Error{
				Message: x.messages.UnsupportedPropType,
				Subs:    map[string]any{"property": p.ID()},
			}
		}
		changed, err := p.Set(ctx, entity, value, src)
		if err != nil {
			if pe, ok := property.AsError(err); ok {
				return &Error{Message: text.Literal(pe.Message), Err: err}
			}
			return fmt.Errorf("set property %s: %w", p.ID(), err)
		}
		if changed {
			updates++
		}
	}

	x.messenger.Send(src, x.messages.UpdatedProps, map[string]any{"amount": updates})
	return nil
}

func (x *Executors) npc(args Args) (host.Entity, *data.Component, error) {
	entity, ok := args[ArgNPC].(host.Entity)
	if !ok || entity == nil {
		return nil, nil, &Error{Message: x.messages.NotAnNPC}
	}
	comp, ok := data.Of(x.store, entity)
	if !ok {
		return nil, nil, &Error{Message: x.messages.NotAnNPC}
	}
	return entity, comp, nil
}
