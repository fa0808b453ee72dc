// Package plugin wires the NPC core into a host and drives its lifecycle:
// PreInit, Start, any number of Reloads, then Stop.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/zeusync/reveries/internal/command"
	"github.com/zeusync/reveries/internal/config"
	"github.com/zeusync/reveries/internal/core/events/bus"
	"github.com/zeusync/reveries/internal/core/host"
	"github.com/zeusync/reveries/internal/core/npc/data"
	"github.com/zeusync/reveries/internal/core/npc/monitor"
	"github.com/zeusync/reveries/internal/core/npc/property"
	"github.com/zeusync/reveries/internal/core/npc/spawn"
	"github.com/zeusync/reveries/internal/core/npc/trait"
	"github.com/zeusync/reveries/internal/core/observability/log"
	"github.com/zeusync/reveries/internal/core/text"
)

// Owner tags the commands and event subscriptions registered by the plugin.
const Owner = "reveries"

var ErrLifecycle = errors.New("invalid lifecycle transition")

type state uint8

const (
	stateNew state = iota
	statePreInit
	stateStarted
	stateStopped
)

func (s state) String() string {
	switch s {
	case stateNew:
		return "new"
	case statePreInit:
		return "pre-initialised"
	case stateStarted:
		return "started"
	case stateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Reveries is the plugin context. One is built per process and handed to
// whatever needs the registries or services; there is no global instance.
type Reveries struct {
	info     command.Info
	cfg      config.Config
	host     host.Host
	log      log.Log
	messages text.Messages

	traits      *trait.Registry
	properties  *property.Registry
	skin        *property.Skin
	codec       *data.Codec
	coordinator *spawn.Coordinator
	monitors    *monitor.Scheduler
	dispatcher  *command.Dispatcher
	executors   *command.Executors

	mu    sync.Mutex
	state state
}

func New(info command.Info, cfg config.Config, h host.Host, logger log.Log) (*Reveries, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	messages, err := cfg.TextMessages()
	if err != nil {
		return nil, err
	}
	format, err := cfg.Format()
	if err != nil {
		return nil, err
	}

	r := &Reveries{
		info:       info,
		cfg:        cfg,
		host:       h,
		log:        logger.With(log.String("plugin", info.Name)),
		messages:   messages,
		traits:     trait.NewRegistry(),
		properties: property.NewRegistry(),
	}
	r.codec = data.NewCodec(r.traits,
		data.WithDefaultDisplayName(messages.DefaultDisplayName),
		data.WithFormat(format))
	r.coordinator = spawn.NewCoordinator(h.Entities(), r.codec, h.Events(), r.log)
	r.monitors = monitor.New(h.Entities(), h.Scheduler(), monitor.Options{
		InitialDelay: cfg.Monitor.InitialDelay,
		Interval:     cfg.Monitor.Interval,
		Shards:       cfg.Monitor.Shards,
	}, r.log)
	r.dispatcher = command.NewDispatcher(h.Messenger(), r.log)
	r.executors = command.NewExecutors(info, h.Entities(), r.coordinator, r.traits, r.properties, h.Messenger(), messages, r.log)
	return r, nil
}

// PreInit registers the builtin traits and properties and seals both
// registries.
func (r *Reveries) PreInit() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != stateNew {
		return fmt.Errorf("%w: pre-init from %s", ErrLifecycle, r.state)
	}
	r.log.Info("Initializing...")

	if err := trait.RegisterBuiltins(r.traits); err != nil {
		return fmt.Errorf("register traits: %w", err)
	}
	env := property.Env{
		Store:     r.host.Entities(),
		Profiles:  r.host.Profiles(),
		Messenger: r.host.Messenger(),
		Messages:  r.messages,
		Log:       r.log,
	}
	r.skin = property.NewSkin(env).WithTimeout(r.cfg.NPC.SkinLookupTimeout)
	for _, p := range []property.Property{property.NewSightRange(env), property.NewDisplayName(env), r.skin} {
		if err := r.properties.Register(p); err != nil {
			return fmt.Errorf("register properties: %w", err)
		}
	}
	r.traits.Seal()
	r.properties.Seal()

	r.state = statePreInit
	return nil
}

// Start resumes monitoring of NPCs already present on the host, then
// registers listeners and commands.
func (r *Reveries) Start(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != statePreInit {
		return fmt.Errorf("%w: start from %s", ErrLifecycle, r.state)
	}
	r.log.Info("Starting...")

	r.resume(r.cfg.Log.ScanOnStart)
	if err := r.init(); err != nil {
		return err
	}
	r.state = stateStarted
	r.log.Info("Started.")
	return nil
}

// Reload drops commands, listeners and monitor tasks and registers the
// commands and listeners again. The monitor table stays empty; NPCs are
// monitored again as they spawn or when asked to explicitly.
func (r *Reveries) Reload(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != stateStarted {
		return fmt.Errorf("%w: reload from %s", ErrLifecycle, r.state)
	}
	r.log.Info("Reloading...")

	r.teardown()
	if err := r.init(); err != nil {
		return err
	}
	r.log.Info("Reloaded.")
	return nil
}

// Stop tears everything down and waits for pending skin lookups.
func (r *Reveries) Stop(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == stateStopped {
		return nil
	}
	r.teardown()
	if r.skin != nil {
		r.skin.Wait()
	}
	r.state = stateStopped
	r.log.Info("Stopped.")
	return nil
}

func (r *Reveries) init() error {
	events := r.host.Events()
	if _, err := events.SubscribeOwned(Owner, bus.NpcSpawned, r.onNpcSpawned); err != nil {
		return fmt.Errorf("subscribe %s: %w", bus.NpcSpawned, err)
	}
	if _, err := events.SubscribeOwned(Owner, bus.EntityRemoved, r.onEntityRemoved); err != nil {
		return fmt.Errorf("subscribe %s: %w", bus.EntityRemoved, err)
	}
	if err := r.executors.Register(r.dispatcher, Owner); err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	return nil
}

func (r *Reveries) teardown() {
	commands := r.dispatcher.Deregister(Owner)
	listeners := r.host.Events().UnsubscribeOwner(Owner)
	monitors := r.monitors.Reset()
	r.log.Debug("Torn down",
		log.Int("commands", commands),
		log.Int("listeners", listeners),
		log.Int("monitors", monitors))
}

func (r *Reveries) resume(verbose bool) {
	store := r.host.Entities()
	resumed := 0
	for _, e := range store.Entities() {
		comp, ok := data.Of(store, e)
		if !ok {
			continue
		}
		if verbose {
			r.log.Debug("NPC found", log.UUID("entity", e.UniqueID()), log.Stringer("data", comp))
		}
		if err := r.monitors.Monitor(e); err != nil {
			r.log.Warn("Could not resume monitor", log.UUID("entity", e.UniqueID()), log.Error(err))
			continue
		}
		resumed++
	}
	if resumed > 0 {
		r.log.Info("Resumed NPC monitors", log.Int("count", resumed))
	}
}

func (r *Reveries) onNpcSpawned(ev bus.Event) error {
	e, ok := ev.Data().(host.Entity)
	if !ok {
		return fmt.Errorf("%s: unexpected payload %T", ev.Type(), ev.Data())
	}
	if err := r.monitors.Monitor(e); err != nil {
		r.log.Warn("Could not monitor spawned NPC", log.UUID("entity", e.UniqueID()), log.Error(err))
	}
	return nil
}

func (r *Reveries) onEntityRemoved(ev bus.Event) error {
	e, ok := ev.Data().(host.Entity)
	if !ok {
		return fmt.Errorf("%s: unexpected payload %T", ev.Type(), ev.Data())
	}
	r.monitors.Unmonitor(e)
	return nil
}

// Persist encodes the NPC component of e for host storage.
func (r *Reveries) Persist(e host.Entity) ([]byte, error) {
	comp, ok := data.Of(r.host.Entities(), e)
	if !ok {
		return nil, fmt.Errorf("entity %s is not an NPC", e.UniqueID())
	}
	return r.codec.Marshal(comp)
}

// Restore decodes b and offers the component to e. It reports false when
// b decodes to no usable component.
func (r *Reveries) Restore(e host.Entity, b []byte) (bool, error) {
	comp, ok, err := r.codec.Unmarshal(b)
	if err != nil || !ok {
		return false, err
	}
	if err := r.host.Entities().OfferData(e, comp); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Reveries) Info() command.Info              { return r.info }
func (r *Reveries) Messages() text.Messages         { return r.messages }
func (r *Reveries) Traits() *trait.Registry         { return r.traits }
func (r *Reveries) Properties() *property.Registry  { return r.properties }
func (r *Reveries) Codec() *data.Codec              { return r.codec }
func (r *Reveries) Coordinator() *spawn.Coordinator { return r.coordinator }
func (r *Reveries) Monitors() *monitor.Scheduler    { return r.monitors }
func (r *Reveries) Commands() *command.Dispatcher   { return r.dispatcher }
