// Package monitor runs one periodic task per NPC entity. Tasks stop
// themselves when their entity disappears or stops being an NPC, and the
// whole set can be torn down on reload.
package monitor

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/reveries/internal/core/host"
	"github.com/zeusync/reveries/internal/core/npc"
	"github.com/zeusync/reveries/internal/core/npc/data"
	"github.com/zeusync/reveries/internal/core/observability/log"
)

const (
	DefaultInitialDelay = 50 * time.Millisecond
	DefaultInterval     = 50 * time.Millisecond
)

// TickHandler runs on every monitor tick with the entity and a snapshot of
// its component.
type TickHandler func(e host.Entity, snap data.Immutable)

type Options struct {
	InitialDelay time.Duration
	Interval     time.Duration
	Shards       int
}

func (o Options) withDefaults() Options {
	if o.InitialDelay <= 0 {
		o.InitialDelay = DefaultInitialDelay
	}
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	return o
}

// Watch is the bookkeeping of one monitored entity.
type Watch struct {
	entity uuid.UUID
	handle atomic.Value // host.TaskHandle
	ticks  atomic.Uint64
	// done is set once the watch has left the table.
	done atomic.Bool
}

func (w *Watch) Entity() uuid.UUID { return w.entity }

func (w *Watch) Handle() host.TaskHandle {
	h, _ := w.handle.Load().(host.TaskHandle)
	return h
}

// Ticks counts completed ticks.
func (w *Watch) Ticks() uint64 { return w.ticks.Load() }

type Scheduler struct {
	store host.EntityStore
	tasks host.Scheduler
	opts  Options
	table *Table[*Watch]
	log   log.Log

	mu       sync.RWMutex
	handlers []TickHandler
}

// New creates a monitor scheduler with SyncDisplayName installed.
func New(store host.EntityStore, tasks host.Scheduler, opts Options, logger log.Log) *Scheduler {
	opts = opts.withDefaults()
	s := &Scheduler{
		store: store,
		tasks: tasks,
		opts:  opts,
		table: NewTable[*Watch](opts.Shards),
		log:   logger.With(log.String("component", "monitor")),
	}
	s.AddTickHandler(SyncDisplayName)
	return s
}

// AddTickHandler appends h to the handlers run on every tick.
func (s *Scheduler) AddTickHandler(h TickHandler) {
	s.mu.Lock()
	s.handlers = append(s.handlers, h)
	s.mu.Unlock()
}

// Monitor starts the periodic task for e. It fails with npc.ErrPrecondition
// when e carries no NPC data or is already monitored.
func (s *Scheduler) Monitor(e host.Entity) error {
	if e == nil {
		return fmt.Errorf("%w: nil entity", npc.ErrPrecondition)
	}
	id := e.UniqueID()
	if _, ok := data.Of(s.store, e); !ok {
		return fmt.Errorf("%w: entity %s is not an NPC", npc.ErrPrecondition, id)
	}
	if s.table.Contains(id) {
		s.log.Warn("Entity already monitored", log.UUID("entity", id))
		return fmt.Errorf("%w: entity %s is monitored already", npc.ErrPrecondition, id)
	}

	w := &Watch{entity: id}
	if !s.table.PutIfAbsent(id, w) {
		s.log.Warn("Entity already monitored", log.UUID("entity", id))
		return fmt.Errorf("%w: entity %s is monitored already", npc.ErrPrecondition, id)
	}
	handle := s.tasks.Schedule(s.opts.InitialDelay, s.opts.Interval, func() { s.tick(w) })
	w.handle.Store(handle)
	// The task may have run and stopped, or been unmonitored, before the
	// handle was stored.
	if w.done.Load() {
		s.tasks.Cancel(handle)
		return nil
	}

	s.log.Debug("Monitoring NPC", log.UUID("entity", id), log.UUID("task", handle.ID))
	return nil
}

func (s *Scheduler) IsMonitoring(e host.Entity) bool {
	return e != nil && s.table.Contains(e.UniqueID())
}

// Watch returns the bookkeeping for a monitored entity.
func (s *Scheduler) Watch(id uuid.UUID) (*Watch, bool) {
	return s.table.Get(id)
}

// Unmonitor cancels the task of e. It reports whether e was monitored.
func (s *Scheduler) Unmonitor(e host.Entity) bool {
	if e == nil {
		return false
	}
	w, ok := s.table.Delete(e.UniqueID())
	if !ok {
		return false
	}
	s.cancel(w)
	s.log.Debug("Stopped monitoring NPC", log.UUID("entity", w.entity))
	return true
}

// Reset cancels every task and clears the table. It returns how many tasks
// were cancelled.
func (s *Scheduler) Reset() int {
	watches := s.table.Drain()
	for _, w := range watches {
		s.cancel(w)
	}
	if len(watches) > 0 {
		s.log.Debug("Monitors reset", log.Int("cancelled", len(watches)))
	}
	return len(watches)
}

func (s *Scheduler) Len() int {
	return s.table.Len()
}

func (s *Scheduler) tick(w *Watch) {
	e, ok := s.store.Entity(w.entity)
	if !ok {
		s.stop(w, "entity gone")
		return
	}
	comp, ok := data.Of(s.store, e)
	if !ok {
		s.stop(w, "npc data removed")
		return
	}

	snap := comp.AsImmutable()
	s.mu.RLock()
	handlers := s.handlers
	s.mu.RUnlock()
	for _, h := range handlers {
		h(e, snap)
	}
	w.ticks.Add(1)
}

func (s *Scheduler) stop(w *Watch, reason string) {
	s.table.CompareAndDelete(w.entity, w)
	s.cancel(w)
	s.log.Debug("Monitor stopped itself", log.UUID("entity", w.entity), log.String("reason", reason))
}

// cancel marks w done and cancels its task if the handle is known. Monitor
// cancels the task itself when the handle arrives later.
func (s *Scheduler) cancel(w *Watch) {
	w.done.Store(true)
	if h := w.Handle(); !h.IsZero() {
		s.tasks.Cancel(h)
	}
}

// SyncDisplayName keeps the entity's native display name equal to the
// component's.
func SyncDisplayName(e host.Entity, snap data.Immutable) {
	named, ok := e.(host.DisplayNamed)
	if !ok {
		return
	}
	if named.DisplayName() != snap.DisplayName() {
		named.SetDisplayName(snap.DisplayName())
	}
}
