package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/zeusync/reveries/internal/core/events/bus"
	"github.com/zeusync/reveries/internal/core/host"
	"github.com/zeusync/reveries/internal/core/text"
)

var (
	_ host.IdentityResolver = (*Profiles)(nil)
	_ host.Messenger        = (*Messenger)(nil)
	_ host.Host             = (*Host)(nil)
)

// Profiles resolves names from a fixed table, case-insensitively.
type Profiles struct {
	mu      sync.RWMutex
	byName  map[string]host.Profile
	lookups atomic.Int64

	// Gate, when set, is received from before every lookup completes.
	Gate chan struct{}
}

func NewProfiles() *Profiles {
	return &Profiles{byName: make(map[string]host.Profile)}
}

func (p *Profiles) Add(name string, id uuid.UUID) host.Profile {
	profile := host.Profile{ID: id, Name: name}
	p.mu.Lock()
	p.byName[strings.ToLower(name)] = profile
	p.mu.Unlock()
	return profile
}

func (p *Profiles) ResolveByName(ctx context.Context, name string) (host.Profile, error) {
	p.lookups.Add(1)
	if p.Gate != nil {
		select {
		case <-p.Gate:
		case <-ctx.Done():
			return host.Profile{}, ctx.Err()
		}
	}
	p.mu.RLock()
	profile, ok := p.byName[strings.ToLower(name)]
	p.mu.RUnlock()
	if !ok {
		return host.Profile{}, fmt.Errorf("%w: %s", host.ErrProfileNotFound, name)
	}
	return profile, nil
}

// Lookups counts ResolveByName calls.
func (p *Profiles) Lookups() int64 {
	return p.lookups.Load()
}

// Message is one delivered message.
type Message struct {
	To   string
	Text text.Text
}

// Messenger renders templates and records them per recipient.
type Messenger struct {
	mu   sync.Mutex
	sent []Message

	// Out, when set, receives every rendered message.
	Out func(Message)
}

func NewMessenger() *Messenger {
	return &Messenger{}
}

func (m *Messenger) Send(to host.CommandSource, msg text.Template, subs map[string]any) {
	rendered := Message{To: to.Name(), Text: msg.Apply(subs)}
	m.mu.Lock()
	m.sent = append(m.sent, rendered)
	out := m.Out
	m.mu.Unlock()
	if out != nil {
		out(rendered)
	}
}

// Sent returns every message delivered so far.
func (m *Messenger) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}

// Last returns the most recent message, if any.
func (m *Messenger) Last() (Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return Message{}, false
	}
	return m.sent[len(m.sent)-1], true
}

// Player is a command source with an identity and a position.
type Player struct {
	ID       uuid.UUID
	Username string
	Loc      host.Location
}

func NewPlayer(name string, loc host.Location) *Player {
	return &Player{ID: uuid.New(), Username: name, Loc: loc}
}

func (p *Player) Name() string            { return p.Username }
func (p *Player) UniqueID() uuid.UUID     { return p.ID }
func (p *Player) Location() host.Location { return p.Loc }

// Console is the server console: no identity, no location.
type Console struct{}

func (Console) Name() string { return "Console" }

// Host bundles the in-memory services.
type Host struct {
	store     *Store
	scheduler *Scheduler
	profiles  *Profiles
	messenger *Messenger
	events    bus.EventBus
}

// New builds a host knowing the given worlds.
func New(worlds ...string) *Host {
	events := bus.New()
	return &Host{
		store:     NewStore(events, worlds...),
		scheduler: NewScheduler(),
		profiles:  NewProfiles(),
		messenger: NewMessenger(),
		events:    events,
	}
}

func (h *Host) Entities() host.EntityStore      { return h.store }
func (h *Host) Scheduler() host.Scheduler       { return h.scheduler }
func (h *Host) Profiles() host.IdentityResolver { return h.profiles }
func (h *Host) Messenger() host.Messenger       { return h.messenger }
func (h *Host) Events() bus.EventBus            { return h.events }

// Store, Clock, Players and Chat expose the concrete services for tests and
// the demo.
func (h *Host) Store() *Store      { return h.store }
func (h *Host) Clock() *Scheduler  { return h.scheduler }
func (h *Host) Players() *Profiles { return h.profiles }
func (h *Host) Chat() *Messenger   { return h.messenger }
