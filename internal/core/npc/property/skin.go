package property

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/zeusync/reveries/internal/core/host"
	"github.com/zeusync/reveries/internal/core/npc"
	"github.com/zeusync/reveries/internal/core/observability/log"
)

// DefaultLookupTimeout bounds a single profile lookup.
const DefaultLookupTimeout = 10 * time.Second

// Skin copies a player's skin onto the NPC. A uuid.UUID is applied at once;
// a player name is resolved in the background and the actor is told about
// the outcome when it completes.
type Skin struct {
	env     Env
	log     log.Log
	timeout time.Duration

	lookups singleflight.Group
	pending sync.WaitGroup
}

func NewSkin(env Env) *Skin {
	return &Skin{
		env:     env,
		log:     env.Log.With(log.String("component", "property"), log.String("property", SkinID)),
		timeout: DefaultLookupTimeout,
	}
}

// WithTimeout bounds each background lookup. Non-positive values keep the
// current timeout.
func (p *Skin) WithTimeout(d time.Duration) *Skin {
	if d > 0 {
		p.timeout = d
	}
	return p
}

func (p *Skin) ID() string { return SkinID }

func (p *Skin) Supports(value any) bool {
	switch v := value.(type) {
	case uuid.UUID:
		return v != uuid.Nil
	case string:
		return strings.TrimSpace(v) != ""
	default:
		return false
	}
}

func (p *Skin) Set(ctx context.Context, target host.Entity, value any, actor host.CommandSource) (bool, error) {
	skinned, err := p.skinned(target)
	if err != nil {
		return false, err
	}
	switch v := value.(type) {
	case uuid.UUID:
		return p.apply(skinned, v), nil
	case string:
		if id, err := uuid.Parse(v); err == nil {
			return p.apply(skinned, id), nil
		}
		p.resolve(ctx, target, skinned, strings.TrimSpace(v), actor)
		return false, nil
	default:
		return false, reject(
			p.env.Messages.UnsupportedPropType.Apply(map[string]any{"property": p.ID()}),
			fmt.Errorf("%w: %T", npc.ErrUnsupportedValue, value),
		)
	}
}

// Wait blocks until every background lookup has completed.
func (p *Skin) Wait() {
	p.pending.Wait()
}

func (p *Skin) skinned(target host.Entity) (host.Skinned, error) {
	if _, err := component(p.env, target); err != nil {
		return nil, err
	}
	skinned, ok := target.(host.Skinned)
	if !ok {
		return nil, reject(
			p.env.Messages.UnsupportedPropType.Apply(map[string]any{"property": p.ID()}),
			fmt.Errorf("%w: %s has no skin", npc.ErrUnsupportedValue, target.Type()),
		)
	}
	return skinned, nil
}

func (p *Skin) apply(target host.Skinned, id uuid.UUID) bool {
	if target.Skin() == id {
		return false
	}
	target.SetSkin(id)
	return true
}

func (p *Skin) resolve(ctx context.Context, target host.Entity, skinned host.Skinned, name string, actor host.CommandSource) {
	// the command that started the lookup returns before it completes
	ctx = context.WithoutCancel(ctx)
	key := strings.ToLower(name)

	p.pending.Add(1)
	go func() {
		defer p.pending.Done()

		v, err, shared := p.lookups.Do(key, func() (any, error) {
			lookupCtx, cancel := context.WithTimeout(ctx, p.timeout)
			defer cancel()
			return p.env.Profiles.ResolveByName(lookupCtx, name)
		})
		profile, _ := v.(host.Profile)
		if err == nil && profile.ID == uuid.Nil {
			err = fmt.Errorf("%w: %s resolved without an id", host.ErrProfileNotFound, name)
		}
		if err != nil {
			p.log.Warn("Skin lookup failed",
				log.String("player", name),
				log.UUID("entity", target.UniqueID()),
				log.Error(err))
			p.env.Messenger.Send(actor, p.env.Messages.SkinNotFound, nil)
			return
		}

		p.log.Debug("Skin resolved",
			log.String("player", name),
			log.UUID("skin", profile.ID),
			log.Bool("shared", shared))
		p.apply(skinned, profile.ID)
		p.env.Messenger.Send(actor, p.env.Messages.UpdatedProps, map[string]any{"amount": 1})
	}()
}
