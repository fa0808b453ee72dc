package property

import (
	"context"
	"fmt"

	"github.com/zeusync/reveries/internal/core/host"
	"github.com/zeusync/reveries/internal/core/npc"
	"github.com/zeusync/reveries/internal/core/npc/data"
	"github.com/zeusync/reveries/internal/core/text"
)

const (
	SightRangeID  = "reveries:sight_range"
	DisplayNameID = "reveries:display_name"
	SkinID        = "reveries:skin"
)

// SightRange sets the component's sight range.
type SightRange struct {
	env Env
}

func NewSightRange(env Env) *SightRange { return &SightRange{env: env} }

func (p *SightRange) ID() string { return SightRangeID }

func (p *SightRange) Supports(value any) bool {
	switch value.(type) {
	case float64, float32, int, int32, int64, uint, uint32, uint64:
		return true
	default:
		return false
	}
}

func (p *SightRange) Set(_ context.Context, target host.Entity, value any, _ host.CommandSource) (bool, error) {
	comp, err := component(p.env, target)
	if err != nil {
		return false, err
	}
	r, ok := data.ToSightRange(value)
	if !ok {
		return false, reject(
			p.env.Messages.UnsupportedPropType.Apply(map[string]any{"property": p.ID()}),
			fmt.Errorf("%w: sight range %v", npc.ErrUnsupportedValue, value),
		)
	}
	if comp.SightRange() == r {
		return false, nil
	}
	next, err := comp.Copy().Set(data.SightRange, r)
	if err != nil {
		return false, err
	}
	if err := p.env.Store.OfferData(target, next); err != nil {
		return false, err
	}
	return true, nil
}

// DisplayName sets the component's display name and mirrors it onto the
// entity's native name when the entity has one.
type DisplayName struct {
	env Env
}

func NewDisplayName(env Env) *DisplayName { return &DisplayName{env: env} }

func (p *DisplayName) ID() string { return DisplayNameID }

func (p *DisplayName) Supports(value any) bool {
	switch value.(type) {
	case string, text.Text:
		return true
	default:
		return false
	}
}

func (p *DisplayName) Set(_ context.Context, target host.Entity, value any, _ host.CommandSource) (bool, error) {
	comp, err := component(p.env, target)
	if err != nil {
		return false, err
	}
	var name text.Text
	switch v := value.(type) {
	case text.Text:
		name = v
	case string:
		name = text.FromFormattingCode(v)
	default:
		return false, reject(
			p.env.Messages.UnsupportedPropType.Apply(map[string]any{"property": p.ID()}),
			fmt.Errorf("%w: %T", npc.ErrUnsupportedValue, value),
		)
	}
	if comp.DisplayName() == name {
		return false, nil
	}
	next, err := comp.Copy().Set(data.DisplayName, name)
	if err != nil {
		return false, err
	}
	if err := p.env.Store.OfferData(target, next); err != nil {
		return false, err
	}
	if named, ok := target.(host.DisplayNamed); ok {
		named.SetDisplayName(name)
	}
	return true, nil
}

func component(env Env, target host.Entity) (*data.Component, error) {
	comp, ok := data.Of(env.Store, target)
	if !ok {
		return nil, reject(env.Messages.NotAnNPC.Apply(nil), nil)
	}
	return comp, nil
}
