// Package property defines NPC properties: named, typed setters that update
// an NPC's component or its host entity, resolved by id from a Registry.
package property

import (
	"context"
	"errors"

	"github.com/zeusync/reveries/internal/core/catalog"
	"github.com/zeusync/reveries/internal/core/host"
	"github.com/zeusync/reveries/internal/core/npc"
	"github.com/zeusync/reveries/internal/core/observability/log"
	"github.com/zeusync/reveries/internal/core/text"
)

// Property is a stateless, named setter.
type Property interface {
	ID() string
	// Supports reports whether value has a type Set can handle.
	Supports(value any) bool
	// Set applies value to target on behalf of actor. It reports false when
	// nothing changed, including when the change completes asynchronously.
	Set(ctx context.Context, target host.Entity, value any, actor host.CommandSource) (bool, error)
}

// Registry is the property catalogue.
type Registry = catalog.Catalog[Property]

func NewRegistry() *Registry {
	return catalog.New[Property]("property")
}

// Error is a user-facing refusal. It matches npc.ErrPropertyRejected and the
// underlying cause, if any.
type Error struct {
	Message text.Text
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return npc.ErrPropertyRejected.Error() + ": " + e.Message.Plain() + ": " + e.Err.Error()
	}
	return npc.ErrPropertyRejected.Error() + ": " + e.Message.Plain()
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{npc.ErrPropertyRejected, e.Err}
	}
	return []error{npc.ErrPropertyRejected}
}

func reject(msg text.Text, cause error) error {
	return &Error{Message: msg, Err: cause}
}

// AsError extracts the user-facing message of a property failure.
func AsError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// Env carries the host services the builtin properties work against.
type Env struct {
	Store     host.EntityStore
	Profiles  host.IdentityResolver
	Messenger host.Messenger
	Messages  text.Messages
	Log       log.Log
}

// Builtins returns the builtin properties bound to env.
func Builtins(env Env) []Property {
	return []Property{
		NewSightRange(env),
		NewDisplayName(env),
		NewSkin(env),
	}
}

// RegisterBuiltins adds the builtin properties. Called once during plugin
// pre-initialisation, before the registry is sealed.
func RegisterBuiltins(r *Registry, env Env) error {
	for _, p := range Builtins(env) {
		if err := r.Register(p); err != nil {
			return err
		}
	}
	return nil
}
