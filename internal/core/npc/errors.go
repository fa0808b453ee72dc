// Package npc groups the NPC data-component core. The error taxonomy shared
// by its sub-packages lives here.
package npc

import "errors"

var (
	// ErrPrecondition marks a caller bug: a missing or invalid argument or an
	// operation attempted in the wrong state. Never retried.
	ErrPrecondition = errors.New("precondition failed")
	// ErrSpawnFailed is returned when the host refuses to materialize an entity.
	ErrSpawnFailed = errors.New("could not spawn NPC")
	// ErrUnsupportedValue is returned when a value has the wrong type or shape
	// for a key or property. No state is changed.
	ErrUnsupportedValue = errors.New("unsupported value")
	// ErrPropertyRejected is returned when a property's own logic refuses a
	// value that passed the type check.
	ErrPropertyRejected = errors.New("property rejected value")
)
