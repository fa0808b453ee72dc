// Package trait defines NPC traits: boolean-membership behavioural tags
// resolved by id from a Registry.
package trait

import (
	"github.com/zeusync/reveries/internal/core/catalog"
)

// Trait is a registry-owned marker. Two traits are equal when their ids are.
type Trait interface {
	ID() string
	Name() string
}

type basic struct {
	id   string
	name string
}

// New returns a plain Trait.
func New(id, name string) Trait {
	return basic{id: id, name: name}
}

func (b basic) ID() string     { return b.id }
func (b basic) Name() string   { return b.name }
func (b basic) String() string { return b.id }

// Builtin traits.
var (
	Invulnerable  = New("reveries:invulnerable", "Invulnerable")
	Immobile      = New("reveries:immobile", "Immobile")
	LookAtPlayers = New("reveries:look_at_players", "Look at players")
	Silent        = New("reveries:silent", "Silent")
)

// Registry is the trait catalogue.
type Registry = catalog.Catalog[Trait]

// Lookup is the read side of a Registry used when deserializing.
type Lookup interface {
	Get(id string) (Trait, bool)
}

func NewRegistry() *Registry {
	return catalog.New[Trait]("trait")
}

// RegisterBuiltins adds the builtin traits. Called once during plugin
// pre-initialisation, before the registry is sealed.
func RegisterBuiltins(r *Registry) error {
	for _, t := range []Trait{Invulnerable, Immobile, LookAtPlayers, Silent} {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}
