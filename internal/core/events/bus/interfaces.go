package bus

import "time"

// Event types published by the host and by the NPC core.
const (
	// EntitySpawned carries the spawned host entity.
	EntitySpawned = "entity.spawned"
	// EntityRemoved carries the removed host entity.
	EntityRemoved = "entity.removed"
	// NpcSpawned carries the entity that just received its NPC component.
	NpcSpawned = "npc.spawned"
)

// EventBus is a thread-safe, in-process pub/sub bus.
//
// Delivery is synchronous, in subscription order, on the publisher's
// goroutine. Handler errors are joined and returned from Publish.
// Subscriptions may be grouped under an owner so that a listener object can
// be torn down in one call, which is what a plugin reload relies on.
type EventBus interface {
	// Publish delivers the event to every active subscriber of event.Type().
	Publish(event Event) error
	// Subscribe registers an ownerless handler.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// SubscribeOwned registers a handler on behalf of owner.
	SubscribeOwned(owner, eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the given Subscription. It is safe to call with nil.
	Unsubscribe(Subscription) error
	// UnsubscribeOwner cancels every subscription held by owner and returns
	// how many were removed.
	UnsubscribeOwner(owner string) int
	// Subscribers counts active subscriptions for an event type.
	Subscribers(eventType string) int
}

// Event is an immutable message transported by the EventBus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

// EventHandler is invoked per delivered event.
type EventHandler func(event Event) error

// Subscription represents a registered handler bound to an event type.
type Subscription interface {
	ID() string
	EventType() string
	Owner() string
	IsActive() bool
	// Cancel de-registers the handler from the bus. Multiple calls are safe.
	Cancel() error
}
