package bus

import (
	"errors"
	"testing"
)

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	got := 0
	_, err := b.Subscribe(EntitySpawned, func(e Event) error {
		got++
		if e.Data() != 123 {
			t.Fatalf("unexpected payload: %v", e.Data())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err = b.Publish(NewEvent(EntitySpawned, "tester", 123)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got != 1 {
		t.Fatalf("handler called %d times", got)
	}
}

func TestDeliveryOrderFollowsSubscription(t *testing.T) {
	b := New()
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		_, _ = b.Subscribe("ev", func(Event) error { order = append(order, i); return nil })
	}
	_ = b.Publish(NewEvent("ev", "src", nil))
	for i, v := range order {
		if v != i {
			t.Fatalf("out of order delivery: %v", order)
		}
	}
}

func TestPublishJoinsHandlerErrors(t *testing.T) {
	b := New()
	first := errors.New("first")
	second := errors.New("second")
	_, _ = b.Subscribe("x", func(Event) error { return first })
	_, _ = b.Subscribe("x", func(Event) error { return second })
	err := b.Publish(NewEvent("x", "src", nil))
	if !errors.Is(err, first) || !errors.Is(err, second) {
		t.Fatalf("expected both errors, got %v", err)
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	b := New()
	count := 0
	sub, _ := b.Subscribe("x", func(Event) error { count++; return nil })
	_ = b.Publish(NewEvent("x", "src", nil))
	if err := b.Unsubscribe(sub); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	_ = sub.Cancel()
	_ = b.Publish(NewEvent("x", "src", nil))
	if count != 1 {
		t.Fatalf("expected 1 delivery, got %d", count)
	}
	if sub.IsActive() {
		t.Fatal("subscription still active")
	}
	if b.Subscribers("x") != 0 {
		t.Fatalf("subscription not removed")
	}
}

func TestUnsubscribeOwner(t *testing.T) {
	b := New()
	count := 0
	h := func(Event) error { count++; return nil }
	s1, _ := b.SubscribeOwned("listener", EntityRemoved, h)
	_, _ = b.SubscribeOwned("listener", NpcSpawned, h)
	_, _ = b.SubscribeOwned("other", NpcSpawned, h)

	if n := b.UnsubscribeOwner("listener"); n != 2 {
		t.Fatalf("expected 2 removed, got %d", n)
	}
	if s1.IsActive() {
		t.Fatal("owned subscription still active")
	}
	_ = b.Publish(NewEvent(NpcSpawned, "src", nil))
	_ = b.Publish(NewEvent(EntityRemoved, "src", nil))
	if count != 1 {
		t.Fatalf("expected only the other owner to receive, got %d", count)
	}
}

func TestSubscribeRejectsNilHandler(t *testing.T) {
	b := New()
	if _, err := b.Subscribe("x", nil); !errors.Is(err, ErrNilHandler) {
		t.Fatalf("expected ErrNilHandler, got %v", err)
	}
}
