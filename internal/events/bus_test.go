package events

import (
	"errors"
	"testing"
	"time"
)

func TestPublishFanOut(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.Subscribe(ActivityCompleted, func(e Event) error {
		order = append(order, "first")
		return nil
	})
	bus.Subscribe(ActivityCompleted, func(e Event) error {
		order = append(order, "second")
		return nil
	})
	bus.Subscribe(ModuleCompleted, func(e Event) error {
		order = append(order, "other-type")
		return nil
	})

	bus.Publish(Event{Type: ActivityCompleted, ChildID: 7, Date: time.Now()})

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("handlers ran as %v, want [first second] in subscription order", order)
	}
}

func TestPublishContinuesPastHandlerError(t *testing.T) {
	bus := NewBus()

	boom := errors.New("handler failed")
	called := false
	bus.Subscribe(ActivityCompleted, func(e Event) error {
		return boom
	})
	bus.Subscribe(ActivityCompleted, func(e Event) error {
		called = true
		return nil
	})

	err := bus.Publish(Event{Type: ActivityCompleted, ChildID: 7})

	if !called {
		t.Error("a failing handler blocked the handlers after it")
	}
	if !errors.Is(err, boom) {
		t.Errorf("Publish() error = %v, want it to wrap the handler failure", err)
	}
}

func TestPublishNoFailuresReturnsNil(t *testing.T) {
	bus := NewBus()
	bus.Subscribe(ActivityCompleted, func(e Event) error { return nil })

	if err := bus.Publish(Event{Type: ActivityCompleted, ChildID: 7}); err != nil {
		t.Errorf("Publish() error = %v, want nil", err)
	}
}
