package bus

import (
	"errors"
	"testing"
)

type testObserver struct {
	publishCount   int
	deliveredCount int
	lastErr        error
}

func (o *testObserver) OnPublish(_ string, _ Event) {
	o.publishCount++
}

func (o *testObserver) OnDelivered(_ string, handlers int, err error, _ int64) {
	o.deliveredCount += handlers
	o.lastErr = err
}

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got any
	_, err := b.Subscribe("player.snapshot", func(e Event) error {
		got = e.Data()
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err = b.Publish(NewEvent("player.snapshot", "world", 123)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got != 123 {
		t.Fatalf("handler not called, got %v", got)
	}
}

func TestDeliveryOrderAndWildcard(t *testing.T) {
	b := New()
	var order []string
	_, _ = b.Subscribe(Wildcard, func(e Event) error { order = append(order, "any:"+e.Type()); return nil })
	_, _ = b.Subscribe("a", func(Event) error { order = append(order, "a1"); return nil })
	_, _ = b.Subscribe("a", func(Event) error { order = append(order, "a2"); return nil })

	_ = b.Publish(NewEvent("a", "src", nil))
	_ = b.Publish(NewEvent("b", "src", nil))

	want := []string{"a1", "a2", "any:a", "any:b"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	count := 0
	sub, _ := b.Subscribe("ev", func(Event) error { count++; return nil })
	_ = b.Publish(NewEvent("ev", "src", nil))
	if err := b.Unsubscribe(sub); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	_ = b.Publish(NewEvent("ev", "src", nil))
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	if sub.IsActive() {
		t.Fatal("subscription still active")
	}
	if err := b.Unsubscribe(nil); err != nil {
		t.Fatalf("nil unsubscribe: %v", err)
	}
}

func TestPublishJoinsHandlerErrors(t *testing.T) {
	b := New()
	e1, e2 := errors.New("one"), errors.New("two")
	_, _ = b.Subscribe("x", func(Event) error { return e1 })
	_, _ = b.Subscribe("x", func(Event) error { return e2 })

	err := b.PublishBatch(NewEvent("x", "src", nil))
	if !errors.Is(err, e1) || !errors.Is(err, e2) {
		t.Fatalf("expected both errors, got %v", err)
	}
}

func TestObserverMetricsOptional(t *testing.T) {
	b := New()
	_, _ = b.Subscribe("e", func(e Event) error { return nil })
	_ = b.Publish(NewEvent("e", "s", nil))
	m := b.GetMetrics()
	if m.Published != 0 || m.DeliveredHandlers != 0 {
		t.Fatalf("metrics should be zero without observers: %+v", m)
	}

	obs := &testObserver{}
	b.AddObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil))
	m2 := b.GetMetrics()
	if m2.Published != 1 || m2.DeliveredHandlers != 1 || m2.SubscribersActive != 1 {
		t.Fatalf("metrics should update with observer: %+v", m2)
	}
	if obs.publishCount != 1 || obs.deliveredCount != 1 {
		t.Fatalf("observer not called: %+v", obs)
	}

	b.RemoveObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil))
	if obs.publishCount != 1 {
		t.Fatalf("removed observer still called")
	}
}
