package bus

import "time"

// EventBus is an in-process pub/sub bus carrying UI notifications out of the
// world engine.
//
// Handlers subscribe by Event.Type() and are called synchronously, in
// subscription order, on the publishing goroutine. Handler errors are joined
// and returned from Publish. Handlers must not publish back into the engine
// that emitted the event.
type EventBus interface {
	// Publish delivers event to every active subscriber of its type.
	Publish(event Event) error
	// PublishBatch publishes events in order and joins their errors.
	PublishBatch(events ...Event) error
	// Subscribe registers handler for eventType. The wildcard type "*"
	// receives every event.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels sub. A nil sub is ignored.
	Unsubscribe(sub Subscription) error

	AddObserver(obs EventBusObserver)
	RemoveObserver(obs EventBusObserver)
	// GetMetrics is only updated while at least one observer is registered.
	GetMetrics() EventBusMetrics
}

// Event is an immutable notification.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

type EventHandler func(event Event) error

// Subscription is a registered handler.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel de-registers the handler. Multiple calls are safe.
	Cancel() error
}

// EventBusObserver is told about every publish and its outcome.
type EventBusObserver interface {
	OnPublish(eventType string, event Event)
	OnDelivered(eventType string, handlers int, err error, durationMicros int64)
}

type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
}
