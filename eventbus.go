package katachi

import "reflect"

// EventBus provides a simple, type-keyed event bus for decoupled
// communication across a whole World. Where a Channel carries one value type
// between one producer and its observers, the bus fans any number of event
// types out to handlers keyed by the event's Go type. The world publishes its
// own lifecycle events (EntityCreated, EntityRemoved, TimerFired) here.
type EventBus struct {
	handlers map[reflect.Type][]any
}

// Subscribe registers a handler function to be called when an event of type
// `T` is published. Handlers run in the order they were subscribed.
func Subscribe[T any](bus *EventBus, handler func(T)) {
	t := reflect.TypeFor[T]()
	if bus.handlers == nil {
		bus.handlers = make(map[reflect.Type][]any, 8)
	}
	bus.handlers[t] = append(bus.handlers[t], handler)
}

// Publish broadcasts an event of type `T` to all registered handlers for that
// type, synchronously and in subscription order. Publishing a type nobody
// subscribed to is a no-op.
func Publish[T any](bus *EventBus, event T) {
	if bus.handlers == nil {
		return
	}
	for _, h := range bus.handlers[reflect.TypeFor[T]()] {
		h.(func(T))(event)
	}
}

// Clear drops every subscription. Events published afterwards go nowhere
// until handlers re-subscribe.
func (bus *EventBus) Clear() {
	bus.handlers = nil
}
