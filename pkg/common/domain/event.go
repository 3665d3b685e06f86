package domain

// Event is a domain event emitted by an aggregate or service.
type Event interface {
	Type() string
}

// EventDispatcher delivers domain events to interested subscribers.
type EventDispatcher interface {
	Dispatch(event Event) error
}
