package cache

// Event identifies a cache lifecycle event.
type Event string

const (
	// EventSet fires after an entry is stored or replaced.
	EventSet Event = "set"

	// EventGet fires after a cache hit.
	EventGet Event = "get"

	// EventDelete fires after an explicit Delete or bulk invalidation.
	EventDelete Event = "delete"

	// EventEvict fires after an entry is removed under capacity pressure.
	EventEvict Event = "evict"

	// EventExpire fires after an entry is removed because its TTL elapsed.
	EventExpire Event = "expire"
)

// Listener receives cache events. value is non-nil only for EventSet.
type Listener func(key string, value any)

// ListenerID identifies a registered listener for removal via Off.
type ListenerID uint64

// eventBus is an explicit observer registry: event kind to ordered list of
// listeners. Listeners run synchronously in registration order. It is only
// accessed under the cache mutex.
type eventBus struct {
	listeners map[Event][]registration
	nextID    ListenerID
}

type registration struct {
	id ListenerID
	fn Listener
}

func newEventBus() *eventBus {
	return &eventBus{listeners: make(map[Event][]registration)}
}

// subscribe registers fn for event and returns its id.
func (b *eventBus) subscribe(event Event, fn Listener) ListenerID {
	b.nextID++
	b.listeners[event] = append(b.listeners[event], registration{id: b.nextID, fn: fn})
	return b.nextID
}

// unsubscribe removes the listener with the given id. Only future events
// are affected. Returns false if no such listener is registered.
func (b *eventBus) unsubscribe(event Event, id ListenerID) bool {
	regs := b.listeners[event]
	for i, reg := range regs {
		if reg.id == id {
			b.listeners[event] = append(regs[:i:i], regs[i+1:]...)
			return true
		}
	}
	return false
}

// emit invokes every listener registered for event, in registration order.
func (b *eventBus) emit(event Event, key string, value any) {
	for _, reg := range b.listeners[event] {
		reg.fn(key, value)
	}
}
