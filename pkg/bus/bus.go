// Package bus is a small in-process pub/sub bus for document lifecycle
// events. Handlers run asynchronously; publishing never blocks the caller.
package bus

import (
	"sync"
)

// EventType represents different kinds of configuration events
type EventType string

const (
	EventSectionAdded    EventType = "document.section_added"
	EventDocumentWritten EventType = "document.written"
	EventBackupCreated   EventType = "backup.created"
	EventBackupRestored  EventType = "backup.restored"
	EventProbeFinished   EventType = "probe.finished"
)

// Event describes one document lifecycle event
type Event struct {
	Type    EventType
	Section string
	Data    interface{}
}

// Handler is a function that handles events
type Handler func(event Event)

// Bus is a simple pub/sub event bus
type Bus struct {
	mu        sync.RWMutex
	handlers  map[EventType][]Handler
	eventChan chan Event
	wg        sync.WaitGroup
	stopped   bool
}

// NewBus creates a new event bus
func NewBus() *Bus {
	b := &Bus{
		handlers:  make(map[EventType][]Handler),
		eventChan: make(chan Event, 64),
	}
	b.start()
	return b
}

// Subscribe subscribes a handler to an event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish publishes an event to all subscribers. Events are dropped when
// the queue is full rather than blocking the caller.
func (b *Bus) Publish(event Event) {
	if b.stopped {
		return
	}

	select {
	case b.eventChan <- event:
	default:
	}
}

func (b *Bus) start() {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for event := range b.eventChan {
			b.dispatch(event)
		}
	}()
}

func (b *Bus) dispatch(event Event) {
	b.mu.RLock()
	handlers := b.handlers[event.Type]
	b.mu.RUnlock()

	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				// A panicking handler must not take the bus down
				_ = recover()
			}()
			h(event)
		}(handler)
	}
}

// Stop stops the event bus and waits for the dispatcher to drain
func (b *Bus) Stop() {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.stopped = true
	b.mu.Unlock()

	close(b.eventChan)
	b.wg.Wait()
}

// GlobalBus is the global event bus instance
var GlobalBus = NewBus()

// Subscribe subscribes to the global bus
func Subscribe(eventType EventType, handler Handler) {
	GlobalBus.Subscribe(eventType, handler)
}

// Publish publishes to the global bus
func Publish(event Event) {
	GlobalBus.Publish(event)
}
