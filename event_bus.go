package flow

import (
	"sync"
	"time"

	"github.com/simon020286/go-flow/models"
)

// eventBus delivers events to registered listeners (private).
// Delivery is synchronous and follows registration order
type eventBus struct {
	listeners []listenerEntry
	nextID    int
	mutex     sync.RWMutex
}

type listenerEntry struct {
	id       int
	listener models.EventListener
}

// newEventBus creates a new eventBus instance (private)
func newEventBus() *eventBus {
	return &eventBus{}
}

// addListener registers a listener and returns a function removing it
func (eb *eventBus) addListener(listener models.EventListener) func() {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	eb.nextID++
	id := eb.nextID
	eb.listeners = append(eb.listeners, listenerEntry{id: id, listener: listener})

	return func() {
		eb.mutex.Lock()
		defer eb.mutex.Unlock()
		for i, e := range eb.listeners {
			if e.id == id {
				eb.listeners = append(eb.listeners[:i:i], eb.listeners[i+1:]...)
				return
			}
		}
	}
}

// emit notifies every listener of a handled command
func (eb *eventBus) emit(cmd models.Command) {
	eb.mutex.RLock()
	listeners := make([]listenerEntry, len(eb.listeners))
	copy(listeners, eb.listeners)
	eb.mutex.RUnlock()

	event := models.Event{
		Type:      cmd.Kind(),
		Timestamp: time.Now(),
		Command:   cmd,
	}

	for _, e := range listeners {
		e.listener.OnEvent(event)
	}
}
