package models

import (
	"time"
)

// EventType is the kind discriminator shared by commands and notifications
type EventType string

const (
	// Lifecycle notifications
	EventIntegrationUpdated       EventType = "integration-updated"
	EventIntegrationNoConnections EventType = "integration-no-connections"

	// Edit commands
	EventInsertStep       EventType = "integration-insert-step"
	EventInsertConnection EventType = "integration-insert-connection"
	EventRemoveStep       EventType = "integration-remove-step"
	EventSetStep          EventType = "integration-set-step"
	EventSetProperties    EventType = "integration-set-properties"
	EventSetAction        EventType = "integration-set-action"
	EventSetConnection    EventType = "integration-set-connection"
	EventSetProperty      EventType = "integration-set-property"
	EventSave             EventType = "integration-save"
)

// Event is delivered to listeners once the editor has handled a command
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Command   Command   `json:"command"`
}

// EventListener receives every event flowing through the editor
type EventListener interface {
	OnEvent(event Event)
}

// EventListenerFunc adapts a function to EventListener
type EventListenerFunc func(event Event)

func (f EventListenerFunc) OnEvent(event Event) {
	f(event)
}
