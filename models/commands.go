package models

import "context"

// Command is an edit request processed by the editor's dispatch loop
type Command interface {
	Kind() EventType
}

// SaveFunc is invoked synchronously once a mutation has been applied
type SaveFunc func()

type (
	// IntegrationUpdated marks the loaded integration as ready
	IntegrationUpdated struct{}

	// IntegrationNoConnections is emitted when a loaded flow has no steps
	IntegrationNoConnections struct{}

	// InsertStep adds a blank processing step after Position
	InsertStep struct {
		Position int      `json:"position"`
		OnSave   SaveFunc `json:"-"`
	}

	// InsertConnection adds a blank endpoint after Position
	InsertConnection struct {
		Position int      `json:"position"`
		OnSave   SaveFunc `json:"-"`
	}

	// RemoveStep deletes the step at Position, or blanks it when Position is
	// the first or last endpoint slot
	RemoveStep struct {
		Position int      `json:"position"`
		OnSave   SaveFunc `json:"-"`
	}

	// SetStep replaces the step at Position with a blank step of Step's kind
	SetStep struct {
		Position int      `json:"position"`
		Step     *Step    `json:"step,omitempty"`
		OnSave   SaveFunc `json:"-"`
	}

	// SetProperties stores normalized configured properties on a step
	SetProperties struct {
		Position   int            `json:"position"`
		Properties map[string]any `json:"properties,omitempty"`
		OnSave     SaveFunc       `json:"-"`
	}

	// SetAction binds an action to the endpoint at Position
	SetAction struct {
		Position int      `json:"position"`
		Action   *Action  `json:"action,omitempty"`
		OnSave   SaveFunc `json:"-"`
	}

	// SetConnection replaces the step at Position with an endpoint
	SetConnection struct {
		Position   int         `json:"position"`
		Connection *Connection `json:"connection,omitempty"`
		OnSave     SaveFunc    `json:"-"`
	}

	// SetProperty sets a top-level integration field
	SetProperty struct {
		Property string   `json:"property"`
		Value    any      `json:"value,omitempty"`
		OnSave   SaveFunc `json:"-"`
	}

	// Save persists a copy of the integration. Exactly one of OnSuccess and
	// OnError is called, once
	Save struct {
		ID        string             `json:"id,omitempty"`
		Context   context.Context    `json:"-"`
		OnSuccess func(*Integration) `json:"-"`
		OnError   func(error)        `json:"-"`
	}
)

func (IntegrationUpdated) Kind() EventType       { return EventIntegrationUpdated }
func (IntegrationNoConnections) Kind() EventType { return EventIntegrationNoConnections }
func (InsertStep) Kind() EventType               { return EventInsertStep }
func (InsertConnection) Kind() EventType         { return EventInsertConnection }
func (RemoveStep) Kind() EventType               { return EventRemoveStep }
func (SetStep) Kind() EventType                  { return EventSetStep }
func (SetProperties) Kind() EventType            { return EventSetProperties }
func (SetAction) Kind() EventType                { return EventSetAction }
func (SetConnection) Kind() EventType            { return EventSetConnection }
func (SetProperty) Kind() EventType              { return EventSetProperty }
func (Save) Kind() EventType                     { return EventSave }
