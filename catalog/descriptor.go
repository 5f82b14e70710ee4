package catalog

import "github.com/simon020286/go-flow/models"

type (
	// VisibilityFunc decides whether a step kind may be placed at position,
	// given the steps strictly before and strictly after it
	VisibilityFunc func(position int, previous, subsequent []*models.Step) bool

	// ValidateFunc checks a step's configured properties
	ValidateFunc func(props map[string]any) error

	// StepKindDescriptor describes one kind of processing step
	StepKindDescriptor struct {
		StepKind    string         `json:"stepKind"`
		Name        string         `json:"name"`
		Description string         `json:"description"`
		Properties  []Property     `json:"properties"`
		Custom      bool           `json:"custom,omitempty"`
		Visible     VisibilityFunc `json:"-"`
		Validate    ValidateFunc   `json:"-"`
	}
)

// IsVisible applies the descriptor's predicate; no predicate means the kind
// is legal everywhere
func (d *StepKindDescriptor) IsVisible(position int, previous, subsequent []*models.Step) bool {
	if d.Visible == nil {
		return true
	}
	return d.Visible(position, previous, subsequent)
}

// Property returns the schema entry with the given name
func (d *StepKindDescriptor) Property(name string) (Property, bool) {
	for _, p := range d.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// RequiresUpstreamOutput is satisfied when some previous step produces data
// with a resolved shape
func RequiresUpstreamOutput(_ int, previous, _ []*models.Step) bool {
	for _, s := range previous {
		if s.HasOutputShape() {
			return true
		}
	}
	return false
}

// RequiresDownstreamInput is satisfied when some subsequent step consumes
// data with a resolved shape
func RequiresDownstreamInput(_ int, _, subsequent []*models.Step) bool {
	for _, s := range subsequent {
		if s.HasInputShape() {
			return true
		}
	}
	return false
}

// All combines predicates; every one of them must hold
func All(preds ...VisibilityFunc) VisibilityFunc {
	return func(position int, previous, subsequent []*models.Step) bool {
		for _, p := range preds {
			if !p(position, previous, subsequent) {
				return false
			}
		}
		return true
	}
}
