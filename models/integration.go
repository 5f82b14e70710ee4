package models

import "slices"

// StepKindEndpoint marks a step bound to a connection instead of a catalog kind
const StepKindEndpoint = "endpoint"

// DataShapeKindNone marks an action side that consumes or produces nothing
const DataShapeKindNone = "none"

// Integration is the flow document being edited
type Integration struct {
	ID                   string         `json:"id,omitempty" yaml:"id,omitempty"`
	Name                 string         `json:"name,omitempty" yaml:"name,omitempty"`
	Description          string         `json:"description,omitempty" yaml:"description,omitempty"`
	Steps                []*Step        `json:"steps" yaml:"steps"`
	Tags                 []string       `json:"tags,omitempty" yaml:"tags,omitempty"`
	ConfiguredProperties map[string]any `json:"configuredProperties,omitempty" yaml:"configuredProperties,omitempty"`
}

// Step is one stage of the flow: an endpoint (Connection + Action) or a
// processing step identified by a catalog kind
type Step struct {
	ID                   string         `json:"id,omitempty" yaml:"id,omitempty"`
	StepKind             string         `json:"stepKind,omitempty" yaml:"stepKind,omitempty"`
	Connection           *Connection    `json:"connection,omitempty" yaml:"connection,omitempty"`
	Action               *Action        `json:"action,omitempty" yaml:"action,omitempty"`
	ConfiguredProperties map[string]any `json:"configuredProperties,omitempty" yaml:"configuredProperties,omitempty"`
}

// Connection identifies the external system an endpoint talks to
type Connection struct {
	ID                   string         `json:"id,omitempty" yaml:"id,omitempty"`
	Name                 string         `json:"name,omitempty" yaml:"name,omitempty"`
	ConnectorID          string         `json:"connectorId,omitempty" yaml:"connectorId,omitempty"`
	ConfiguredProperties map[string]any `json:"configuredProperties,omitempty" yaml:"configuredProperties,omitempty"`
}

// Action describes what an endpoint does and the shape of the data it
// consumes and produces
type Action struct {
	ID              string     `json:"id,omitempty" yaml:"id,omitempty"`
	Name            string     `json:"name,omitempty" yaml:"name,omitempty"`
	Description     string     `json:"description,omitempty" yaml:"description,omitempty"`
	Pattern         string     `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	InputDataShape  *DataShape `json:"inputDataShape,omitempty" yaml:"inputDataShape,omitempty"`
	OutputDataShape *DataShape `json:"outputDataShape,omitempty" yaml:"outputDataShape,omitempty"`
}

// DataShape is the schema of an action's input or output payload
type DataShape struct {
	Kind          string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Type          string `json:"type,omitempty" yaml:"type,omitempty"`
	Name          string `json:"name,omitempty" yaml:"name,omitempty"`
	Specification string `json:"specification,omitempty" yaml:"specification,omitempty"`
}

// NewBlankStep returns a processing step placeholder
func NewBlankStep(id string) *Step {
	return &Step{ID: id}
}

// NewBlankEndpoint returns an endpoint placeholder without connection
func NewBlankEndpoint(id string) *Step {
	return &Step{ID: id, StepKind: StepKindEndpoint}
}

// IsEndpoint reports whether the step is bound to a connection
func (s *Step) IsEndpoint() bool {
	return s != nil && s.StepKind == StepKindEndpoint
}

// Resolved reports whether the shape describes actual data
func (d *DataShape) Resolved() bool {
	return d != nil && d.Kind != "" && d.Kind != DataShapeKindNone
}

// HasOutputShape reports whether the step's action produces resolved data
func (s *Step) HasOutputShape() bool {
	return s != nil && s.Action != nil && s.Action.OutputDataShape.Resolved()
}

// HasInputShape reports whether the step's action consumes resolved data
func (s *Step) HasInputShape() bool {
	return s != nil && s.Action != nil && s.Action.InputDataShape.Resolved()
}

// ConnectorID returns the connector of an endpoint step, or ""
func (s *Step) ConnectorID() string {
	if s == nil || s.Connection == nil {
		return ""
	}
	return s.Connection.ConnectorID
}

// MergeTags adds every non-empty id that is not already tagged
func (i *Integration) MergeTags(ids ...string) {
	for _, id := range ids {
		if id == "" || slices.Contains(i.Tags, id) {
			continue
		}
		i.Tags = append(i.Tags, id)
	}
}

// Clone returns a structural deep copy of the integration
func (i *Integration) Clone() *Integration {
	if i == nil {
		return nil
	}
	res := &Integration{
		ID:                   i.ID,
		Name:                 i.Name,
		Description:          i.Description,
		Tags:                 slices.Clone(i.Tags),
		ConfiguredProperties: cloneValues(i.ConfiguredProperties),
	}
	if i.Steps != nil {
		res.Steps = make([]*Step, len(i.Steps))
		for idx, s := range i.Steps {
			res.Steps[idx] = s.Clone()
		}
	}
	return res
}

// Clone returns a deep copy of the step
func (s *Step) Clone() *Step {
	if s == nil {
		return nil
	}
	return &Step{
		ID:                   s.ID,
		StepKind:             s.StepKind,
		Connection:           s.Connection.Clone(),
		Action:               s.Action.Clone(),
		ConfiguredProperties: cloneValues(s.ConfiguredProperties),
	}
}

// Clone returns a deep copy of the connection
func (c *Connection) Clone() *Connection {
	if c == nil {
		return nil
	}
	res := *c
	res.ConfiguredProperties = cloneValues(c.ConfiguredProperties)
	return &res
}

// Clone returns a deep copy of the action
func (a *Action) Clone() *Action {
	if a == nil {
		return nil
	}
	res := *a
	res.InputDataShape = a.InputDataShape.Clone()
	res.OutputDataShape = a.OutputDataShape.Clone()
	return &res
}

// Clone returns a copy of the shape
func (d *DataShape) Clone() *DataShape {
	if d == nil {
		return nil
	}
	res := *d
	return &res
}

// FilterSteps drops nil entries, keeping positions dense
func FilterSteps(steps []*Step) []*Step {
	res := make([]*Step, 0, len(steps))
	for _, s := range steps {
		if s != nil {
			res = append(res, s)
		}
	}
	return res
}

// Endpoints returns the endpoint steps of the given sequence
func Endpoints(steps []*Step) []*Step {
	var res []*Step
	for _, s := range steps {
		if s.IsEndpoint() {
			res = append(res, s)
		}
	}
	return res
}

func cloneValues(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	res := make(map[string]any, len(in))
	for k, v := range in {
		res[k] = cloneValue(v)
	}
	return res
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneValues(t)
	case []any:
		res := make([]any, len(t))
		for i, e := range t {
			res[i] = cloneValue(e)
		}
		return res
	case []string:
		return slices.Clone(t)
	default:
		return v
	}
}
