package flow

import (
	"github.com/simon020286/go-flow/catalog"
	"github.com/simon020286/go-flow/models"
)

const firstPosition = 0

// lastPosition is the index of the end endpoint slot. A flow always has a
// start and an end slot, even when they are not filled yet
func lastPosition(n int) int {
	return max(1, n-1)
}

func middlePosition(n int) int {
	return (lastPosition(n) + 1) / 2
}

func clampIndex(p, n int) int {
	return min(max(p, 0), n)
}

func cloneSteps(steps []*models.Step) []*models.Step {
	res := make([]*models.Step, len(steps))
	for i, s := range steps {
		res[i] = s.Clone()
	}
	return res
}

// withSteps runs fn on the live step sequence under the read lock. It
// reports false when no integration is loaded
func (e *Editor) withSteps(fn func(steps []*models.Step)) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.integration == nil {
		return false
	}
	fn(e.integration.Steps)
	return true
}

// FirstPosition returns the start endpoint slot
func (e *Editor) FirstPosition() (int, bool) {
	ok := e.withSteps(func([]*models.Step) {})
	return firstPosition, ok
}

// LastPosition returns max(1, len(steps)-1)
func (e *Editor) LastPosition() (int, bool) {
	var res int
	ok := e.withSteps(func(steps []*models.Step) {
		res = lastPosition(len(steps))
	})
	return res, ok
}

// MiddlePosition returns the last position halved, rounding up
func (e *Editor) MiddlePosition() (int, bool) {
	var res int
	ok := e.withSteps(func(steps []*models.Step) {
		res = middlePosition(len(steps))
	})
	return res, ok
}

// Len returns the number of steps in the flow
func (e *Editor) Len() int {
	var res int
	e.withSteps(func(steps []*models.Step) {
		res = len(steps)
	})
	return res
}

// Step returns a copy of the step at position
func (e *Editor) Step(position int) (*models.Step, bool) {
	var res *models.Step
	e.withSteps(func(steps []*models.Step) {
		if position >= 0 && position < len(steps) {
			res = steps[position].Clone()
		}
	})
	return res, res != nil
}

func (e *Editor) StartStep() (*models.Step, bool) {
	return e.Step(firstPosition)
}

func (e *Editor) EndStep() (*models.Step, bool) {
	last, ok := e.LastPosition()
	if !ok {
		return nil, false
	}
	return e.Step(last)
}

// StartConnection returns the start step when it is an endpoint
func (e *Editor) StartConnection() (*models.Step, bool) {
	return endpointOnly(e.StartStep())
}

// EndConnection returns the end step when it is an endpoint
func (e *Editor) EndConnection() (*models.Step, bool) {
	return endpointOnly(e.EndStep())
}

func endpointOnly(step *models.Step, ok bool) (*models.Step, bool) {
	if !ok || !step.IsEndpoint() {
		return nil, false
	}
	return step, true
}

// MiddleSteps returns the steps strictly between the first and last
// positions
func (e *Editor) MiddleSteps() []*models.Step {
	var res []*models.Step
	e.withSteps(func(steps []*models.Step) {
		last := lastPosition(len(steps))
		if last < 2 {
			return
		}
		res = cloneSteps(steps[firstPosition+1 : min(last, len(steps))])
	})
	return res
}

// PreviousSteps returns the steps before position
func (e *Editor) PreviousSteps(position int) []*models.Step {
	var res []*models.Step
	e.withSteps(func(steps []*models.Step) {
		res = cloneSteps(steps[:clampIndex(position, len(steps))])
	})
	return res
}

// SubsequentSteps returns the steps from position on, position included
func (e *Editor) SubsequentSteps(position int) []*models.Step {
	var res []*models.Step
	e.withSteps(func(steps []*models.Step) {
		res = cloneSteps(steps[clampIndex(position, len(steps)):])
	})
	return res
}

// PreviousConnections returns the endpoints before position
func (e *Editor) PreviousConnections(position int) []*models.Step {
	return models.Endpoints(e.PreviousSteps(position))
}

// SubsequentConnections returns the endpoints from position on
func (e *Editor) SubsequentConnections(position int) []*models.Step {
	return models.Endpoints(e.SubsequentSteps(position))
}

// PreviousConnection returns the nearest endpoint before position
func (e *Editor) PreviousConnection(position int) (*models.Step, bool) {
	conns := e.PreviousConnections(position)
	if len(conns) == 0 {
		return nil, false
	}
	return conns[len(conns)-1], true
}

// SubsequentConnection returns the first endpoint from position on
func (e *Editor) SubsequentConnection(position int) (*models.Step, bool) {
	conns := e.SubsequentConnections(position)
	if len(conns) == 0 {
		return nil, false
	}
	return conns[0], true
}

// IsEmpty reports whether a loaded integration has no steps
func (e *Editor) IsEmpty() bool {
	var res bool
	e.withSteps(func(steps []*models.Step) {
		res = len(steps) == 0
	})
	return res
}

// AtEnd reports whether position is past the last step
func (e *Editor) AtEnd(position int) bool {
	var res bool
	e.withSteps(func(steps []*models.Step) {
		res = position >= len(steps)
	})
	return res
}

// VisibleStepKinds returns the step kinds that may be placed at position,
// judged on the steps strictly before and strictly after it
func (e *Editor) VisibleStepKinds(position int) []catalog.StepKindDescriptor {
	var previous, subsequent []*models.Step
	ok := e.withSteps(func(steps []*models.Step) {
		n := len(steps)
		previous = cloneSteps(steps[:clampIndex(position, n)])
		subsequent = cloneSteps(steps[clampIndex(position+1, n):])
	})
	if !ok {
		return nil
	}
	return e.Catalog().Visible(position, previous, subsequent)
}

// ValidateStep runs the catalog validation of the step at position
func (e *Editor) ValidateStep(position int) error {
	var (
		step   *models.Step
		n      int
		loaded bool
	)
	loaded = e.withSteps(func(steps []*models.Step) {
		n = len(steps)
		if position >= 0 && position < n {
			step = steps[position].Clone()
		}
	})
	if !loaded {
		return models.ErrNoIntegration
	}
	if step == nil {
		return models.ErrPosition(position, n)
	}
	return e.Catalog().Validate(step)
}
