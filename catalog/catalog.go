package catalog

import (
	"sync"

	"github.com/simon020286/go-flow/models"
)

// Catalog is an ordered registry of step kind descriptors. Order is the
// presentation order
type Catalog struct {
	mu    sync.RWMutex
	steps []StepKindDescriptor
}

// New creates a catalog holding the given descriptors in order
func New(descriptors ...StepKindDescriptor) *Catalog {
	c := &Catalog{}
	for _, d := range descriptors {
		c.Register(d)
	}
	return c
}

// Register appends a descriptor. A kind registered twice keeps its first
// position; lookups always return the first match
func (c *Catalog) Register(d StepKindDescriptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps = append(c.steps, d)
}

// Steps returns every descriptor in presentation order
func (c *Catalog) Steps() []StepKindDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()

	res := make([]StepKindDescriptor, len(c.steps))
	copy(res, c.steps)
	return res
}

// StepConfig returns the first descriptor for kind
func (c *Catalog) StepConfig(kind string) (*StepKindDescriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := range c.steps {
		if c.steps[i].StepKind == kind {
			d := c.steps[i]
			return &d, true
		}
	}
	return nil, false
}

// StepName returns the display name of kind, or kind itself when unknown
func (c *Catalog) StepName(kind string) string {
	if d, ok := c.StepConfig(kind); ok {
		return d.Name
	}
	return kind
}

// StepDescription returns the description of kind, or "" when unknown
func (c *Catalog) StepDescription(kind string) string {
	if d, ok := c.StepConfig(kind); ok {
		return d.Description
	}
	return ""
}

// IsCustomStep reports whether the step's kind needs a bespoke
// configuration UI
func (c *Catalog) IsCustomStep(step *models.Step) bool {
	if step == nil {
		return false
	}
	d, ok := c.StepConfig(step.StepKind)
	return ok && d.Custom
}

// Visible returns, in presentation order, the descriptors that may be
// placed at position
func (c *Catalog) Visible(position int, previous, subsequent []*models.Step) []StepKindDescriptor {
	var res []StepKindDescriptor
	for _, d := range c.Steps() {
		if d.IsVisible(position, previous, subsequent) {
			res = append(res, d)
		}
	}
	return res
}

// Validate runs the kind's property validation, if any
func (c *Catalog) Validate(step *models.Step) error {
	if step == nil || step.IsEndpoint() {
		return nil
	}
	d, ok := c.StepConfig(step.StepKind)
	if !ok || d.Validate == nil {
		return nil
	}
	return d.Validate(step.ConfiguredProperties)
}

// Len returns the number of registered descriptors
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.steps)
}
