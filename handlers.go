package flow

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/simon020286/go-flow/logging"
	"github.com/simon020286/go-flow/models"
)

// Top-level integration fields settable with integration-set-property
const (
	PropertyName                 = "name"
	PropertyDescription          = "description"
	PropertyID                   = "id"
	PropertyTags                 = "tags"
	PropertyConfiguredProperties = "configuredProperties"
)

func (e *Editor) handle(cmd models.Command) {
	switch c := cmd.(type) {
	case models.IntegrationUpdated:
		e.onIntegrationUpdated(c)
	case models.IntegrationNoConnections:
		// notification only
	case models.InsertStep:
		e.insertAt(c, c.Position+1, models.NewBlankStep(uuid.NewString()))
		e.scheduleUpdated()
		runOnSave(c.OnSave)
	case models.InsertConnection:
		e.insertAt(c, c.Position+1, models.NewBlankEndpoint(uuid.NewString()))
		e.scheduleUpdated()
		runOnSave(c.OnSave)
	case models.RemoveStep:
		e.removeStep(c)
		e.scheduleUpdated()
		runOnSave(c.OnSave)
	case models.SetStep:
		e.setStep(c)
		runOnSave(c.OnSave)
	case models.SetProperties:
		e.setProperties(c)
		runOnSave(c.OnSave)
	case models.SetAction:
		e.setAction(c)
		runOnSave(c.OnSave)
	case models.SetConnection:
		e.setConnection(c)
		runOnSave(c.OnSave)
	case models.SetProperty:
		e.setProperty(c)
		runOnSave(c.OnSave)
	case models.Save:
		e.save(c)
	default:
		e.log().Warn("Ignoring unknown command",
			logging.Command(string(cmd.Kind())))
	}
}

func runOnSave(fn models.SaveFunc) {
	if fn != nil {
		fn()
	}
}

func (e *Editor) onIntegrationUpdated(cmd models.Command) {
	e.mu.Lock()
	if e.integration == nil {
		e.mu.Unlock()
		e.warn(cmd, "No integration loaded")
		return
	}
	e.loaded = true
	e.mu.Unlock()

	e.deferTask(func() {
		if e.IsEmpty() {
			e.Dispatch(models.IntegrationNoConnections{})
		}
	})
}

// insertAt places step at index idx, appending when idx is past the end
func (e *Editor) insertAt(cmd models.Command, idx int, step *models.Step) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.integration == nil {
		e.warn(cmd, "No integration loaded")
		return
	}
	if idx < 0 {
		e.warn(cmd, "Ignoring negative position", logging.Position(idx-1))
		return
	}

	steps := e.integration.Steps
	if idx >= len(steps) {
		e.integration.Steps = append(steps, step)
		return
	}
	e.integration.Steps = slices.Insert(steps, idx, step)
}

// setAt overwrites the step at position. Past the end, the gap is filled
// with blank endpoints so the step lands exactly at position. Callers hold
// the write lock
func (e *Editor) setAt(cmd models.Command, position int, step *models.Step) bool {
	if e.integration == nil {
		e.warn(cmd, "No integration loaded")
		return false
	}
	if position < 0 {
		e.warn(cmd, "Ignoring negative position", logging.Position(position))
		return false
	}

	if n := len(e.integration.Steps); position >= n {
		for i := n; i < position; i++ {
			e.integration.Steps = append(e.integration.Steps,
				models.NewBlankEndpoint(uuid.NewString()))
		}
		e.integration.Steps = append(e.integration.Steps, step)
		return true
	}
	e.integration.Steps[position] = step
	return true
}

// stepAt returns the live step at position, synthesizing a blank step when
// there is none. Callers hold the write lock
func (e *Editor) stepAt(cmd models.Command, position int) (*models.Step, bool) {
	if e.integration == nil {
		e.warn(cmd, "No integration loaded")
		return nil, false
	}
	if position >= 0 && position < len(e.integration.Steps) {
		return e.integration.Steps[position], true
	}

	step := models.NewBlankStep(uuid.NewString())
	if !e.setAt(cmd, position, step) {
		return nil, false
	}
	e.warn(cmd, "Created missing step", logging.Position(position))
	return step, true
}

func (e *Editor) removeStep(cmd models.RemoveStep) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.integration == nil {
		e.warn(cmd, "No integration loaded")
		return
	}

	p := cmd.Position
	n := len(e.integration.Steps)
	switch {
	case p == firstPosition || p == lastPosition(n):
		e.setAt(cmd, p, models.NewBlankEndpoint(uuid.NewString()))
	case p > firstPosition && p < n:
		e.integration.Steps = slices.Delete(e.integration.Steps, p, p+1)
	default:
		e.warn(cmd, "Ignoring position outside the flow",
			logging.Position(p))
	}
}

func (e *Editor) setStep(cmd models.SetStep) {
	step := models.NewBlankStep(uuid.NewString())
	if cmd.Step != nil {
		step.StepKind = cmd.Step.StepKind
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.setAt(cmd, cmd.Position, step)
}

func (e *Editor) setProperties(cmd models.SetProperties) {
	props := models.NormalizeProperties(cmd.Properties)

	e.mu.Lock()
	step, ok := e.stepAt(cmd, cmd.Position)
	if !ok {
		e.mu.Unlock()
		return
	}
	step.ConfiguredProperties = props
	snapshot := step.Clone()
	e.mu.Unlock()

	if err := e.Catalog().Validate(snapshot); err != nil {
		e.warn(cmd, "Step properties do not validate",
			logging.Position(cmd.Position),
			logging.StepKind(snapshot.StepKind),
			logging.Error(err))
	}
}

func (e *Editor) setAction(cmd models.SetAction) {
	e.mu.Lock()
	defer e.mu.Unlock()

	step, ok := e.stepAt(cmd, cmd.Position)
	if !ok {
		return
	}
	step.Action = cmd.Action.Clone()
	step.StepKind = models.StepKindEndpoint
}

func (e *Editor) setConnection(cmd models.SetConnection) {
	step := models.NewBlankEndpoint(uuid.NewString())
	step.Connection = cmd.Connection.Clone()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.setAt(cmd, cmd.Position, step)
}

func (e *Editor) setProperty(cmd models.SetProperty) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.integration
	if i == nil {
		e.warn(cmd, "No integration loaded")
		return
	}

	switch cmd.Property {
	case PropertyName:
		i.Name = stringValue(cmd.Value)
	case PropertyDescription:
		i.Description = stringValue(cmd.Value)
	case PropertyID:
		i.ID = stringValue(cmd.Value)
	case PropertyTags:
		i.Tags = nil
		i.MergeTags(stringList(cmd.Value)...)
	case PropertyConfiguredProperties:
		props, ok := propertyMap(cmd.Value)
		if !ok {
			e.warn(cmd, "Ignoring configured properties that are not an object")
			return
		}
		i.ConfiguredProperties = models.NormalizeProperties(props)
	default:
		e.warn(cmd, "Ignoring unknown integration property",
			"property", cmd.Property)
	}
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(models.NormalizeValue(t))
	}
}

func stringList(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		res := make([]string, 0, len(t))
		for _, item := range t {
			res = append(res, stringValue(item))
		}
		return res
	case string:
		return []string{t}
	default:
		return nil
	}
}

// propertyMap accepts an object or its JSON text
func propertyMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case nil:
		return map[string]any{}, true
	case string:
		var res map[string]any
		if err := json.Unmarshal([]byte(t), &res); err != nil || res == nil {
			return nil, false
		}
		return res, true
	default:
		return nil, false
	}
}
