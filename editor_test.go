package flow

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simon020286/go-flow/models"
	"github.com/simon020286/go-flow/steps"
)

// recorder collects the kinds of every event it sees
type recorder struct {
	kinds []models.EventType
}

func (r *recorder) OnEvent(event models.Event) {
	r.kinds = append(r.kinds, event.Type)
}

func endpoint(id, connector string) *models.Step {
	return &models.Step{
		ID:       id,
		StepKind: models.StepKindEndpoint,
		Connection: &models.Connection{
			ID:          "conn-" + id,
			ConnectorID: connector,
		},
	}
}

func typedEndpoint(id, input, output string) *models.Step {
	s := endpoint(id, id)
	s.Action = &models.Action{ID: "action-" + id}
	if input != "" {
		s.Action.InputDataShape = &models.DataShape{Kind: input}
	}
	if output != "" {
		s.Action.OutputDataShape = &models.DataShape{Kind: output}
	}
	return s
}

func flowOf(n int) *models.Integration {
	integration := &models.Integration{ID: "i-1", Name: "test"}
	for i := 0; i < n; i++ {
		integration.Steps = append(integration.Steps,
			&models.Step{ID: fmt.Sprintf("s%d", i), StepKind: steps.KindLog})
	}
	return integration
}

func loadedEditor(t *testing.T, integration *models.Integration) *Editor {
	t.Helper()
	e := NewEditor(nil)
	e.Load(integration)
	e.Flush()
	require.True(t, e.IsLoaded())
	return e
}

func stepIDs(e *Editor) []string {
	var ids []string
	for _, s := range e.SubsequentSteps(0) {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestLoadDefersUpdated(t *testing.T) {
	e := NewEditor(nil)
	e.Load(flowOf(2))

	assert.False(t, e.IsLoaded())
	assert.Equal(t, 1, e.Pending())

	rec := &recorder{}
	e.Subscribe(rec)
	e.Flush()

	assert.True(t, e.IsLoaded())
	assert.Equal(t, []models.EventType{models.EventIntegrationUpdated}, rec.kinds)
	assert.Equal(t, 0, e.Pending())
}

func TestLoadEmptyFlowNotifiesNoConnections(t *testing.T) {
	e := NewEditor(nil)
	e.Load(&models.Integration{ID: "empty"})

	rec := &recorder{}
	e.Subscribe(rec)
	e.Flush()

	assert.Equal(t, []models.EventType{
		models.EventIntegrationUpdated,
		models.EventIntegrationNoConnections,
	}, rec.kinds)
	assert.True(t, e.IsEmpty())
}

func TestLoadResetsLoaded(t *testing.T) {
	e := loadedEditor(t, flowOf(2))
	e.Load(flowOf(3))
	assert.False(t, e.IsLoaded())
	assert.Equal(t, 3, e.Len())

	e.Flush()
	assert.True(t, e.IsLoaded())
}

func TestLoadFiltersNilSteps(t *testing.T) {
	integration := flowOf(2)
	integration.Steps = []*models.Step{nil, integration.Steps[0], nil, integration.Steps[1]}

	e := loadedEditor(t, integration)
	assert.Equal(t, []string{"s0", "s1"}, stepIDs(e))
}

func TestLoadCopiesDocument(t *testing.T) {
	integration := flowOf(2)
	e := loadedEditor(t, integration)

	integration.Steps[0].StepKind = "changed"
	integration.Name = "changed"

	step, ok := e.Step(0)
	require.True(t, ok)
	assert.Equal(t, steps.KindLog, step.StepKind)
	assert.Equal(t, "test", e.Integration().Name)
}

func TestScenarioTwoEndpoints(t *testing.T) {
	e := loadedEditor(t, &models.Integration{
		Steps: []*models.Step{endpoint("a", "webhook"), endpoint("b", "http")},
	})

	first, ok := e.FirstPosition()
	require.True(t, ok)
	assert.Equal(t, 0, first)

	last, ok := e.LastPosition()
	require.True(t, ok)
	assert.Equal(t, 1, last)

	assert.False(t, e.IsEmpty())
	assert.Empty(t, e.MiddleSteps())
}

func TestLastPosition(t *testing.T) {
	for n, expected := range map[int]int{0: 1, 1: 1, 2: 1, 3: 2, 6: 5} {
		e := loadedEditor(t, flowOf(n))
		last, ok := e.LastPosition()
		require.True(t, ok)
		assert.Equal(t, expected, last, "n=%d", n)
	}
}

func TestMiddle(t *testing.T) {
	e := loadedEditor(t, flowOf(5))

	middle, ok := e.MiddlePosition()
	require.True(t, ok)
	assert.Equal(t, 2, middle)

	ids := []string{}
	for _, s := range e.MiddleSteps() {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"s1", "s2", "s3"}, ids)

	e = loadedEditor(t, flowOf(4))
	middle, _ = e.MiddlePosition()
	assert.Equal(t, 2, middle)

	e = loadedEditor(t, flowOf(2))
	middle, _ = e.MiddlePosition()
	assert.Equal(t, 1, middle)
}

func TestInsertStepShiftsFollowingSteps(t *testing.T) {
	for n := 1; n <= 4; n++ {
		for p := 0; p < n; p++ {
			t.Run(fmt.Sprintf("n=%d/p=%d", n, p), func(t *testing.T) {
				e := loadedEditor(t, flowOf(n))
				before := stepIDs(e)

				e.Dispatch(models.InsertStep{Position: p})

				after := stepIDs(e)
				require.Len(t, after, n+1)
				assert.Equal(t, before[:p+1], after[:p+1])
				assert.Equal(t, before[p+1:], after[p+2:])

				inserted, ok := e.Step(p + 1)
				require.True(t, ok)
				assert.NotEmpty(t, inserted.ID)
				assert.Empty(t, inserted.StepKind)
				assert.NotContains(t, before, inserted.ID)
			})
		}
	}
}

func TestInsertConnection(t *testing.T) {
	e := loadedEditor(t, flowOf(2))
	e.Dispatch(models.InsertConnection{Position: 0})

	require.Equal(t, 3, e.Len())
	step, _ := e.Step(1)
	assert.True(t, step.IsEndpoint())
	assert.Nil(t, step.Connection)
}

func TestInsertSchedulesUpdated(t *testing.T) {
	e := loadedEditor(t, flowOf(2))
	rec := &recorder{}
	e.Subscribe(rec)

	e.Dispatch(models.InsertStep{Position: 0})

	assert.Equal(t, []models.EventType{
		models.EventInsertStep,
		models.EventIntegrationUpdated,
	}, rec.kinds)
}

func TestRemoveAtBoundaryKeepsLength(t *testing.T) {
	for n := 1; n <= 4; n++ {
		last := lastPosition(n)
		for _, p := range []int{0, last} {
			t.Run(fmt.Sprintf("n=%d/p=%d", n, p), func(t *testing.T) {
				e := loadedEditor(t, flowOf(n))
				e.Dispatch(models.RemoveStep{Position: p})

				assert.GreaterOrEqual(t, e.Len(), n)
				step, ok := e.Step(p)
				require.True(t, ok)
				assert.True(t, step.IsEndpoint())
				assert.Nil(t, step.Connection)
			})
		}
	}
}

func TestRemoveAtZeroOnTwoStepFlow(t *testing.T) {
	e := loadedEditor(t, &models.Integration{
		Steps: []*models.Step{endpoint("a", "webhook"), endpoint("b", "http")},
	})

	e.Dispatch(models.RemoveStep{Position: 0})

	assert.Equal(t, 2, e.Len())
	start, ok := e.StartStep()
	require.True(t, ok)
	assert.True(t, start.IsEndpoint())
	assert.NotEqual(t, "a", start.ID)
	assert.Empty(t, start.ConnectorID())

	end, _ := e.EndStep()
	assert.Equal(t, "b", end.ID)
}

func TestRemoveInteriorShrinks(t *testing.T) {
	e := loadedEditor(t, flowOf(4))
	e.Dispatch(models.RemoveStep{Position: 1})

	assert.Equal(t, []string{"s0", "s2", "s3"}, stepIDs(e))
}

func TestRemoveOutsideFlowIgnored(t *testing.T) {
	e := loadedEditor(t, flowOf(3))
	e.Dispatch(models.RemoveStep{Position: 7})
	e.Dispatch(models.RemoveStep{Position: -1})

	assert.Equal(t, []string{"s0", "s1", "s2"}, stepIDs(e))
}

func TestSetStepKeepsOnlyKind(t *testing.T) {
	integration := flowOf(3)
	integration.Steps[1].ConfiguredProperties = map[string]any{"customText": "x"}
	e := loadedEditor(t, integration)

	e.Dispatch(models.SetStep{
		Position: 1,
		Step: &models.Step{
			ID:                   "ignored",
			StepKind:             steps.KindSplit,
			ConfiguredProperties: map[string]any{"expression": "body"},
		},
	})

	step, ok := e.Step(1)
	require.True(t, ok)
	assert.Equal(t, steps.KindSplit, step.StepKind)
	assert.NotEqual(t, "s1", step.ID)
	assert.NotEqual(t, "ignored", step.ID)
	assert.Empty(t, step.ConfiguredProperties)
	assert.Equal(t, 3, e.Len())
}

func TestSetPropertiesOnMissingStep(t *testing.T) {
	e := loadedEditor(t, &models.Integration{
		Steps: []*models.Step{endpoint("a", "webhook"), endpoint("b", "http")},
	})

	e.Dispatch(models.SetProperties{
		Position: 2,
		Properties: map[string]any{
			"count": 5,
			"meta":  map[string]any{"a": 1},
		},
	})

	step, ok := e.Step(2)
	require.True(t, ok)
	assert.Equal(t, map[string]any{
		"count": 5,
		"meta":  `{"a":1}`,
	}, step.ConfiguredProperties)
}

func TestSetPropertiesNormalizes(t *testing.T) {
	e := loadedEditor(t, flowOf(3))
	input := map[string]any{
		"bodyLoggingEnabled": true,
		"customText":         "hello",
		"tags":               []any{"a", "b"},
	}
	e.Dispatch(models.SetProperties{Position: 1, Properties: input})

	step, _ := e.Step(1)
	assert.Equal(t, "true", step.ConfiguredProperties["bodyLoggingEnabled"])
	assert.Equal(t, "hello", step.ConfiguredProperties["customText"])
	assert.Equal(t, `["a","b"]`, step.ConfiguredProperties["tags"])
	assert.Equal(t, true, input["bodyLoggingEnabled"], "payload must not be mutated")
	assert.NoError(t, e.ValidateStep(1))
}

func TestSetAction(t *testing.T) {
	e := loadedEditor(t, flowOf(3))
	action := &models.Action{
		ID:              "http-post",
		OutputDataShape: &models.DataShape{Kind: "json-instance"},
	}
	e.Dispatch(models.SetAction{Position: 2, Action: action})

	step, _ := e.Step(2)
	assert.True(t, step.IsEndpoint())
	assert.Equal(t, "http-post", step.Action.ID)
	assert.Equal(t, "s2", step.ID)

	action.ID = "changed"
	step, _ = e.Step(2)
	assert.Equal(t, "http-post", step.Action.ID)
}

func TestSetActionOnMissingStepSynthesizes(t *testing.T) {
	e := loadedEditor(t, flowOf(2))
	e.Dispatch(models.SetAction{Position: 5, Action: &models.Action{ID: "x"}})

	require.Equal(t, 6, e.Len())
	step, _ := e.Step(5)
	assert.True(t, step.IsEndpoint())
	assert.Equal(t, "x", step.Action.ID)

	for p := 2; p < 5; p++ {
		gap, ok := e.Step(p)
		require.True(t, ok)
		assert.True(t, gap.IsEndpoint())
		assert.Nil(t, gap.Connection)
	}
}

func TestEndSlotWriteOnEmptyFlow(t *testing.T) {
	e := loadedEditor(t, &models.Integration{Steps: []*models.Step{}})
	last, ok := e.LastPosition()
	require.True(t, ok)
	require.Equal(t, 1, last)

	e.Dispatch(models.SetConnection{
		Position:   last,
		Connection: &models.Connection{ID: "end", ConnectorID: "http"},
	})
	e.Dispatch(models.SetConnection{
		Position:   0,
		Connection: &models.Connection{ID: "start", ConnectorID: "webhook"},
	})

	require.Equal(t, 2, e.Len())
	start, ok := e.StartConnection()
	require.True(t, ok)
	assert.Equal(t, "start", start.Connection.ID)
	end, ok := e.EndConnection()
	require.True(t, ok)
	assert.Equal(t, "end", end.Connection.ID)
}

func TestSetActionOnEndSlotOfEmptyFlow(t *testing.T) {
	e := loadedEditor(t, &models.Integration{Steps: []*models.Step{}})

	e.Dispatch(models.SetConnection{
		Position:   1,
		Connection: &models.Connection{ID: "end", ConnectorID: "http"},
	})
	e.Dispatch(models.SetAction{Position: 1, Action: &models.Action{ID: "http-post"}})

	require.Equal(t, 2, e.Len())
	end, ok := e.EndStep()
	require.True(t, ok)
	assert.Equal(t, "end", end.Connection.ID)
	assert.Equal(t, "http-post", end.Action.ID)

	start, _ := e.StartStep()
	assert.True(t, start.IsEndpoint())
	assert.Nil(t, start.Action)
}

func TestRemoveEndSlotOfEmptyFlow(t *testing.T) {
	e := loadedEditor(t, &models.Integration{Steps: []*models.Step{}})
	e.Dispatch(models.RemoveStep{Position: 1})

	require.Equal(t, 2, e.Len())
	for p := 0; p < 2; p++ {
		step, _ := e.Step(p)
		assert.True(t, step.IsEndpoint())
	}
}

func TestSetConnection(t *testing.T) {
	integration := flowOf(2)
	integration.Steps[0].ConfiguredProperties = map[string]any{"customText": "x"}
	e := loadedEditor(t, integration)

	e.Dispatch(models.SetConnection{
		Position:   0,
		Connection: &models.Connection{ID: "c", ConnectorID: "timer"},
	})

	step, _ := e.Step(0)
	assert.True(t, step.IsEndpoint())
	assert.Equal(t, "timer", step.ConnectorID())
	assert.Empty(t, step.ConfiguredProperties)
	assert.NotEqual(t, "s0", step.ID)

	conn, ok := e.StartConnection()
	require.True(t, ok)
	assert.Equal(t, "c", conn.Connection.ID)
}

func TestSetProperty(t *testing.T) {
	e := loadedEditor(t, flowOf(2))

	e.Dispatch(models.SetProperty{Property: PropertyName, Value: "orders"})
	e.Dispatch(models.SetProperty{Property: PropertyDescription, Value: 42})
	e.Dispatch(models.SetProperty{Property: PropertyTags, Value: []any{"a", "b", "a"}})
	e.Dispatch(models.SetProperty{
		Property: PropertyConfiguredProperties,
		Value:    map[string]any{"retries": 3, "env": map[string]any{"k": "v"}},
	})
	e.Dispatch(models.SetProperty{Property: "color", Value: "red"})

	i := e.Integration()
	assert.Equal(t, "orders", i.Name)
	assert.Equal(t, "42", i.Description)
	assert.Equal(t, []string{"a", "b"}, i.Tags)
	assert.Equal(t, map[string]any{"retries": 3, "env": `{"k":"v"}`}, i.ConfiguredProperties)
}

func TestSetPropertyConfiguredPropertiesFromJSON(t *testing.T) {
	e := loadedEditor(t, flowOf(2))
	e.Dispatch(models.SetProperty{
		Property: PropertyConfiguredProperties,
		Value:    `{"retries": 3}`,
	})
	assert.Equal(t, map[string]any{"retries": float64(3)}, e.Integration().ConfiguredProperties)

	e.Dispatch(models.SetProperty{Property: PropertyConfiguredProperties, Value: 7})
	assert.Equal(t, map[string]any{"retries": float64(3)}, e.Integration().ConfiguredProperties)
}

func TestOnSaveRunsAfterMutation(t *testing.T) {
	e := loadedEditor(t, flowOf(2))
	rec := &recorder{}
	e.Subscribe(rec)

	var lenAtSave int
	var eventsAtSave int
	e.Dispatch(models.InsertStep{
		Position: 0,
		OnSave: func() {
			lenAtSave = e.Len()
			eventsAtSave = len(rec.kinds)
			e.Dispatch(models.SetProperty{Property: PropertyName, Value: "chained"})
		},
	})

	assert.Equal(t, 3, lenAtSave)
	assert.Equal(t, 0, eventsAtSave, "listeners run after the continuation")
	assert.Equal(t, "chained", e.Integration().Name)
	assert.Equal(t, []models.EventType{
		models.EventInsertStep,
		models.EventSetProperty,
		models.EventIntegrationUpdated,
	}, rec.kinds)
}

func TestListenerDispatchIsQueued(t *testing.T) {
	e := loadedEditor(t, flowOf(3))

	var order []string
	e.Subscribe(models.EventListenerFunc(func(event models.Event) {
		order = append(order, "start "+string(event.Type))
		if event.Type == models.EventSetProperty {
			e.Dispatch(models.RemoveStep{Position: 1})
			order = append(order, fmt.Sprintf("len=%d", e.Len()))
		}
		order = append(order, "end "+string(event.Type))
	}))

	e.Dispatch(models.SetProperty{Property: PropertyName, Value: "x"})

	assert.Equal(t, []string{
		"start integration-set-property",
		"len=3",
		"end integration-set-property",
		"start integration-remove-step",
		"end integration-remove-step",
		"start integration-updated",
		"end integration-updated",
	}, order)
	assert.Equal(t, 2, e.Len())
}

func TestUnsubscribe(t *testing.T) {
	e := loadedEditor(t, flowOf(2))
	rec := &recorder{}
	unsubscribe := e.Subscribe(rec)

	e.Dispatch(models.SetProperty{Property: PropertyName, Value: "a"})
	unsubscribe()
	e.Dispatch(models.SetProperty{Property: PropertyName, Value: "b"})

	assert.Equal(t, []models.EventType{models.EventSetProperty}, rec.kinds)
}

func TestCommandsWithoutIntegration(t *testing.T) {
	e := NewEditor(nil)
	rec := &recorder{}
	e.Subscribe(rec)

	called := false
	e.Dispatch(models.InsertStep{Position: 0, OnSave: func() { called = true }})
	e.Dispatch(models.SetProperties{Position: 0, Properties: map[string]any{"a": 1}})

	assert.True(t, called)
	assert.Nil(t, e.Integration())
	assert.False(t, e.IsLoaded())
	assert.Contains(t, rec.kinds, models.EventInsertStep)
	assert.Contains(t, rec.kinds, models.EventSetProperties)
}

func TestDecodedCommandsApply(t *testing.T) {
	e := loadedEditor(t, flowOf(3))

	cmd, err := models.DecodeCommand([]byte(`{"kind":"integration-remove-step","position":"1"}`))
	require.NoError(t, err)
	e.Dispatch(cmd)

	assert.Equal(t, []string{"s0", "s2"}, stepIDs(e))
}
