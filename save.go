package flow

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/simon020286/go-flow/logging"
	"github.com/simon020286/go-flow/models"
)

// Persistence stores integrations. It is called from a background
// goroutine, once per save
type Persistence interface {
	UpdateOrCreate(ctx context.Context, integration *models.Integration) (*models.Integration, error)
}

// SaveResult is the single terminal message of a save
type SaveResult struct {
	ID          string
	Integration *models.Integration
	Err         error
}

// saveTracker records in-flight saves by correlation id, and the result
// channels of saves started through Editor.Save
type saveTracker struct {
	mu       sync.Mutex
	inflight map[string]context.CancelFunc
	waiters  map[string]chan<- SaveResult
	wg       sync.WaitGroup
}

func newSaveTracker() *saveTracker {
	return &saveTracker{
		inflight: make(map[string]context.CancelFunc),
		waiters:  make(map[string]chan<- SaveResult),
	}
}

func (t *saveTracker) watch(id string, ch chan<- SaveResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.waiters[id] = ch
}

// begin registers a save and claims the result channel watching its id. A
// correlation id already in flight is replaced by a fresh one
func (t *saveTracker) begin(
	ctx context.Context, id string,
) (context.Context, string, chan<- SaveResult) {
	ctx, cancel := context.WithCancel(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	waiter := t.waiters[id]
	delete(t.waiters, id)
	if _, dup := t.inflight[id]; dup || id == "" {
		id = uuid.NewString()
	}
	t.inflight[id] = cancel
	t.wg.Add(1)
	return ctx, id, waiter
}

func (t *saveTracker) release(id string) {
	t.mu.Lock()
	cancel, ok := t.inflight[id]
	delete(t.inflight, id)
	t.mu.Unlock()

	if ok {
		cancel()
		t.wg.Done()
	}
}

func (t *saveTracker) cancel(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	cancel, ok := t.inflight[id]
	if ok {
		cancel()
	}
	return ok
}

func (t *saveTracker) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inflight)
}

// Save dispatches integration-save and returns a channel that receives
// exactly one result. The result is sent from the save goroutine, so the
// caller need not Flush to receive it
func (e *Editor) Save(ctx context.Context) <-chan SaveResult {
	id := uuid.NewString()
	ch := make(chan SaveResult, 1)

	e.saves.watch(id, ch)
	e.Dispatch(models.Save{ID: id, Context: ctx})
	return ch
}

// CancelSave cancels the context of an in-flight save. The save still
// reports through its error continuation
func (e *Editor) CancelSave(id string) bool {
	return e.saves.cancel(id)
}

// InFlight returns the number of saves not completed yet
func (e *Editor) InFlight() int {
	return e.saves.count()
}

// Wait blocks until every in-flight save has completed, then runs their
// continuations through Flush
func (e *Editor) Wait() {
	e.saves.wg.Wait()
	e.Flush()
}

// saveSnapshot copies the integration and tags it with the connector of
// every endpoint in the flow
func (e *Editor) saveSnapshot() (*models.Integration, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.integration == nil {
		return nil, models.ErrNoIntegration
	}
	res := e.integration.Clone()
	for _, step := range models.Endpoints(res.Steps[firstPosition:]) {
		res.MergeTags(step.ConnectorID())
	}
	return res, nil
}

// save persists a snapshot on its own goroutine. Continuations are queued
// as deferred tasks, so they run on the editor loop during the next
// Dispatch, Flush or Wait and never drain commands from the save goroutine
func (e *Editor) save(cmd models.Save) {
	ctx := cmd.Context
	if ctx == nil {
		ctx = context.Background()
	}

	snapshot, snapErr := e.saveSnapshot()
	ctx, id, waiter := e.saves.begin(ctx, cmd.ID)

	go func() {
		defer e.saves.release(id)

		var (
			result *models.Integration
			err    = snapErr
		)
		if err == nil {
			result, err = e.store.UpdateOrCreate(ctx, snapshot)
		}
		if err == nil && result == nil {
			result = snapshot
		}

		if err != nil {
			e.log().Error("Save failed",
				logging.SaveID(id),
				logging.Error(err))
			if waiter != nil {
				waiter <- SaveResult{ID: id, Err: err}
			}
			if cmd.OnError != nil {
				e.deferTask(func() { cmd.OnError(err) })
			}
			return
		}

		e.log().Debug("Integration saved",
			logging.SaveID(id),
			logging.IntegrationID(result.ID))
		if waiter != nil {
			waiter <- SaveResult{ID: id, Integration: result}
		}
		if cmd.OnSuccess != nil {
			e.deferTask(func() { cmd.OnSuccess(result) })
		}
	}()
}
