package flow

import (
	"log/slog"
	"sync"

	"github.com/simon020286/go-flow/catalog"
	"github.com/simon020286/go-flow/logging"
	"github.com/simon020286/go-flow/models"
	_ "github.com/simon020286/go-flow/steps"
	"github.com/simon020286/go-flow/store"
)

// Editor owns the integration being edited. Every mutation goes through
// Dispatch; reads go through the query methods and return copies
type Editor struct {
	mu          sync.RWMutex
	integration *models.Integration
	loaded      bool

	// Command queue and deferred tasks, drained by a single loop
	queueMu   sync.Mutex
	queue     []models.Command
	draining  bool
	scheduler scheduler

	bus   *eventBus
	store Persistence
	saves *saveTracker

	// guards catalog and logger
	depsMu  sync.RWMutex
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// NewEditor creates an editor saving to persistence. A nil persistence
// falls back to an in-memory store
func NewEditor(persistence Persistence) *Editor {
	if persistence == nil {
		persistence = store.NewMemoryStore()
	}
	return &Editor{
		bus:     newEventBus(),
		catalog: catalog.Default(),
		store:   persistence,
		saves:   newSaveTracker(),
		logger:  slog.Default(),
	}
}

// SetCatalog replaces the step kind catalog used for visibility and
// validation
func (e *Editor) SetCatalog(c *catalog.Catalog) {
	if c == nil {
		return
	}
	e.depsMu.Lock()
	defer e.depsMu.Unlock()
	e.catalog = c
}

// SetLogger sets the logger used for self-repair warnings and save results
func (e *Editor) SetLogger(logger *slog.Logger) {
	if logger == nil {
		return
	}
	e.depsMu.Lock()
	defer e.depsMu.Unlock()
	e.logger = logger
}

// Catalog returns the step kind catalog in use
func (e *Editor) Catalog() *catalog.Catalog {
	e.depsMu.RLock()
	defer e.depsMu.RUnlock()
	return e.catalog
}

func (e *Editor) log() *slog.Logger {
	e.depsMu.RLock()
	defer e.depsMu.RUnlock()
	return e.logger
}

// Subscribe adds a listener notified after each handled command. The
// returned function removes it
func (e *Editor) Subscribe(listener models.EventListener) func() {
	return e.bus.addListener(listener)
}

// Load replaces the edited integration. The document is copied, nil steps
// are dropped and integration-updated is deferred until the next Flush or
// Dispatch, so listeners subscribed right after Load still observe it
func (e *Editor) Load(integration *models.Integration) {
	var doc *models.Integration
	if integration != nil {
		doc = integration.Clone()
		doc.Steps = models.FilterSteps(doc.Steps)
	}

	e.mu.Lock()
	e.integration = doc
	e.loaded = false
	e.mu.Unlock()

	e.scheduleUpdated()
}

// Integration returns a copy of the edited integration, or nil
func (e *Editor) Integration() *models.Integration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.integration.Clone()
}

// IsLoaded reports whether the last load has been acknowledged by
// integration-updated
func (e *Editor) IsLoaded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loaded
}

// Dispatch queues a command. If no command is being processed the queue
// is drained before Dispatch returns; commands dispatched from handlers,
// continuations or listeners are queued behind the current one
func (e *Editor) Dispatch(cmd models.Command) {
	if cmd == nil {
		return
	}

	e.queueMu.Lock()
	e.queue = append(e.queue, cmd)
	if e.draining {
		e.queueMu.Unlock()
		return
	}
	e.draining = true
	e.queueMu.Unlock()

	e.drain()
}

// Flush runs pending deferred tasks, and any commands they dispatch. It
// does nothing while a command is in flight
func (e *Editor) Flush() {
	e.queueMu.Lock()
	if e.draining {
		e.queueMu.Unlock()
		return
	}
	e.draining = true
	e.queueMu.Unlock()

	e.drain()
}

// Pending returns the number of deferred tasks waiting for a Flush
func (e *Editor) Pending() int {
	e.queueMu.Lock()
	defer e.queueMu.Unlock()
	return e.scheduler.pending()
}

func (e *Editor) drain() {
	defer func() {
		if r := recover(); r != nil {
			e.queueMu.Lock()
			e.queue = nil
			e.draining = false
			e.queueMu.Unlock()
			panic(r)
		}
	}()

	for {
		e.queueMu.Lock()
		if len(e.queue) > 0 {
			cmd := e.queue[0]
			e.queue[0] = nil
			e.queue = e.queue[1:]
			e.queueMu.Unlock()

			e.handle(cmd)
			e.bus.emit(cmd)
			continue
		}

		task, ok := e.scheduler.next()
		if !ok {
			e.draining = false
			e.queueMu.Unlock()
			return
		}
		e.queueMu.Unlock()
		task()
	}
}

// deferTask schedules a task to run once the command queue is empty
func (e *Editor) deferTask(task func()) {
	e.queueMu.Lock()
	defer e.queueMu.Unlock()
	e.scheduler.schedule(task)
}

func (e *Editor) scheduleUpdated() {
	e.deferTask(func() {
		e.Dispatch(models.IntegrationUpdated{})
	})
}

func (e *Editor) warn(cmd models.Command, msg string, attrs ...any) {
	attrs = append(attrs, logging.Command(string(cmd.Kind())))
	e.log().Warn(msg, attrs...)
}
