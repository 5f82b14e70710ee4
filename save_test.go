package flow

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simon020286/go-flow/logging"
	"github.com/simon020286/go-flow/models"
	"github.com/simon020286/go-flow/steps"
	"github.com/simon020286/go-flow/store"
)

type persistenceFunc func(ctx context.Context, integration *models.Integration) (*models.Integration, error)

func (f persistenceFunc) UpdateOrCreate(ctx context.Context, integration *models.Integration) (*models.Integration, error) {
	return f(ctx, integration)
}

func taggedFlow() *models.Integration {
	return &models.Integration{
		ID:   "i-1",
		Tags: []string{"existing"},
		Steps: []*models.Step{
			endpoint("a", "webhook"),
			{ID: "log", StepKind: steps.KindLog},
			endpoint("b", "http"),
			endpoint("c", "webhook"),
			endpoint("d", ""),
		},
	}
}

func waitResult(t *testing.T, ch <-chan SaveResult) SaveResult {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("save did not complete")
		return SaveResult{}
	}
}

func TestSaveMergesConnectorTags(t *testing.T) {
	e := NewEditor(store.NewMemoryStore())
	e.Load(taggedFlow())
	e.Flush()

	res := waitResult(t, e.Save(context.Background()))
	require.NoError(t, res.Err)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, []string{"existing", "webhook", "http"}, res.Integration.Tags)

	// the edited document itself is untouched
	assert.Equal(t, []string{"existing"}, e.Integration().Tags)
}

func TestSaveTagMergeIsIdempotent(t *testing.T) {
	e := NewEditor(store.NewMemoryStore())
	e.Load(taggedFlow())
	e.Flush()

	first := waitResult(t, e.Save(context.Background()))
	require.NoError(t, first.Err)

	e.Dispatch(models.SetProperty{Property: PropertyTags, Value: first.Integration.Tags})
	second := waitResult(t, e.Save(context.Background()))
	require.NoError(t, second.Err)

	assert.Equal(t, first.Integration.Tags, second.Integration.Tags)
}

func TestSavePersists(t *testing.T) {
	s := store.NewMemoryStore()
	e := NewEditor(s)
	e.Load(&models.Integration{Name: "new", Steps: []*models.Step{endpoint("a", "timer")}})
	e.Flush()

	res := waitResult(t, e.Save(context.Background()))
	require.NoError(t, res.Err)
	require.NotEmpty(t, res.Integration.ID)

	stored, err := s.Get(context.Background(), res.Integration.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", stored.Name)
	assert.Equal(t, []string{"timer"}, stored.Tags)
}

func TestSaveCallsExactlyOneContinuation(t *testing.T) {
	failing := persistenceFunc(func(context.Context, *models.Integration) (*models.Integration, error) {
		return nil, errors.New("disk full")
	})

	tests := []struct {
		name     string
		store    Persistence
		success  int32
		failures int32
	}{
		{"success", store.NewMemoryStore(), 1, 0},
		{"failure", failing, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEditor(tt.store)
			e.Load(taggedFlow())
			e.Flush()

			var success, failures atomic.Int32
			e.Dispatch(models.Save{
				OnSuccess: func(*models.Integration) { success.Add(1) },
				OnError:   func(error) { failures.Add(1) },
			})
			e.Wait()

			assert.Equal(t, tt.success, success.Load())
			assert.Equal(t, tt.failures, failures.Load())
			assert.Equal(t, 0, e.InFlight())
		})
	}
}

func TestSaveErrorReachesContinuation(t *testing.T) {
	boom := errors.New("boom")
	e := NewEditor(persistenceFunc(func(context.Context, *models.Integration) (*models.Integration, error) {
		return nil, boom
	}))
	e.Load(taggedFlow())
	e.Flush()

	res := waitResult(t, e.Save(context.Background()))
	assert.ErrorIs(t, res.Err, boom)
	assert.Nil(t, res.Integration)
}

func TestSaveWithoutIntegration(t *testing.T) {
	called := false
	e := NewEditor(persistenceFunc(func(context.Context, *models.Integration) (*models.Integration, error) {
		called = true
		return nil, nil
	}))

	res := waitResult(t, e.Save(context.Background()))
	assert.ErrorIs(t, res.Err, models.ErrNoIntegration)
	assert.False(t, called)
}

func TestSaveIsAsynchronous(t *testing.T) {
	release := make(chan struct{})
	e := NewEditor(persistenceFunc(func(_ context.Context, i *models.Integration) (*models.Integration, error) {
		<-release
		return i, nil
	}))
	e.Load(taggedFlow())
	e.Flush()

	ch := e.Save(context.Background())
	assert.Equal(t, 1, e.InFlight())

	// the editor keeps accepting commands while the save is pending
	e.Dispatch(models.SetProperty{Property: PropertyName, Value: "edited"})
	assert.Equal(t, "edited", e.Integration().Name)

	close(release)
	res := waitResult(t, ch)
	require.NoError(t, res.Err)
	assert.Empty(t, res.Integration.Name, "save works on the snapshot taken at dispatch")

	e.Wait()
	assert.Equal(t, 0, e.InFlight())
}

func TestCancelSave(t *testing.T) {
	started := make(chan struct{})
	e := NewEditor(persistenceFunc(func(ctx context.Context, _ *models.Integration) (*models.Integration, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}))
	e.Load(taggedFlow())
	e.Flush()

	var (
		mu  sync.Mutex
		got error
	)
	e.Dispatch(models.Save{
		ID:      "save-1",
		OnError: func(err error) { mu.Lock(); got = err; mu.Unlock() },
	})
	<-started

	assert.True(t, e.CancelSave("save-1"))
	e.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.ErrorIs(t, got, context.Canceled)
	assert.False(t, e.CancelSave("save-1"))
}

func TestSaveContextCancellation(t *testing.T) {
	e := NewEditor(persistenceFunc(func(ctx context.Context, _ *models.Integration) (*models.Integration, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}))
	e.Load(taggedFlow())
	e.Flush()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	res := waitResult(t, e.Save(ctx))
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
}

func TestSaveContinuationRunsOnEditorLoop(t *testing.T) {
	integration := flowOf(2)
	integration.ID = ""
	e := NewEditor(store.NewMemoryStore())
	e.Load(integration)
	e.Flush()

	var ran atomic.Bool
	e.Dispatch(models.Save{
		OnSuccess: func(saved *models.Integration) {
			ran.Store(true)
			e.Dispatch(models.SetProperty{Property: PropertyID, Value: saved.ID})
		},
	})
	require.Eventually(t, func() bool { return e.InFlight() == 0 },
		5*time.Second, time.Millisecond)

	// completed, but the continuation waits for the editor loop
	assert.False(t, ran.Load())
	assert.Equal(t, 1, e.Pending())
	assert.Empty(t, e.Integration().ID)

	e.Dispatch(models.InsertStep{Position: 0})

	assert.True(t, ran.Load())
	assert.Equal(t, 3, e.Len())
	assert.NotEmpty(t, e.Integration().ID)
	assert.Equal(t, 0, e.Pending())
}

func TestSaveResultWithoutFlush(t *testing.T) {
	e := NewEditor(store.NewMemoryStore())
	e.Load(taggedFlow())
	e.Flush()

	res := waitResult(t, e.Save(context.Background()))
	require.NoError(t, res.Err)
	assert.Equal(t, 0, e.Pending())
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSetLoggerWhileSaving(t *testing.T) {
	release := make(chan struct{})
	e := NewEditor(persistenceFunc(func(context.Context, *models.Integration) (*models.Integration, error) {
		<-release
		return nil, errors.New("disk full")
	}))
	e.Load(taggedFlow())
	e.Flush()

	ch := e.Save(context.Background())

	var out syncBuffer
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			e.SetCatalog(e.Catalog())
			e.SetLogger(slog.Default())
		}
		e.SetLogger(logging.NewWithWriter(&out, "test", slog.LevelDebug))
	}()
	wg.Wait()

	close(release)
	res := waitResult(t, ch)
	require.Error(t, res.Err)
	assert.Contains(t, out.String(), "Save failed")
}
