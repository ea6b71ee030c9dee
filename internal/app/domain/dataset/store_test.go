package dataset

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/tourism-dashboard/internal/app/models"
)

type countingLoader struct {
	loads   atomic.Int32
	delay   time.Duration
	mu      sync.Mutex
	failing error
}

func (l *countingLoader) Load(ctx context.Context) (*models.Tables, error) {
	l.loads.Add(1)
	if l.delay > 0 {
		select {
		case <-time.After(l.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	l.mu.Lock()
	err := l.failing
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &models.Tables{
		Destinations: []models.Destination{{ID: 1, Name: "Monas", CityID: 1, CategoryID: 20}},
		Cities:       []models.City{{ID: 1, Name: "Jakarta"}},
		Categories:   []models.Category{{ID: 20, Name: "Budaya"}},
		Version:      uuid.NewString(),
	}, nil
}

func (l *countingLoader) setFailing(err error) {
	l.mu.Lock()
	l.failing = err
	l.mu.Unlock()
}

func TestStore_MemoizesPerSession(t *testing.T) {
	loader := &countingLoader{}
	store := NewStore(loader, time.Hour, zap.NewNop(), nil)
	ctx := context.Background()

	first, err := store.Tables(ctx, "session-a")
	require.NoError(t, err)
	again, err := store.Tables(ctx, "session-a")
	require.NoError(t, err)

	assert.Same(t, first, again)
	assert.Equal(t, int32(1), loader.loads.Load())

	other, err := store.Tables(ctx, "session-b")
	require.NoError(t, err)
	assert.NotEqual(t, first.Version, other.Version)
	assert.Equal(t, int32(2), loader.loads.Load())

	stats := store.Stats()
	assert.Equal(t, int64(1), stats.Hits)
}

func TestStore_Invalidate(t *testing.T) {
	loader := &countingLoader{}
	store := NewStore(loader, time.Hour, nil, nil)
	ctx := context.Background()

	a1, err := store.Tables(ctx, "a")
	require.NoError(t, err)
	b1, err := store.Tables(ctx, "b")
	require.NoError(t, err)

	store.Invalidate("a")

	a2, err := store.Tables(ctx, "a")
	require.NoError(t, err)
	b2, err := store.Tables(ctx, "b")
	require.NoError(t, err)
	assert.NotEqual(t, a1.Version, a2.Version)
	assert.Same(t, b1, b2, "invalidating one session leaves the others alone")
	assert.Equal(t, int32(3), loader.loads.Load())

	store.InvalidateAll()

	b3, err := store.Tables(ctx, "b")
	require.NoError(t, err)
	assert.NotEqual(t, b1.Version, b3.Version)
	assert.Equal(t, int32(4), loader.loads.Load())
}

func TestStore_InvalidateDuringLoad(t *testing.T) {
	loader := &countingLoader{delay: 150 * time.Millisecond}
	store := NewStore(loader, time.Hour, zap.NewNop(), nil)
	ctx := context.Background()

	staleCh := make(chan *models.Tables, 1)
	go func() {
		tables, err := store.Tables(ctx, "a")
		assert.NoError(t, err)
		staleCh <- tables
	}()
	require.Eventually(t, func() bool { return loader.loads.Load() == 1 }, time.Second, 5*time.Millisecond)

	store.Invalidate("a")
	fresh, err := store.Tables(ctx, "a")
	require.NoError(t, err)
	stale := <-staleCh

	assert.Equal(t, int32(2), loader.loads.Load(), "a request after Invalidate must not join the old load")
	assert.NotEqual(t, stale.Version, fresh.Version)

	again, err := store.Tables(ctx, "a")
	require.NoError(t, err)
	assert.Same(t, fresh, again, "the retired load must not overwrite the cache")
	assert.Equal(t, int32(2), loader.loads.Load())
}

func TestStore_CancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	loader := &countingLoader{delay: 100 * time.Millisecond}
	store := NewStore(loader, time.Hour, zap.NewNop(), nil)

	callerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cancelledErr := make(chan error, 1)
	go func() {
		_, err := store.Tables(callerCtx, "shared")
		cancelledErr <- err
	}()
	require.Eventually(t, func() bool { return loader.loads.Load() == 1 }, time.Second, 5*time.Millisecond)

	type result struct {
		tables *models.Tables
		err    error
	}
	joined := make(chan result, 1)
	go func() {
		tables, err := store.Tables(context.Background(), "shared")
		joined <- result{tables, err}
	}()
	cancel()

	assert.ErrorIs(t, <-cancelledErr, context.Canceled)
	res := <-joined
	require.NoError(t, res.err)
	assert.NotNil(t, res.tables)
	assert.Equal(t, int32(1), loader.loads.Load())

	cached, err := store.Tables(context.Background(), "shared")
	require.NoError(t, err)
	assert.Same(t, res.tables, cached)
}

func TestStore_FailuresAreNotCached(t *testing.T) {
	loader := &countingLoader{}
	loader.setFailing(models.ErrDataUnavailable)
	store := NewStore(loader, time.Hour, zap.NewNop(), nil)
	ctx := context.Background()

	_, err := store.Tables(ctx, "a")
	assert.ErrorIs(t, err, models.ErrDataUnavailable)

	loader.setFailing(nil)
	tables, err := store.Tables(ctx, "a")

	require.NoError(t, err)
	assert.NotNil(t, tables)
	assert.Equal(t, int32(2), loader.loads.Load())
}

func TestStore_UnknownSession(t *testing.T) {
	loader := &countingLoader{}
	store := NewStore(loader, time.Hour, zap.NewNop(), nil)

	_, err := store.Tables(context.Background(), "")

	assert.True(t, errors.Is(err, models.ErrUnknownSession))
	assert.Zero(t, loader.loads.Load())
}

func TestStore_ConcurrentFirstRequestsShareOneLoad(t *testing.T) {
	loader := &countingLoader{delay: 50 * time.Millisecond}
	store := NewStore(loader, time.Hour, zap.NewNop(), nil)

	const callers = 8
	results := make([]*models.Tables, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tables, err := store.Tables(context.Background(), "shared")
			assert.NoError(t, err)
			results[i] = tables
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), loader.loads.Load())
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}
