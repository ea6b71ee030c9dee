package dataset

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/FACorreiaa/tourism-dashboard/internal/app/models"
	"github.com/FACorreiaa/tourism-dashboard/internal/app/observability/metrics"
	"github.com/FACorreiaa/tourism-dashboard/internal/pkg/cache"
)

// TableLoader produces a fresh snapshot of the source tables.
type TableLoader interface {
	Load(ctx context.Context) (*models.Tables, error)
}

// loadTimeout bounds a shared load, which outlives the request that started it.
const loadTimeout = 30 * time.Second

// Store memoizes one table snapshot per session. Concurrent first requests of a
// session share a single load; failed loads are never cached.
type Store struct {
	loader     TableLoader
	cache      *cache.UnifiedCache[*models.Tables]
	group      singleflight.Group
	generation atomic.Int64
	logger     *zap.Logger
	metrics    *metrics.AppMetrics

	mu       sync.Mutex
	sessions map[string]int64 // per-session generation, bumped by Invalidate
}

func NewStore(loader TableLoader, ttl time.Duration, logger *zap.Logger, m *metrics.AppMetrics) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		loader:   loader,
		cache:    cache.NewUnifiedCache[*models.Tables](ttl, "session-tables", logger),
		logger:   logger,
		metrics:  m,
		sessions: make(map[string]int64),
	}
}

// Tables returns the session's snapshot, loading it on first use. A caller whose
// context ends stops waiting; the shared load keeps running for the others.
func (s *Store) Tables(ctx context.Context, session string) (*models.Tables, error) {
	if session == "" {
		return nil, models.ErrUnknownSession
	}
	key := s.key(session)

	if tables, ok := s.cache.Get(key); ok {
		s.metrics.RecordCacheLookup(ctx, true)
		return tables, nil
	}
	s.metrics.RecordCacheLookup(ctx, false)

	ch := s.group.DoChan(key, func() (interface{}, error) {
		if tables, ok := s.cache.Get(key); ok {
			return tables, nil
		}
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		tables, err := s.loader.Load(loadCtx)
		if err != nil {
			return nil, err
		}
		// An invalidation during the load retired this key.
		if s.key(session) == key {
			s.cache.Set(key, tables)
		}
		return tables, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			s.logger.Warn("Session dataset unavailable", zap.String("session", session), zap.Error(res.Err))
			return nil, res.Err
		}
		if res.Shared {
			s.logger.Debug("Joined in-flight dataset load", zap.String("session", session))
		}
		return res.Val.(*models.Tables), nil
	}
}

// Invalidate drops the session's snapshot so its next request reloads. A load
// already in flight for the session is not joined and not cached.
func (s *Store) Invalidate(session string) {
	if session == "" {
		return
	}
	old := s.key(session)

	s.mu.Lock()
	s.sessions[session]++
	s.mu.Unlock()

	s.group.Forget(old)
	s.cache.Delete(old)
	s.logger.Info("Session dataset invalidated", zap.String("session", session))
}

// InvalidateAll retires every snapshot. Loads already running finish under the old
// generation and are never served again.
func (s *Store) InvalidateAll() {
	s.mu.Lock()
	gen := s.generation.Add(1)
	s.sessions = make(map[string]int64)
	s.mu.Unlock()

	s.cache.Clear()
	s.logger.Info("All session datasets invalidated", zap.Int64("generation", gen))
}

// Stats exposes the underlying cache counters.
func (s *Store) Stats() cache.CacheMetrics {
	return s.cache.GetMetrics()
}

func (s *Store) key(session string) string {
	s.mu.Lock()
	gen, sessionGen := s.generation.Load(), s.sessions[session]
	s.mu.Unlock()

	return cache.NewCacheKeyBuilder(s.logger).
		AddSession(session).
		AddGeneration(gen).
		Add("session_generation", sessionGen).
		BuildOrDefault()
}
