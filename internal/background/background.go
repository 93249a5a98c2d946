// Package background runs fire-and-forget tasks whose errors are logged at
// the boundary and never propagated to the interactive path.
package background

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Runner schedules a named background task. The caller never waits on it and
// never sees its error. Implementations other than Spawner exist for tests.
type Runner interface {
	Go(name string, fn func(ctx context.Context) error)
}

// Spawner is the production Runner: each task gets its own goroutine, a
// bounded context and panic recovery.
type Spawner struct {
	logger  *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewSpawner creates a Spawner whose tasks are cancelled after timeout.
func NewSpawner(logger *zap.Logger, timeout time.Duration) *Spawner {
	return &Spawner{
		logger:  logger,
		timeout: timeout,
	}
}

// Go runs fn in a new goroutine. Errors and panics are logged and swallowed.
func (s *Spawner) Go(name string, fn func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("background task panicked",
					zap.String("task", name),
					zap.Any("panic", r),
				)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			s.logger.Warn("background task failed",
				zap.String("task", name),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until all in-flight tasks finish. Called during shutdown.
func (s *Spawner) Wait() {
	s.wg.Wait()
}
