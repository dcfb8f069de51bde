package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ShutdownFunc represents a function that shuts down a component
type ShutdownFunc func(context.Context) error

type component struct {
	name string
	fn   ShutdownFunc
}

// Manager coordinates graceful shutdown of all service components.
// Components shut down in REVERSE registration order (LIFO), so registering
// database first and HTTP server last drains requests before closing the pool.
type Manager struct {
	logger     *zap.Logger
	components []component
	mu         sync.Mutex
	timeout    time.Duration
}

// NewManager creates a new shutdown manager
func NewManager(logger *zap.Logger, timeout time.Duration) *Manager {
	return &Manager{
		logger:  logger,
		timeout: timeout,
	}
}

// Register adds a shutdown function to be called during graceful shutdown.
// Components shut down in reverse order of registration.
func (sm *Manager) Register(name string, fn ShutdownFunc) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.components = append(sm.components, component{name: name, fn: fn})

	sm.logger.Debug("registered shutdown component",
		zap.String("component", name),
		zap.Int("registration_order", len(sm.components)),
	)
}

// WaitForShutdown blocks until SIGINT or SIGTERM, then executes graceful
// shutdown of all registered components
func (sm *Manager) WaitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	sm.logger.Info("received shutdown signal",
		zap.String("signal", sig.String()),
		zap.Duration("timeout", sm.timeout),
	)

	sm.Shutdown()
}

// Shutdown performs graceful shutdown of all registered components
func (sm *Manager) Shutdown() {
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), sm.timeout)
	defer cancel()

	sm.mu.Lock()
	components := make([]component, len(sm.components))
	copy(components, sm.components)
	sm.mu.Unlock()

	for i := len(components) - 1; i >= 0; i-- {
		c := components[i]
		componentStart := time.Now()

		if err := c.fn(ctx); err != nil {
			sm.logger.Error("component shutdown failed",
				zap.String("component", c.name),
				zap.Error(err),
			)
			continue
		}

		sm.logger.Info("component shut down",
			zap.String("component", c.name),
			zap.Duration("duration", time.Since(componentStart)),
		)
	}

	sm.logger.Info("graceful shutdown complete",
		zap.Duration("duration", time.Since(start)),
	)
}
