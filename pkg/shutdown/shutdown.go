// Package shutdown coordinates graceful teardown of long-running
// commands.
package shutdown

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/opclock/opclock/pkg/logging"
)

// Manager runs registered shutdown functions in reverse order (LIFO)
// once a termination signal arrives.
type Manager struct {
	mu      sync.Mutex
	funcs   []func(context.Context) error
	timeout time.Duration
	log     *logging.Logger
}

// New creates a shutdown manager. A nil logger defaults to the package
// logger.
func New(timeout time.Duration, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.Default()
	}
	return &Manager{
		timeout: timeout,
		log:     log,
	}
}

// Register adds a shutdown function. Registration order is preserved;
// execution happens in reverse.
func (m *Manager) Register(fn func(context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.funcs = append(m.funcs, fn)
}

// Wait blocks until SIGINT or SIGTERM, then runs the registered
// shutdown functions.
func (m *Manager) Wait() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	m.log.Infof("received signal %v, shutting down", sig)
	m.Shutdown()
}

// Shutdown runs all registered functions LIFO under the configured
// timeout. Errors are logged, not propagated; teardown keeps going.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	for i := len(m.funcs) - 1; i >= 0; i-- {
		if err := m.funcs[i](ctx); err != nil {
			m.log.Errorf("shutdown step %d failed: %v", i, err)
		}
	}
	m.log.Info("graceful shutdown complete")
}

// StopHTTPServer adapts an http.Server-style Shutdown method into a
// registered shutdown function.
func StopHTTPServer(server interface{ Shutdown(context.Context) error }, name string) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to stop %s server: %w", name, err)
		}
		return nil
	}
}
