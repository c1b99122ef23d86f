// Package shutdown coordinates graceful teardown of the gateway's long-lived
// components.
package shutdown

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

var shutdownLog = logrus.WithField("component", "shutdown")

// Handler is one teardown step.
type Handler func(ctx context.Context)

// Manager collects shutdown callbacks and runs them concurrently with a
// shared deadline.
type Manager struct {
	mu        sync.Mutex
	callbacks []Handler
}

// NewManager creates an empty shutdown manager.
func NewManager() *Manager {
	return &Manager{}
}

// OnShutdown registers a teardown callback.
func (m *Manager) OnShutdown(h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, h)
}

// Shutdown runs every registered callback and blocks until they finish or
// ctx expires. Pass a context with a timeout to avoid waiting forever.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	callbacks := m.callbacks
	m.mu.Unlock()

	if len(callbacks) == 0 {
		return
	}
	shutdownLog.WithField("callbacks", len(callbacks)).Info("shutting down")

	var wg sync.WaitGroup
	wg.Add(len(callbacks))
	for _, cb := range callbacks {
		go func(h Handler) {
			defer wg.Done()
			h(ctx)
		}(cb)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		shutdownLog.Info("shutdown complete")
	case <-ctx.Done():
		shutdownLog.WithError(ctx.Err()).Warn("shutdown timed out")
	}
}
