// Package runstatus tracks which plugins currently own a running
// PluginRuntime and gives each one an RAII-style cancellation guard.
package runstatus

import (
	"context"
	"sync"

	"github.com/gauntlet-host/launcherd/internal/domain"
)

// RunStatus is the process-wide singleton tracking running plugins.
type RunStatus struct {
	mu      sync.Mutex
	running map[domain.PluginID]context.CancelFunc
}

// New constructs an empty RunStatus.
func New() *RunStatus {
	return &RunStatus{running: make(map[domain.PluginID]context.CancelFunc)}
}

// RunStatusGuard is held by a PluginRuntime's owning goroutine for the
// lifetime of its event loop. Close removes the plugin from the running set
// and cancels its context, regardless of how the runtime exits.
type RunStatusGuard struct {
	rs       *RunStatus
	pluginID domain.PluginID
	cancel   context.CancelFunc
	once     sync.Once
}

// Close releases the guard: cancels the runtime's context and removes the
// plugin from the running set. Safe to call more than once.
func (g *RunStatusGuard) Close() {
	g.once.Do(func() {
		g.cancel()
		g.rs.mu.Lock()
		delete(g.rs.running, g.pluginID)
		g.rs.mu.Unlock()
	})
}

// StartBlock marks pluginID as running and returns a context derived from
// parent plus a guard whose Close cancels that context and clears the
// running marker. Callers must defer guard.Close() in the runtime goroutine.
func (rs *RunStatus) StartBlock(parent context.Context, pluginID domain.PluginID) (context.Context, *RunStatusGuard) {
	ctx, cancel := context.WithCancel(parent)
	rs.mu.Lock()
	rs.running[pluginID] = cancel
	rs.mu.Unlock()
	return ctx, &RunStatusGuard{rs: rs, pluginID: pluginID, cancel: cancel}
}

// IsPluginRunning reports whether pluginID currently owns a RunStatusGuard.
func (rs *RunStatus) IsPluginRunning(pluginID domain.PluginID) bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	_, ok := rs.running[pluginID]
	return ok
}

// StopPlugin cancels the running plugin's context, if any. It does not block
// until the runtime has actually exited; callers that need that should wait
// on their own completion channel.
func (rs *RunStatus) StopPlugin(pluginID domain.PluginID) {
	rs.mu.Lock()
	cancel, ok := rs.running[pluginID]
	rs.mu.Unlock()
	if ok {
		cancel()
	}
}
