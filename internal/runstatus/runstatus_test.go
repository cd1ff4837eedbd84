package runstatus

import (
	"context"
	"testing"

	"github.com/gauntlet-host/launcherd/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestStartBlock_MarksRunningAndCancelOnClose(t *testing.T) {
	rs := New()
	pluginID := domain.PluginID("bundled://tasks")

	assert.False(t, rs.IsPluginRunning(pluginID))

	ctx, guard := rs.StartBlock(context.Background(), pluginID)
	assert.True(t, rs.IsPluginRunning(pluginID))

	guard.Close()
	assert.False(t, rs.IsPluginRunning(pluginID))

	select {
	case <-ctx.Done():
	default:
		t.Fatal("expected context to be cancelled after guard.Close()")
	}
}

func TestStopPlugin_CancelsContext(t *testing.T) {
	rs := New()
	pluginID := domain.PluginID("bundled://tasks")
	ctx, guard := rs.StartBlock(context.Background(), pluginID)
	defer guard.Close()

	rs.StopPlugin(pluginID)

	select {
	case <-ctx.Done():
	default:
		t.Fatal("expected context to be cancelled after StopPlugin")
	}
}

func TestStopPlugin_NoopWhenNotRunning(t *testing.T) {
	rs := New()
	rs.StopPlugin(domain.PluginID("bundled://nothing"))
}

func TestGuardClose_Idempotent(t *testing.T) {
	rs := New()
	_, guard := rs.StartBlock(context.Background(), domain.PluginID("bundled://tasks"))
	guard.Close()
	guard.Close()
}
