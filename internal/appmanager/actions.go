package appmanager

import (
	"context"
	"time"

	"github.com/gauntlet-host/launcherd/internal/domain"
	"github.com/gauntlet-host/launcherd/internal/obs"
)

const (
	actionPrimary   = ":primary"
	actionSecondary = ":secondary"
)

// RunAction dispatches one entrypoint action by id. Dispatch rules:
//   - :primary on a command entrypoint runs its command.
//   - :primary on a view entrypoint opens that view.
//   - :primary on a generated entrypoint is accepted if it declares action 0.
//   - :secondary on a generated entrypoint is accepted if it declares action 1.
//   - a named id on a generated entrypoint is accepted if an action has that id.
//   - every other (type, action id) combination fails with InvalidAction.
//
// An accepted generated-entrypoint action calls the entrypoint's default
// export; the resolved action index is not passed to the plugin, so every
// accepted action id of one entrypoint runs the same code.
func (m *ApplicationManager) RunAction(ctx context.Context, pluginID domain.PluginID, entrypointID, actionID string) error {
	ctx, span := obs.StartPluginOpSpan(ctx, string(pluginID), "run_action")
	defer span.End()
	start := time.Now()
	defer func() { obs.PluginOpDuration.WithLabelValues("run_action").Observe(time.Since(start).Seconds()) }()

	rp, ok := m.running(pluginID)
	if !ok {
		err := domain.NewInvalidAction(pluginID, entrypointID, actionID)
		obs.RecordError(ctx, err)
		return err
	}
	e, ok := rp.entrypoints[entrypointID]
	if !ok || !e.Enabled {
		err := domain.NewInvalidAction(pluginID, entrypointID, actionID)
		obs.RecordError(ctx, err)
		return err
	}

	var err error
	switch {
	case e.Type == domain.EntrypointCommand && actionID == actionPrimary:
		_, err = rp.runtime.CallEntrypoint(entrypointID)
	case e.Type == domain.EntrypointView && actionID == actionPrimary:
		_, err = m.RequestRenderView(ctx, pluginID, entrypointID)
	case e.Type == domain.EntrypointGeneratorEntrypoint:
		err = m.runGeneratedAction(ctx, rp, entrypointID, actionID)
	default:
		err = domain.NewInvalidAction(pluginID, entrypointID, actionID)
	}

	if err != nil {
		obs.RecordError(ctx, err)
		return err
	}

	m.index.MarkUsed(pluginID, entrypointID, time.Now())
	obs.SetSpanSuccess(ctx)
	return nil
}

// runGeneratedAction checks :primary/:secondary/named action ids against a
// generator entrypoint's declared action slots (index 0/1, or by id) and, if
// the id resolves, calls the entrypoint's default export the way a command
// entrypoint is run. The resolved index is not passed on, so the plugin is
// not told which action was chosen. An Action carries no type information of
// its own (only a label, id and shortcut), so a
// generated entrypoint's actions are always treated as commands, matching
// how the search index surfaces them (searchindex.PluginEntrypointInfo has
// no per-action type field either).
func (m *ApplicationManager) runGeneratedAction(ctx context.Context, rp *runningPlugin, entrypointID, actionID string) error {
	e := rp.entrypoints[entrypointID]
	if _, ok := resolveGeneratedActionIndex(e, actionID); !ok {
		return domain.NewInvalidAction(rp.plugin.ID, entrypointID, actionID)
	}
	_, err := rp.runtime.CallEntrypoint(entrypointID)
	return err
}

// resolveGeneratedActionIndex maps :primary/:secondary/named ids to an index
// into e.Actions, per the dispatch rules documented on RunAction.
func resolveGeneratedActionIndex(e domain.Entrypoint, actionID string) (int, bool) {
	switch actionID {
	case actionPrimary:
		if len(e.Actions) > 0 {
			return 0, true
		}
		return 0, false
	case actionSecondary:
		if len(e.Actions) > 1 {
			return 1, true
		}
		return 0, false
	default:
		for i, a := range e.Actions {
			if a.ID == actionID {
				return i, true
			}
		}
		return 0, false
	}
}
