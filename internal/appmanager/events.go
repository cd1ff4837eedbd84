package appmanager

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gauntlet-host/launcherd/internal/domain"
	"github.com/gauntlet-host/launcherd/internal/pluginruntime"
)

// HostMessageKind is the closed set of host-initiated notifications
// rpcserver relays to the front-end over its event stream.
type HostMessageKind string

const (
	HostReplaceView                HostMessageKind = "replace_view"
	HostOpenInlineView              HostMessageKind = "open_inline_view"
	HostClearInlineView             HostMessageKind = "clear_inline_view"
	HostShowPreferencesRequiredView HostMessageKind = "show_preferences_required_view"
	HostShowPluginErrorView         HostMessageKind = "show_plugin_error_view"
	HostShowHUD                     HostMessageKind = "show_hud"
	HostHideWindow                  HostMessageKind = "hide_window"
	HostUpdateLoadingBar            HostMessageKind = "update_loading_bar"
	HostOpenPluginView              HostMessageKind = "open_plugin_view"
	HostOpenGeneratedPluginView     HostMessageKind = "open_generated_plugin_view"
	HostSetGlobalShortcut           HostMessageKind = "set_global_shortcut"
	HostSetTheme                    HostMessageKind = "set_theme"
	HostSetWindowPositionMode       HostMessageKind = "set_window_position_mode"
	HostRefreshSearchList           HostMessageKind = "refresh_search_list"
)

// HostMessage is one host-to-front-end notification.
type HostMessage struct {
	Kind         HostMessageKind
	PluginID     domain.PluginID
	EntrypointID string
	Widget       *domain.Widget
	Text         string
	Err          error
}

// pumpEvents forwards one plugin's outbound event stream to the front-end
// (view open/close) or back into appmanager (search index refresh, generated
// entrypoint runs) until the plugin's runtime context is cancelled.
func (m *ApplicationManager) pumpEvents(ctx context.Context, rp *runningPlugin) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-rp.events:
			if !ok {
				return
			}
			m.handleRuntimeEvent(ctx, rp, ev)
		}
	}
}

func (m *ApplicationManager) handleRuntimeEvent(ctx context.Context, rp *runningPlugin, ev pluginruntime.Event) {
	switch ev.Kind {
	case pluginruntime.EventOpenView:
		// Event listeners for this tree were already captured by whichever
		// path produced it (RequestRenderView's RenderEntrypointView call);
		// this event only carries the tree itself to the front-end.
		m.hostEvents <- HostMessage{Kind: HostOpenPluginView, PluginID: ev.PluginID, EntrypointID: ev.EntrypointID, Widget: ev.Widget}
	case pluginruntime.EventOpenInlineView:
		m.hostEvents <- HostMessage{Kind: HostOpenInlineView, PluginID: ev.PluginID, EntrypointID: ev.EntrypointID, Widget: ev.Widget}
	case pluginruntime.EventCloseView:
		rp.clearHandlers(ev.EntrypointID)
		m.hostEvents <- HostMessage{Kind: HostClearInlineView, PluginID: ev.PluginID, EntrypointID: ev.EntrypointID}
	case pluginruntime.EventReloadSearchIndex, pluginruntime.EventRefreshSearchIndex:
		if err := m.reindexPlugin(ctx, ev.PluginID); err != nil {
			m.logger.Warn("search index refresh failed", zap.String("plugin_id", string(ev.PluginID)), zap.Error(err))
			return
		}
		m.hostEvents <- HostMessage{Kind: HostRefreshSearchList, PluginID: ev.PluginID}
	case pluginruntime.EventRunGeneratedEntrypoint:
		if err := m.runGeneratedEntrypoint(ctx, rp, ev.EntrypointID, ev.Text); err != nil {
			m.logger.Warn("generated entrypoint run failed",
				zap.String("plugin_id", string(ev.PluginID)), zap.String("generator_entrypoint_id", ev.EntrypointID), zap.Error(err))
		}
	}
}

// runGeneratedEntrypoint re-enters the generator entrypoint to materialize
// the generated entrypoint by id, then dispatches it. Generated ids are
// resolved against the generator's own output rather than a persisted
// manifest entry, since domain.GeneratedEntrypoint is never stored.
func (m *ApplicationManager) runGeneratedEntrypoint(ctx context.Context, rp *runningPlugin, generatorEntrypointID, generatedID string) error {
	_, err := rp.runtime.RunGeneratedEntrypoint(generatorEntrypointID, generatedID)
	if err != nil {
		return fmt.Errorf("appmanager: generator entrypoint %s generated id %s: %w", generatorEntrypointID, generatedID, err)
	}
	return nil
}

// HandleKeyboardEvent forwards a keyboard event fired while entrypointID's
// view is open to the listener its last rendered tree registered for the
// given widget/property slot, if any.
func (m *ApplicationManager) HandleKeyboardEvent(ctx context.Context, pluginID domain.PluginID, entrypointID string, widgetID uint32, property string, key domain.PropertyValue) error {
	rp, ok := m.running(pluginID)
	if !ok {
		return domain.NewInvalidAction(pluginID, entrypointID, "handle_keyboard_event")
	}
	handler, ok := rp.lookupHandler(entrypointID, widgetID, property)
	if !ok {
		return nil // no listener bound for this slot; not an error, matches an unhandled keypress
	}
	_, err := rp.runtime.InvokeHandler(handler, []domain.PropertyValue{key})
	return err
}

// SendViewEvent forwards a front-end UI event (e.g. an onChange callback
// firing) to the listener recorded at (widgetID, property) in
// entrypointID's currently open view.
func (m *ApplicationManager) SendViewEvent(ctx context.Context, pluginID domain.PluginID, entrypointID string, widgetID uint32, property string, args []domain.PropertyValue) error {
	rp, ok := m.running(pluginID)
	if !ok {
		return domain.NewInvalidAction(pluginID, entrypointID, "send_view_event")
	}
	handler, ok := rp.lookupHandler(entrypointID, widgetID, property)
	if !ok {
		return fmt.Errorf("appmanager: no listener registered for widget %d property %q", widgetID, property)
	}
	_, err := rp.runtime.InvokeHandler(handler, args)
	return err
}

// RequestViewClose drops the listener table for a front-end-initiated view
// close, mirroring what EventCloseView does for a plugin-initiated one.
func (m *ApplicationManager) RequestViewClose(ctx context.Context, pluginID domain.PluginID, entrypointID string) error {
	rp, ok := m.running(pluginID)
	if !ok {
		return nil
	}
	rp.clearHandlers(entrypointID)
	return nil
}

// RequestRenderView re-renders entrypointID's view synchronously and
// returns the action-id-to-shortcut map the front-end uses to draw hints
// for the view's bound actions (its own declared actions, not the widget
// tree, which is delivered separately as an open_view event).
func (m *ApplicationManager) RequestRenderView(ctx context.Context, pluginID domain.PluginID, entrypointID string) (map[string]*domain.PhysicalShortcut, error) {
	rp, ok := m.running(pluginID)
	if !ok {
		return nil, domain.NewInvalidAction(pluginID, entrypointID, "request_render_view")
	}
	w, handlers, err := rp.runtime.RenderEntrypointView(entrypointID)
	if err != nil {
		return nil, err
	}
	rp.storeHandlers(entrypointID, handlers)
	m.hostEvents <- HostMessage{Kind: HostOpenPluginView, PluginID: pluginID, EntrypointID: entrypointID, Widget: &w}

	e, ok := rp.entrypoints[entrypointID]
	if !ok {
		return map[string]*domain.PhysicalShortcut{}, nil
	}
	overrides := make(map[string]*domain.PhysicalShortcut, len(e.ActionsUserData))
	for _, o := range e.ActionsUserData {
		overrides[o.ActionID] = o.Shortcut
	}
	shortcuts := make(map[string]*domain.PhysicalShortcut, len(e.Actions))
	for _, a := range e.Actions {
		shortcut := a.Shortcut
		if override, ok := overrides[a.ID]; ok {
			shortcut = override
		}
		shortcuts[a.ID] = shortcut
	}
	return shortcuts, nil
}
