package appmanager

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gauntlet-host/launcherd/internal/domain"
	"github.com/gauntlet-host/launcherd/internal/obs"
	"github.com/gauntlet-host/launcherd/internal/searchindex"
)

// Search ranks entrypoints against text and, when renderInlineView is set,
// asks every plugin exposing an always-on inline view to re-render it (the
// main search bar's live preview surface).
func (m *ApplicationManager) Search(ctx context.Context, text string, renderInlineView bool) ([]searchindex.SearchResult, error) {
	ctx, span := obs.StartSearchQuerySpan(ctx, text)
	defer span.End()

	start := time.Now()
	results := m.index.Search(text, time.Now())
	obs.SearchQueryDuration.Observe(time.Since(start).Seconds())

	if renderInlineView {
		m.renderInlineViews(ctx)
	}

	obs.SetSpanSuccess(ctx)
	return results, nil
}

// renderInlineViews asks every running plugin with a declared inline_view
// entrypoint to render it; failures are logged per-plugin and do not affect
// the search results already computed.
func (m *ApplicationManager) renderInlineViews(ctx context.Context) {
	m.mu.RLock()
	type target struct {
		rp           *runningPlugin
		entrypointID string
	}
	var targets []target
	for _, rp := range m.plugins {
		for id, e := range rp.entrypoints {
			if e.Enabled && e.Type == domain.EntrypointInlineView {
				targets = append(targets, target{rp: rp, entrypointID: id})
			}
		}
	}
	m.mu.RUnlock()

	for _, t := range targets {
		w, handlers, err := t.rp.runtime.RenderEntrypointView(t.entrypointID)
		if err != nil {
			m.logger.Warn("inline view render failed",
				zap.String("plugin_id", string(t.rp.plugin.ID)), zap.String("entrypoint_id", t.entrypointID), zap.Error(err))
			continue
		}
		t.rp.storeHandlers(t.entrypointID, handlers)
		m.hostEvents <- HostMessage{Kind: HostOpenInlineView, PluginID: t.rp.plugin.ID, EntrypointID: t.entrypointID, Widget: &w}
	}
}

// buildSearchItems converts a plugin's enabled entrypoints into the search
// index's document shape, resolving each action's effective shortcut
// (user override, falling back to the manifest-declared default).
func buildSearchItems(pluginID domain.PluginID, entrypoints []domain.Entrypoint) []domain.SearchIndexItem {
	items := make([]domain.SearchIndexItem, 0, len(entrypoints))
	for _, e := range entrypoints {
		if !e.Enabled {
			continue
		}
		items = append(items, domain.SearchIndexItem{
			PluginID:           pluginID,
			EntrypointID:       e.ID,
			EntrypointType:     e.Type,
			EntrypointName:     e.Name,
			EntrypointIconPath: e.IconPath,
			EntrypointActions:  resolveActions(e),
		})
	}
	return items
}

// resolveActions overlays per-user shortcut overrides (ActionsUserData) onto
// an entrypoint's declared actions.
func resolveActions(e domain.Entrypoint) []domain.SearchActionRef {
	overrides := make(map[string]*domain.PhysicalShortcut, len(e.ActionsUserData))
	for _, o := range e.ActionsUserData {
		overrides[o.ActionID] = o.Shortcut
	}
	refs := make([]domain.SearchActionRef, 0, len(e.Actions))
	for _, a := range e.Actions {
		shortcut := a.Shortcut
		if override, ok := overrides[a.ID]; ok {
			shortcut = override
		}
		refs = append(refs, domain.SearchActionRef{Label: a.Label, Shortcut: shortcut})
	}
	return refs
}

// reindexPlugin reloads pluginID's entrypoints from the repository and
// replaces its search documents, refreshing the visible result list.
func (m *ApplicationManager) reindexPlugin(ctx context.Context, pluginID domain.PluginID) error {
	p, err := m.repo.GetPluginByID(ctx, pluginID)
	if err != nil {
		return domain.NewBackendError("reindex_plugin", err)
	}
	entrypoints, err := m.repo.GetEntrypointsByPluginID(ctx, pluginID)
	if err != nil {
		return domain.NewBackendError("reindex_plugin", err)
	}
	m.index.SaveForPlugin(pluginID, p.Name, buildSearchItems(pluginID, entrypoints), true)

	if rp, ok := m.running(pluginID); ok {
		m.mu.Lock()
		entrypointMap := make(map[string]domain.Entrypoint, len(entrypoints))
		for _, e := range entrypoints {
			entrypointMap[e.ID] = e
		}
		rp.entrypoints = entrypointMap
		rp.plugin = p
		m.mu.Unlock()
	}
	return nil
}

// NotifySearchListRefreshed relays the search index's own onRefresh callback
// (fired by SaveForPlugin with its refresh flag set, as reindexPlugin calls
// it, and by RemoveForPlugin) to the front-end as a refresh_search_list host
// message.
func (m *ApplicationManager) NotifySearchListRefreshed() {
	m.hostEvents <- HostMessage{Kind: HostRefreshSearchList}
}

