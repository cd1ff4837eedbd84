// Package searchindex implements the full-text + frecency ranked index that
// backs the launcher's search bar.
package searchindex

import (
	"sort"
	"sync"
	"time"

	"github.com/gauntlet-host/launcherd/internal/domain"
	"github.com/gauntlet-host/launcherd/internal/obs"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// entry is one indexed entrypoint plus its optional alias and frecency state.
type entry struct {
	item     domain.SearchIndexItem
	alias    string
	frecency domain.FrecencyStats
}

// SearchResult is one ranked hit returned from Search.
type SearchResult struct {
	PluginID       domain.PluginID
	PluginName     string
	EntrypointID   string
	EntrypointType domain.EntrypointType
	EntrypointName string
	IconPath       string
	Frecency       float64
	Actions        []domain.SearchActionRef
}

// PluginEntrypointInfo is the snapshot shape used by run_action and the
// settings UI.
type PluginEntrypointInfo struct {
	Name    string
	Type    domain.EntrypointType
	Actions []domain.SearchActionRef
}

type PluginSnapshot struct {
	PluginName  string
	Entrypoints map[string]PluginEntrypointInfo
}

// Index is the shared, plugin-partitioned search index singleton.
type Index struct {
	mu          sync.RWMutex
	halfLife    time.Duration
	maxResults  int
	pluginNames map[domain.PluginID]string
	entries     map[domain.PluginID]map[string]*entry // pluginID -> entrypointID -> entry
	onRefresh   func()
}

// New constructs an empty Index. onRefresh, if non-nil, is invoked whenever
// a write should cause the front-end to redraw a visible result list.
func New(halfLife time.Duration, maxResults int, onRefresh func()) *Index {
	return &Index{
		halfLife:    halfLife,
		maxResults:  maxResults,
		pluginNames: make(map[domain.PluginID]string),
		entries:     make(map[domain.PluginID]map[string]*entry),
		onRefresh:   onRefresh,
	}
}

// SaveForPlugin atomically replaces all documents belonging to pluginID.
// Frecency state for entrypoint ids that survive the replace is preserved;
// new entrypoint ids start with zero frecency.
func (idx *Index) SaveForPlugin(pluginID domain.PluginID, pluginName string, items []domain.SearchIndexItem, refreshSearchList bool) {
	idx.mu.Lock()
	existing := idx.entries[pluginID]
	next := make(map[string]*entry, len(items))
	for _, it := range items {
		e := &entry{item: it}
		if existing != nil {
			if prev, ok := existing[it.EntrypointID]; ok {
				e.alias = prev.alias
				e.frecency = prev.frecency
			}
		}
		next[it.EntrypointID] = e
	}
	idx.pluginNames[pluginID] = pluginName
	idx.entries[pluginID] = next
	count := idx.totalLocked()
	idx.mu.Unlock()

	obs.SearchIndexSize.Set(float64(count))
	if refreshSearchList {
		idx.notifyRefresh()
	}
}

// RemoveForPlugin deletes every document belonging to pluginID.
func (idx *Index) RemoveForPlugin(pluginID domain.PluginID) {
	idx.mu.Lock()
	delete(idx.entries, pluginID)
	delete(idx.pluginNames, pluginID)
	count := idx.totalLocked()
	idx.mu.Unlock()
	obs.SearchIndexSize.Set(float64(count))
	idx.notifyRefresh()
}

// SetEntrypointSearchAlias sets or clears the search alias for one entrypoint.
func (idx *Index) SetEntrypointSearchAlias(pluginID domain.PluginID, entrypointID, alias string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if plugin, ok := idx.entries[pluginID]; ok {
		if e, ok := plugin[entrypointID]; ok {
			e.alias = alias
		}
	}
}

// MarkUsed applies a frecency bump to one entrypoint as of now.
func (idx *Index) MarkUsed(pluginID domain.PluginID, entrypointID string, now time.Time) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	plugin, ok := idx.entries[pluginID]
	if !ok {
		return
	}
	e, ok := plugin[entrypointID]
	if !ok {
		return
	}
	if e.frecency.HalfLife == 0 {
		e.frecency.HalfLife = idx.halfLife
	}
	e.frecency = MarkUsed(e.frecency, now)
	e.item.EntrypointFrecency = e.frecency.Frecency
}

func (idx *Index) totalLocked() int {
	n := 0
	for _, plugin := range idx.entries {
		n += len(plugin)
	}
	return n
}

func (idx *Index) notifyRefresh() {
	if idx.onRefresh != nil {
		idx.onRefresh()
	}
}

// Search ranks entrypoints by a weighted combination of fuzzy-prefix match
// score and frecency. Empty text ranks by frecency alone.
func (idx *Index) Search(text string, now time.Time) []SearchResult {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	type scored struct {
		res   SearchResult
		score float64
	}

	var all []scored
	for pluginID, plugin := range idx.entries {
		pluginName := idx.pluginNames[pluginID]
		for _, e := range plugin {
			recall := Recall(e.frecency, now)
			res := SearchResult{
				PluginID:       pluginID,
				PluginName:     pluginName,
				EntrypointID:   e.item.EntrypointID,
				EntrypointType: e.item.EntrypointType,
				EntrypointName: e.item.EntrypointName,
				IconPath:       e.item.EntrypointIconPath,
				Frecency:       recall,
				Actions:        e.item.EntrypointActions,
			}
			if text == "" {
				all = append(all, scored{res: res, score: recall})
				continue
			}
			matchScore, matched := fuzzyScore(text, e.item.EntrypointName, pluginName, e.alias)
			if !matched {
				continue
			}
			all = append(all, scored{res: res, score: matchScore*2 + recall})
		}
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].score != all[j].score {
			return all[i].score > all[j].score
		}
		if all[i].res.EntrypointName != all[j].res.EntrypointName {
			return all[i].res.EntrypointName < all[j].res.EntrypointName
		}
		if all[i].res.PluginName != all[j].res.PluginName {
			return all[i].res.PluginName < all[j].res.PluginName
		}
		if all[i].res.PluginID != all[j].res.PluginID {
			return all[i].res.PluginID < all[j].res.PluginID
		}
		return all[i].res.EntrypointID < all[j].res.EntrypointID
	})

	max := idx.maxResults
	if max <= 0 || max > len(all) {
		max = len(all)
	}
	results := make([]SearchResult, max)
	for i := 0; i < max; i++ {
		results[i] = all[i].res
	}
	return results
}

// fuzzyScore returns a normalized [0,1] match score against the best of
// name/pluginName/alias, and whether any of them matched at all.
func fuzzyScore(query string, candidates ...string) (float64, bool) {
	best := -1
	matched := false
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if !fuzzy.MatchNormalizedFold(query, c) {
			continue
		}
		matched = true
		ranks := fuzzy.RankFindNormalizedFold(query, []string{c})
		if len(ranks) == 0 {
			continue
		}
		d := ranks[0].Distance
		if best == -1 || d < best {
			best = d
		}
	}
	if !matched {
		return 0, false
	}
	// Lower edit distance is a better match; fold into a bounded [0,1] score.
	return 1.0 / float64(1+best), true
}

// PluginEntrypointData returns a point-in-time snapshot used by run_action
// and the settings UI.
func (idx *Index) PluginEntrypointData() map[domain.PluginID]PluginSnapshot {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make(map[domain.PluginID]PluginSnapshot, len(idx.entries))
	for pluginID, plugin := range idx.entries {
		snap := PluginSnapshot{
			PluginName:  idx.pluginNames[pluginID],
			Entrypoints: make(map[string]PluginEntrypointInfo, len(plugin)),
		}
		for id, e := range plugin {
			snap.Entrypoints[id] = PluginEntrypointInfo{
				Name:    e.item.EntrypointName,
				Type:    e.item.EntrypointType,
				Actions: e.item.EntrypointActions,
			}
		}
		out[pluginID] = snap
	}
	return out
}
