package searchindex

import (
	"testing"
	"time"

	"github.com/gauntlet-host/launcherd/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id, name string) domain.SearchIndexItem {
	return domain.SearchIndexItem{
		EntrypointID:   id,
		EntrypointName: name,
		EntrypointType: domain.EntrypointCommand,
	}
}

// S1: empty search with no plugins, then after enabling one.
func TestSearch_S1_EmptyThenPopulated(t *testing.T) {
	idx := New(DefaultHalfLife, 50, nil)
	assert.Empty(t, idx.Search("", time.Now()))

	idx.SaveForPlugin("bundled://tasks", "Tasks", []domain.SearchIndexItem{
		item("A", "Add Task"),
		item("B", "Browse"),
	}, true)

	results := idx.Search("", time.Now())
	require.Len(t, results, 2)
	assert.Equal(t, "Add Task", results[0].EntrypointName)
	assert.Equal(t, "Browse", results[1].EntrypointName)

	brResults := idx.Search("br", time.Now())
	require.Len(t, brResults, 1)
	assert.Equal(t, "B", brResults[0].EntrypointID)
}

// P5: mark_used strictly increases frecency; without uses, frecency decays
// (or stays equal) over time.
func TestMarkUsed_P5_Monotonicity(t *testing.T) {
	idx := New(DefaultHalfLife, 50, nil)
	idx.SaveForPlugin("bundled://tasks", "Tasks", []domain.SearchIndexItem{item("A", "Add Task")}, false)

	now := time.Now()
	idx.MarkUsed("bundled://tasks", "A", now)
	first := idx.Search("", now)[0].Frecency

	idx.MarkUsed("bundled://tasks", "A", now.Add(time.Minute))
	second := idx.Search("", now.Add(time.Minute))[0].Frecency

	assert.Greater(t, second, first)

	later := idx.Search("", now.Add(200*time.Hour))[0].Frecency
	assert.LessOrEqual(t, later, second)
}

// P8: alias search surfaces the entrypoint in the top-3 regardless of its
// textual name.
func TestSetEntrypointSearchAlias_P8(t *testing.T) {
	idx := New(DefaultHalfLife, 50, nil)
	idx.SaveForPlugin("bundled://tasks", "Tasks", []domain.SearchIndexItem{
		item("A", "Completely Unrelated Name"),
		item("B", "Another Item"),
		item("C", "Yet Another"),
	}, false)
	idx.SetEntrypointSearchAlias("bundled://tasks", "A", "g")

	results := idx.Search("g", time.Now())
	require.NotEmpty(t, results)

	found := false
	for i, r := range results {
		if r.EntrypointID == "A" {
			assert.Less(t, i, 3)
			found = true
		}
	}
	assert.True(t, found)
}

// S6: two entrypoints with equal frecency and matching query tie-break
// name-ascending, then plugin-name-ascending.
func TestSearch_S6_TieBreak(t *testing.T) {
	idx := New(DefaultHalfLife, 50, nil)
	idx.SaveForPlugin("bundled://a", "Alpha", []domain.SearchIndexItem{item("x", "Task")}, false)
	idx.SaveForPlugin("bundled://b", "Beta", []domain.SearchIndexItem{item("y", "Task")}, false)

	results := idx.Search("", time.Now())
	require.Len(t, results, 2)
	assert.Equal(t, "Alpha", results[0].PluginName)
	assert.Equal(t, "Beta", results[1].PluginName)
}

func TestRemoveForPlugin(t *testing.T) {
	idx := New(DefaultHalfLife, 50, nil)
	idx.SaveForPlugin("bundled://tasks", "Tasks", []domain.SearchIndexItem{item("A", "Add Task")}, false)
	idx.RemoveForPlugin("bundled://tasks")
	assert.Empty(t, idx.Search("", time.Now()))
}

func TestSaveForPlugin_PreservesFrecencyAcrossReplace(t *testing.T) {
	idx := New(DefaultHalfLife, 50, nil)
	now := time.Now()
	idx.SaveForPlugin("bundled://tasks", "Tasks", []domain.SearchIndexItem{item("A", "Add Task")}, false)
	idx.MarkUsed("bundled://tasks", "A", now)
	before := idx.Search("", now)[0].Frecency

	idx.SaveForPlugin("bundled://tasks", "Tasks", []domain.SearchIndexItem{item("A", "Add Task Renamed")}, false)
	after := idx.Search("", now)[0].Frecency

	assert.Equal(t, before, after)
}

func TestPluginEntrypointData_Snapshot(t *testing.T) {
	idx := New(DefaultHalfLife, 50, nil)
	idx.SaveForPlugin("bundled://tasks", "Tasks", []domain.SearchIndexItem{item("A", "Add Task")}, false)
	snap := idx.PluginEntrypointData()
	require.Contains(t, snap, domain.PluginID("bundled://tasks"))
	assert.Equal(t, "Tasks", snap["bundled://tasks"].PluginName)
	assert.Contains(t, snap["bundled://tasks"].Entrypoints, "A")
}

func TestSaveForPlugin_RefreshCallback(t *testing.T) {
	called := false
	idx := New(DefaultHalfLife, 50, func() { called = true })
	idx.SaveForPlugin("bundled://tasks", "Tasks", []domain.SearchIndexItem{item("A", "Add Task")}, true)
	assert.True(t, called)
}
