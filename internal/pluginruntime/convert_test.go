package pluginruntime

import (
	"testing"

	"github.com/gauntlet-host/launcherd/internal/domain"
	"github.com/gauntlet-host/launcherd/internal/widgetmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// P1: every widget in a converted tree gets a distinct WidgetID, assigned by
// build order regardless of how deeply it's nested.
func TestWidgetBuilder_P1_SequentialIDsAreUnique(t *testing.T) {
	tree := map[string]interface{}{
		"type":  "List",
		"props": map[string]interface{}{},
		"children": []interface{}{
			map[string]interface{}{"type": "ListItem", "props": map[string]interface{}{}, "children": []interface{}{"first"}},
			map[string]interface{}{"type": "ListItem", "props": map[string]interface{}{}, "children": []interface{}{"second"}},
		},
	}

	b := newWidgetBuilder()
	root, err := b.build(tree)
	require.NoError(t, err)

	seen := map[uint32]struct{}{}
	var walk func(w domain.Widget)
	walk = func(w domain.Widget) {
		_, dup := seen[w.WidgetID]
		assert.False(t, dup, "widget id %d reused", w.WidgetID)
		seen[w.WidgetID] = struct{}{}
		for _, c := range w.Children {
			walk(c)
		}
	}
	walk(root)
	assert.Len(t, seen, 3)
}

func TestWidgetBuilder_TextChildBecomesTextContent(t *testing.T) {
	tree := map[string]interface{}{
		"type":     "DetailContent",
		"props":    map[string]interface{}{},
		"children": []interface{}{"hello world"},
	}
	b := newWidgetBuilder()
	w, err := b.build(tree)
	require.NoError(t, err)
	require.NotNil(t, w.TextContent)
	assert.Equal(t, "hello world", *w.TextContent)
}

func TestWidgetBuilder_FunctionPropertyRecordedAsListener(t *testing.T) {
	handler := func(args ...interface{}) (interface{}, error) { return nil, nil }
	tree := map[string]interface{}{
		"type": "ListItem",
		"props": map[string]interface{}{
			"onAction": handler,
		},
	}
	b := newWidgetBuilder()
	w, err := b.build(tree)
	require.NoError(t, err)

	pv := w.Properties["onAction"]
	assert.Equal(t, domain.ValueFunction, pv.Kind)

	key := widgetmodel.EventListenerKey{WidgetID: w.WidgetID, Property: "onAction"}
	_, ok := b.handlers[key]
	assert.True(t, ok)
}

func TestWidgetBuilder_NestedComponentProperty(t *testing.T) {
	tree := map[string]interface{}{
		"type": "Detail",
		"props": map[string]interface{}{
			"metadata": map[string]interface{}{
				"type":  "Metadata",
				"props": map[string]interface{}{},
			},
		},
	}
	b := newWidgetBuilder()
	w, err := b.build(tree)
	require.NoError(t, err)

	pv := w.Properties["metadata"]
	require.Equal(t, domain.ValueComponent, pv.Kind)
	require.NotNil(t, pv.Component)
	assert.Equal(t, "Metadata", pv.Component.WidgetType)
}

func TestWidgetBuilder_RejectsNonObjectRoot(t *testing.T) {
	b := newWidgetBuilder()
	_, err := b.build("not a widget")
	require.Error(t, err)
}
