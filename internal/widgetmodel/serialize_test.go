package widgetmodel

import (
	"testing"

	"github.com/gauntlet-host/launcherd/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// P3: deserialize(serialize(tree)) == tree byte-for-byte, including member order.
func TestSerializeDeserialize_P3_RoundTrip(t *testing.T) {
	tree := domain.Widget{
		WidgetID:   1,
		WidgetType: "ListItem",
		Properties: map[string]domain.PropertyValue{
			"title": strVal("Beta"),
			"id":    strVal("b"),
		},
	}
	order := PropertyOrder{1: {"id", "title"}}

	first, err := Serialize(tree, order)
	require.NoError(t, err)

	roundTripped, gotOrder, err := Deserialize(first)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "title"}, gotOrder[1])

	second, err := Serialize(roundTripped, gotOrder)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestSerialize_DeterministicPropertyOrderFallback(t *testing.T) {
	tree := domain.Widget{
		WidgetID:   1,
		WidgetType: "ListItem",
		Properties: map[string]domain.PropertyValue{
			"title": strVal("Beta"),
			"id":    strVal("b"),
		},
	}
	first, err := Serialize(tree, PropertyOrder{})
	require.NoError(t, err)
	second, err := Serialize(tree, PropertyOrder{})
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestSerialize_NestedComponentAndArray(t *testing.T) {
	inner := domain.Widget{WidgetID: 2, WidgetType: "ListItem", Properties: map[string]domain.PropertyValue{
		"id": strVal("x"), "title": strVal("y"),
	}}
	tree := domain.Widget{
		WidgetID:   1,
		WidgetType: "List",
		Properties: map[string]domain.PropertyValue{
			"items": {Kind: domain.ValueArray, Array: []domain.PropertyValue{
				{Kind: domain.ValueComponent, Component: &inner},
			}},
		},
	}
	data, err := Serialize(tree, PropertyOrder{})
	require.NoError(t, err)

	back, _, err := Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, domain.ValueArray, back.Properties["items"].Kind)
	require.Len(t, back.Properties["items"].Array, 1)
	assert.Equal(t, domain.ValueComponent, back.Properties["items"].Array[0].Kind)
	assert.Equal(t, "y", back.Properties["items"].Array[0].Component.Properties["title"].String)
}
